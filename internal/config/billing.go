package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// priceColumnScale is the scale of the numeric(12,2) price columns.
const priceColumnScale = 2

// BillingConfig holds billing defaults that can change without a restart.
type BillingConfig struct {
	DefaultBillingType string `mapstructure:"defaultBillingType"`
	DefaultBillingDay  int    `mapstructure:"defaultBillingDay"`
	MaxPriceScale      int32  `mapstructure:"maxPriceScale"`
	Currency           string `mapstructure:"currency"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		DefaultBillingType: "STANDARD",
		DefaultBillingDay:  1,
		MaxPriceScale:      2,
		Currency:           "EUR",
	}
}

type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

// NewStaticBillingConfigHolder returns a holder that never reloads.
func NewStaticBillingConfigHolder(cfg BillingConfig) *BillingConfigHolder {
	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewBillingConfigHolder(log *zap.Logger) (*BillingConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("billing.config")

	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/crm")
	v.AddConfigPath(".")

	v.SetEnvPrefix("CRM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBillingConfig()
	v.SetDefault("billing.defaultBillingType", defaults.DefaultBillingType)
	v.SetDefault("billing.defaultBillingDay", defaults.DefaultBillingDay)
	v.SetDefault("billing.maxPriceScale", defaults.MaxPriceScale)
	v.SetDefault("billing.currency", defaults.Currency)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	cfg, err := decodeBillingConfig(v)
	if err != nil {
		return nil, err
	}

	holder := NewStaticBillingConfigHolder(cfg)
	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodeBillingConfig(v)
		if err != nil {
			log.Warn("billing config reload ignored", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("billing config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

func (h *BillingConfigHolder) Get() BillingConfig {
	if h == nil {
		return DefaultBillingConfig()
	}
	cfg, ok := h.current.Load().(BillingConfig)
	if !ok {
		return DefaultBillingConfig()
	}
	return cfg
}

func decodeBillingConfig(v *viper.Viper) (BillingConfig, error) {
	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return BillingConfig{}, err
	}
	cfg.DefaultBillingType = strings.ToUpper(strings.TrimSpace(cfg.DefaultBillingType))
	cfg.Currency = strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if err := validateBillingConfig(cfg); err != nil {
		return BillingConfig{}, err
	}
	return cfg, nil
}

func validateBillingConfig(cfg BillingConfig) error {
	switch cfg.DefaultBillingType {
	case "STANDARD", "CUSTOM":
	default:
		return errors.New("billing.defaultBillingType must be STANDARD or CUSTOM")
	}
	if cfg.DefaultBillingDay < 1 || cfg.DefaultBillingDay > 31 {
		return errors.New("billing.defaultBillingDay must be between 1 and 31")
	}
	if cfg.MaxPriceScale < 0 || cfg.MaxPriceScale > priceColumnScale {
		return fmt.Errorf("billing.maxPriceScale must be between 0 and %d", priceColumnScale)
	}
	if cfg.Currency == "" {
		return errors.New("billing.currency cannot be empty")
	}
	return nil
}
