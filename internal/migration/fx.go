package migration

import (
	"fmt"
	"strings"

	auditdomain "github.com/smallbiznis/crm/internal/audit/domain"
	billingdomain "github.com/smallbiznis/crm/internal/billing/domain"
	companydomain "github.com/smallbiznis/crm/internal/company/domain"
	"github.com/smallbiznis/crm/internal/config"
	contactdomain "github.com/smallbiznis/crm/internal/contact/domain"
	invitationdomain "github.com/smallbiznis/crm/internal/invitation/domain"
	quotedomain "github.com/smallbiznis/crm/internal/quote/domain"
	timelinedomain "github.com/smallbiznis/crm/internal/timeline/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(Migrate),
)

// Models lists every persisted record, in dependency order.
func Models() []any {
	return []any{
		&companydomain.Company{},
		&companydomain.Project{},
		&companydomain.ClientUser{},
		&contactdomain.Contact{},
		&billingdomain.BillingSettings{},
		&billingdomain.SubscriptionItem{},
		&quotedomain.Quote{},
		&quotedomain.QuoteItem{},
		&timelinedomain.Activity{},
		&invitationdomain.Invitation{},
		&auditdomain.AuditLog{},
	}
}

// Migrate applies the SQL migrations on PostgreSQL and falls back to
// AutoMigrate for the other dialects.
func Migrate(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
	if !cfg.DBAutoMigrate {
		log.Info("database migrations disabled")
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(cfg.DBType)) {
	case "postgres", "postgresql":
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		version, err := RunMigrations(sqlDB)
		if err != nil {
			return err
		}
		log.Info("sql migrations applied", zap.Uint("version", version))
	default:
		if err := conn.AutoMigrate(Models()...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
	}

	log.Info("database schema up to date", zap.String("db_type", cfg.DBType))
	return nil
}
