package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/crm/internal/clock"
	companydomain "github.com/smallbiznis/crm/internal/company/domain"
	"github.com/smallbiznis/crm/internal/config"
	"github.com/smallbiznis/crm/internal/observability/metrics"
	"github.com/smallbiznis/crm/internal/orgcontext"
	"github.com/smallbiznis/crm/internal/quote/calculator"
	"github.com/smallbiznis/crm/internal/quote/domain"
	"github.com/smallbiznis/crm/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	triggerItemAdded   = "item_added"
	triggerItemUpdated = "item_updated"
	triggerItemRemoved = "item_removed"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Repo          domain.Repository
	CompanySvc    companydomain.Service
	BillingConfig *config.BillingConfigHolder
	Metrics       *metrics.Metrics `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       domain.Repository
	companySvc companydomain.Service
	cfg        *config.BillingConfigHolder
	metrics    *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("quote.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		companySvc: p.CompanySvc,
		cfg:        p.BillingConfig,
		metrics:    p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateQuoteRequest) (domain.QuoteDetail, error) {
	company, err := s.companySvc.GetByID(ctx, req.CompanyID)
	if err != nil {
		return domain.QuoteDetail{}, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.QuoteDetail{}, domain.ErrInvalidTitle
	}

	now := s.clock.Now()
	quote := domain.Quote{
		ID:        s.genID.Generate(),
		OrgID:     company.OrgID,
		CompanyID: company.ID,
		Title:     title,
		Status:    domain.StatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, &quote); err != nil {
		return domain.QuoteDetail{}, err
	}

	return domain.QuoteDetail{Quote: quote, QuoteTotals: calculator.ComputeTotals(nil)}, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.QuoteDetail, error) {
	quote, err := s.findQuote(ctx, id)
	if err != nil {
		return domain.QuoteDetail{}, err
	}
	return s.detail(ctx, s.db, quote)
}

func (s *Service) ListByCompany(ctx context.Context, companyID string) ([]domain.QuoteDetail, error) {
	company, err := s.companySvc.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	quotes, err := s.repo.ListByCompany(ctx, s.db, company.OrgID, company.ID)
	if err != nil {
		return nil, err
	}

	quoteIDs := lo.Map(quotes, func(q domain.Quote, _ int) snowflake.ID { return q.ID })
	items, err := s.repo.ListItemsForQuotes(ctx, s.db, company.OrgID, quoteIDs)
	if err != nil {
		return nil, err
	}
	byQuote := lo.GroupBy(items, func(item domain.QuoteItem) snowflake.ID { return item.QuoteID })

	return lo.Map(quotes, func(q domain.Quote, _ int) domain.QuoteDetail {
		return domain.QuoteDetail{Quote: q, QuoteTotals: calculator.ComputeTotals(byQuote[q.ID])}
	}), nil
}

func (s *Service) AddItem(ctx context.Context, req domain.AddItemRequest) (domain.QuoteDetail, error) {
	quote, err := s.findQuote(ctx, req.QuoteID)
	if err != nil {
		return domain.QuoteDetail{}, err
	}

	price, err := s.parsePrice(req.Price)
	if err != nil {
		return domain.QuoteDetail{}, err
	}
	if !db.IntegerFits(req.Quantity) {
		return domain.QuoteDetail{}, domain.ErrInvalidQuantity
	}
	frequency, err := parseFrequency(req.Frequency)
	if err != nil {
		return domain.QuoteDetail{}, err
	}

	var out domain.QuoteDetail
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		position, err := s.repo.NextPosition(ctx, tx, quote.OrgID, quote.ID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		item := domain.QuoteItem{
			ID:          s.genID.Generate(),
			OrgID:       quote.OrgID,
			QuoteID:     quote.ID,
			Description: strings.TrimSpace(req.Description),
			Price:       price,
			Quantity:    req.Quantity,
			Frequency:   frequency,
			Position:    position,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.repo.InsertItem(ctx, tx, &item); err != nil {
			return err
		}
		if err := s.repo.Touch(ctx, tx, quote.OrgID, quote.ID, now); err != nil {
			return err
		}
		quote.UpdatedAt = now

		out, err = s.detail(ctx, tx, quote)
		return err
	})
	if err != nil {
		return domain.QuoteDetail{}, err
	}

	s.metrics.RecordQuoteRecalculation(ctx, triggerItemAdded)
	return out, nil
}

func (s *Service) UpdateItem(ctx context.Context, req domain.UpdateItemRequest) (domain.QuoteDetail, error) {
	quote, err := s.findQuote(ctx, req.QuoteID)
	if err != nil {
		return domain.QuoteDetail{}, err
	}
	itemID, err := parseID(req.ItemID)
	if err != nil {
		return domain.QuoteDetail{}, err
	}

	var out domain.QuoteDetail
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindItem(ctx, tx, quote.OrgID, quote.ID, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrItemNotFound
		}

		if req.Description != nil {
			item.Description = strings.TrimSpace(*req.Description)
		}
		if req.Price != nil {
			price, err := s.parsePrice(*req.Price)
			if err != nil {
				return err
			}
			item.Price = price
		}
		if req.Quantity != nil {
			if !db.IntegerFits(*req.Quantity) {
				return domain.ErrInvalidQuantity
			}
			item.Quantity = *req.Quantity
		}
		if req.Frequency != nil {
			frequency, err := parseFrequency(*req.Frequency)
			if err != nil {
				return err
			}
			item.Frequency = frequency
		}

		now := s.clock.Now()
		item.UpdatedAt = now
		if err := s.repo.UpdateItem(ctx, tx, item); err != nil {
			return err
		}
		if err := s.repo.Touch(ctx, tx, quote.OrgID, quote.ID, now); err != nil {
			return err
		}
		quote.UpdatedAt = now

		out, err = s.detail(ctx, tx, quote)
		return err
	})
	if err != nil {
		return domain.QuoteDetail{}, err
	}

	s.metrics.RecordQuoteRecalculation(ctx, triggerItemUpdated)
	return out, nil
}

func (s *Service) RemoveItem(ctx context.Context, req domain.RemoveItemRequest) (domain.QuoteDetail, error) {
	quote, err := s.findQuote(ctx, req.QuoteID)
	if err != nil {
		return domain.QuoteDetail{}, err
	}
	itemID, err := parseID(req.ItemID)
	if err != nil {
		return domain.QuoteDetail{}, err
	}

	var out domain.QuoteDetail
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		deleted, err := s.repo.DeleteItem(ctx, tx, quote.OrgID, quote.ID, itemID)
		if err != nil {
			return err
		}
		if !deleted {
			return domain.ErrItemNotFound
		}

		now := s.clock.Now()
		if err := s.repo.Touch(ctx, tx, quote.OrgID, quote.ID, now); err != nil {
			return err
		}
		quote.UpdatedAt = now

		out, err = s.detail(ctx, tx, quote)
		return err
	})
	if err != nil {
		return domain.QuoteDetail{}, err
	}

	s.metrics.RecordQuoteRecalculation(ctx, triggerItemRemoved)
	return out, nil
}

func (s *Service) findQuote(ctx context.Context, id string) (domain.Quote, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Quote{}, domain.ErrInvalidOrganization
	}
	quoteID, err := parseID(id)
	if err != nil {
		return domain.Quote{}, err
	}

	quote, err := s.repo.FindByID(ctx, s.db, orgID, quoteID)
	if err != nil {
		return domain.Quote{}, err
	}
	if quote == nil {
		return domain.Quote{}, domain.ErrNotFound
	}
	return *quote, nil
}

func (s *Service) detail(ctx context.Context, tx *gorm.DB, quote domain.Quote) (domain.QuoteDetail, error) {
	items, err := s.repo.ListItems(ctx, tx, quote.OrgID, quote.ID)
	if err != nil {
		return domain.QuoteDetail{}, err
	}
	return domain.QuoteDetail{Quote: quote, QuoteTotals: calculator.ComputeTotals(items)}, nil
}

func (s *Service) parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || !db.PriceFits(price) {
		return decimal.Zero, domain.ErrInvalidPrice
	}
	if scale := s.cfg.Get().MaxPriceScale; !price.Equal(price.Truncate(scale)) {
		return decimal.Zero, domain.ErrInvalidPrice
	}
	return price, nil
}

func parseFrequency(raw string) (domain.Frequency, error) {
	frequency := domain.Frequency(strings.ToUpper(strings.TrimSpace(raw)))
	if !frequency.Valid() {
		return "", domain.ErrInvalidFrequency
	}
	return frequency, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
