package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/crm/internal/audit/domain"
	"github.com/smallbiznis/crm/internal/billing/calculator"
	"github.com/smallbiznis/crm/internal/billing/domain"
	"github.com/smallbiznis/crm/internal/clock"
	companydomain "github.com/smallbiznis/crm/internal/company/domain"
	"github.com/smallbiznis/crm/internal/config"
	"github.com/smallbiznis/crm/internal/observability/metrics"
	"github.com/smallbiznis/crm/internal/observability/tracing"
	"github.com/smallbiznis/crm/internal/orgcontext"
	"github.com/smallbiznis/crm/pkg/db"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Repo          domain.Repository
	CompanySvc    companydomain.Service
	AuditSvc      auditdomain.Service
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
	auditSvc   auditdomain.Service
	cfg        *config.BillingConfigHolder
	metrics    *metrics.Metrics
	calc       *calculator.Calculator
}

func New(p Params) domain.Service {
	log := p.Log.Named("billing.service")
	return &Service{
		db:         p.DB,
		log:        log,
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		companySvc: p.CompanySvc,
		auditSvc:   p.AuditSvc,
		cfg:        p.BillingConfig,
		metrics:    p.Metrics,
		calc:       calculator.New(p.Log, p.Metrics),
	}
}

func (s *Service) GetSettings(ctx context.Context, companyID string) (domain.BillingSettings, error) {
	company, err := s.companySvc.GetByID(ctx, companyID)
	if err != nil {
		return domain.BillingSettings{}, err
	}
	return s.loadSettings(ctx, company)
}

func (s *Service) UpsertSettings(ctx context.Context, req domain.UpsertSettingsRequest) (domain.BillingSettings, error) {
	company, err := s.companySvc.GetByID(ctx, req.CompanyID)
	if err != nil {
		return domain.BillingSettings{}, err
	}

	billingType := domain.BillingType(strings.ToUpper(strings.TrimSpace(req.BillingType)))
	if !billingType.Valid() {
		return domain.BillingSettings{}, domain.ErrInvalidBillingType
	}
	if req.BillingDay < domain.MinBillingDay || req.BillingDay > domain.MaxBillingDay {
		return domain.BillingSettings{}, domain.ErrInvalidBillingDay
	}

	now := s.clock.Now()
	settings := domain.BillingSettings{
		CompanyID:   company.ID,
		OrgID:       company.OrgID,
		BillingType: billingType,
		BillingDay:  req.BillingDay,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.UpsertSettings(ctx, s.db, &settings); err != nil {
		return domain.BillingSettings{}, err
	}

	stored, err := s.repo.FindSettings(ctx, s.db, company.OrgID, company.ID)
	if err != nil {
		return domain.BillingSettings{}, err
	}
	if stored != nil {
		settings = *stored
	}

	s.audit(ctx, auditdomain.ActionBillingSettingsUpdate, auditdomain.TargetBillingSettings, company.ID, map[string]any{
		"billing_type": string(settings.BillingType),
		"billing_day":  settings.BillingDay,
	})
	return settings, nil
}

func (s *Service) ListItems(ctx context.Context, companyID string) ([]domain.SubscriptionItem, error) {
	company, err := s.companySvc.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(ctx, s.db, company.OrgID, company.ID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.SubscriptionItem{}
	}
	return items, nil
}

func (s *Service) CreateItem(ctx context.Context, req domain.CreateItemRequest) (domain.SubscriptionItem, error) {
	company, err := s.companySvc.GetByID(ctx, req.CompanyID)
	if err != nil {
		return domain.SubscriptionItem{}, err
	}

	price, err := s.parsePrice(req.Price)
	if err != nil {
		return domain.SubscriptionItem{}, err
	}
	countType, manualQuantity, err := normalizeQuantity(req.CountType, req.ManualQuantity)
	if err != nil {
		return domain.SubscriptionItem{}, err
	}

	var position int
	if req.Position != nil {
		position = *req.Position
	} else {
		position, err = s.repo.NextPosition(ctx, s.db, company.OrgID, company.ID)
		if err != nil {
			return domain.SubscriptionItem{}, err
		}
	}
	if !db.IntegerFits(position) {
		return domain.SubscriptionItem{}, domain.ErrInvalidPosition
	}

	now := s.clock.Now()
	item := domain.SubscriptionItem{
		ID:             s.genID.Generate(),
		OrgID:          company.OrgID,
		CompanyID:      company.ID,
		ExternalItemID: strings.TrimSpace(req.ExternalItemID),
		Code:           strings.TrimSpace(req.Code),
		Description:    strings.TrimSpace(req.Description),
		Price:          price,
		CountType:      countType,
		ManualQuantity: manualQuantity,
		Position:       position,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.InsertItem(ctx, s.db, &item); err != nil {
		return domain.SubscriptionItem{}, err
	}

	s.audit(ctx, auditdomain.ActionBillingItemCreate, auditdomain.TargetSubscriptionItem, item.ID, itemAuditMetadata(item))
	return item, nil
}

func (s *Service) UpdateItem(ctx context.Context, req domain.UpdateItemRequest) (domain.SubscriptionItem, error) {
	orgID, err := s.orgID(ctx)
	if err != nil {
		return domain.SubscriptionItem{}, err
	}
	id, err := parseID(req.ID)
	if err != nil {
		return domain.SubscriptionItem{}, err
	}

	item, err := s.repo.FindItem(ctx, s.db, orgID, id)
	if err != nil {
		return domain.SubscriptionItem{}, err
	}
	if item == nil {
		return domain.SubscriptionItem{}, domain.ErrItemNotFound
	}

	updated := *item
	if req.ExternalItemID != nil {
		updated.ExternalItemID = strings.TrimSpace(*req.ExternalItemID)
	}
	if req.Code != nil {
		updated.Code = strings.TrimSpace(*req.Code)
	}
	if req.Description != nil {
		updated.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		price, err := s.parsePrice(*req.Price)
		if err != nil {
			return domain.SubscriptionItem{}, err
		}
		updated.Price = price
	}
	if req.Position != nil {
		if !db.IntegerFits(*req.Position) {
			return domain.SubscriptionItem{}, domain.ErrInvalidPosition
		}
		updated.Position = *req.Position
	}

	countType := string(updated.CountType)
	if req.CountType != nil {
		countType = *req.CountType
	}
	manualQuantity := updated.ManualQuantity
	if req.ManualQuantity != nil {
		manualQuantity = req.ManualQuantity
	}
	updated.CountType, updated.ManualQuantity, err = normalizeQuantity(countType, manualQuantity)
	if err != nil {
		return domain.SubscriptionItem{}, err
	}

	updated.UpdatedAt = s.clock.Now()
	if err := s.repo.UpdateItem(ctx, s.db, &updated); err != nil {
		return domain.SubscriptionItem{}, err
	}

	s.audit(ctx, auditdomain.ActionBillingItemUpdate, auditdomain.TargetSubscriptionItem, updated.ID, itemAuditMetadata(updated))
	return updated, nil
}

func (s *Service) DeleteItem(ctx context.Context, id string) error {
	orgID, err := s.orgID(ctx)
	if err != nil {
		return err
	}
	itemID, err := parseID(id)
	if err != nil {
		return err
	}

	deleted, err := s.repo.DeleteItem(ctx, s.db, orgID, itemID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrItemNotFound
	}

	s.audit(ctx, auditdomain.ActionBillingItemDelete, auditdomain.TargetSubscriptionItem, itemID, nil)
	return nil
}

// GetSummary recomputes the billing summary from stored items and live counts.
func (s *Service) GetSummary(ctx context.Context, companyID string) (domain.BillingSummary, error) {
	ctx, span := tracing.StartSpan(ctx, "billing.GetSummary")
	defer span.End()

	company, err := s.companySvc.GetByID(ctx, companyID)
	if err != nil {
		return domain.BillingSummary{}, err
	}

	settings, err := s.loadSettings(ctx, company)
	if err != nil {
		return domain.BillingSummary{}, err
	}

	counts, err := s.companySvc.Counts(ctx, company.ID)
	if err != nil {
		return domain.BillingSummary{}, err
	}

	var summary domain.BillingSummary
	switch settings.BillingType {
	case domain.BillingTypeCustom:
		summary = calculator.CustomSummary(counts)
	default:
		items, err := s.repo.ListItems(ctx, s.db, company.OrgID, company.ID)
		if err != nil {
			return domain.BillingSummary{}, err
		}
		summary = s.calc.Compute(ctx, items, counts)
	}

	summary.CompanyID = company.ID
	summary.BillingDay = settings.BillingDay
	summary.Currency = s.cfg.Get().Currency

	span.SetAttributes(
		attribute.String("billing_type", string(summary.BillingType)),
		attribute.Int("items", len(summary.Items)),
	)
	s.metrics.RecordBillingSummary(ctx, company.OrgID.String(), string(summary.BillingType), len(summary.Items))
	s.log.Debug("billing summary computed",
		zap.String("company_id", company.ID.String()),
		zap.String("billing_type", string(summary.BillingType)),
		zap.Int("items", len(summary.Items)),
		zap.String("total", summary.Total.String()),
	)
	return summary, nil
}

func (s *Service) loadSettings(ctx context.Context, company companydomain.Company) (domain.BillingSettings, error) {
	stored, err := s.repo.FindSettings(ctx, s.db, company.OrgID, company.ID)
	if err != nil {
		return domain.BillingSettings{}, err
	}
	if stored != nil {
		return *stored, nil
	}

	defaults := s.cfg.Get()
	return domain.BillingSettings{
		CompanyID:   company.ID,
		OrgID:       company.OrgID,
		BillingType: domain.BillingType(defaults.DefaultBillingType),
		BillingDay:  defaults.DefaultBillingDay,
	}, nil
}

func (s *Service) parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, domain.ErrInvalidPrice
	}
	if !db.PriceFits(price) {
		return decimal.Zero, domain.ErrInvalidPrice
	}
	scale := s.cfg.Get().MaxPriceScale
	if !price.Equal(price.Truncate(scale)) {
		return decimal.Zero, domain.ErrInvalidPrice
	}
	return price, nil
}

// normalizeQuantity requires a manual quantity for MANUAL items and clears it otherwise.
func normalizeQuantity(rawCountType string, manualQuantity *int) (domain.CountType, *int, error) {
	countType := domain.CountType(strings.ToUpper(strings.TrimSpace(rawCountType)))
	if !countType.Valid() {
		return "", nil, domain.ErrInvalidCountType
	}
	if countType != domain.CountTypeManual {
		return countType, nil, nil
	}
	if manualQuantity == nil || !db.IntegerFits(*manualQuantity) {
		return "", nil, domain.ErrInvalidManualQuantity
	}
	quantity := *manualQuantity
	return countType, &quantity, nil
}

func (s *Service) audit(ctx context.Context, action auditdomain.Action, targetType auditdomain.TargetType, targetID snowflake.ID, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	err := s.auditSvc.Record(ctx, auditdomain.Entry{
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   metadata,
	})
	if err != nil {
		s.log.Warn("audit log failed", zap.String("action", string(action)), zap.Error(err))
	}
}

func itemAuditMetadata(item domain.SubscriptionItem) map[string]any {
	metadata := map[string]any{
		"company_id": item.CompanyID.String(),
		"price":      item.Price.String(),
		"count_type": string(item.CountType),
		"position":   item.Position,
	}
	if item.ManualQuantity != nil {
		metadata["manual_quantity"] = *item.ManualQuantity
	}
	return metadata
}

func (s *Service) orgID(ctx context.Context) (snowflake.ID, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return 0, domain.ErrInvalidOrganization
	}
	return orgID, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
