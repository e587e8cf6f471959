package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/crm/internal/audit/domain"
	"github.com/smallbiznis/crm/internal/clock"
	companydomain "github.com/smallbiznis/crm/internal/company/domain"
	invitationdomain "github.com/smallbiznis/crm/internal/invitation/domain"
	"github.com/smallbiznis/crm/internal/observability/tracing"
	"github.com/smallbiznis/crm/internal/timeline/domain"
	"github.com/smallbiznis/crm/pkg/db/option"
	"github.com/smallbiznis/crm/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	CompanySvc    companydomain.Service
	InvitationSvc invitationdomain.Service
	AuditSvc      auditdomain.Service `optional:"true"`
}

type Service struct {
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	companySvc    companydomain.Service
	invitationSvc invitationdomain.Service
	auditSvc      auditdomain.Service
	activities    repository.Repository[domain.Activity]
}

func New(p Params) domain.Service {
	return &Service{
		log:           p.Log.Named("timeline.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		companySvc:    p.CompanySvc,
		invitationSvc: p.InvitationSvc,
		auditSvc:      p.AuditSvc,
		activities:    repository.ProvideStore[domain.Activity](p.DB),
	}
}

func (s *Service) CreateActivity(ctx context.Context, req domain.CreateActivityRequest) (domain.Activity, error) {
	company, err := s.companySvc.GetByID(ctx, req.CompanyID)
	if err != nil {
		return domain.Activity{}, err
	}

	activityType := domain.ActivityType(strings.ToUpper(strings.TrimSpace(req.Type)))
	if !activityType.Valid() {
		return domain.Activity{}, domain.ErrInvalidActivityType
	}
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return domain.Activity{}, domain.ErrInvalidSubject
	}

	now := s.clock.Now()
	occurredAt := now
	if req.OccurredAt != nil && !req.OccurredAt.IsZero() {
		occurredAt = req.OccurredAt.UTC()
	}

	metadata := datatypes.JSONMap{}
	for key, value := range req.Metadata {
		if key = strings.TrimSpace(key); key != "" {
			metadata[key] = value
		}
	}

	activity := domain.Activity{
		ID:         s.genID.Generate(),
		OrgID:      company.OrgID,
		CompanyID:  company.ID,
		Type:       activityType,
		Subject:    subject,
		Body:       strings.TrimSpace(req.Body),
		OccurredAt: occurredAt,
		Metadata:   metadata,
		CreatedAt:  now,
	}
	if err := s.activities.Create(ctx, &activity); err != nil {
		return domain.Activity{}, err
	}
	return activity, nil
}

func (s *Service) AcceptContract(ctx context.Context, companyID string) (companydomain.Company, error) {
	company, err := s.companySvc.GetByID(ctx, companyID)
	if err != nil {
		return companydomain.Company{}, err
	}
	alreadyAccepted := company.ContractAcceptedAt != nil
	accepted, err := s.companySvc.AcceptContract(ctx, company.ID, s.clock.Now())
	if err != nil {
		return companydomain.Company{}, err
	}
	if alreadyAccepted || s.auditSvc == nil || accepted.ContractAcceptedAt == nil {
		return accepted, nil
	}

	err = s.auditSvc.Record(ctx, auditdomain.Entry{
		Action:     auditdomain.ActionContractAccept,
		TargetType: auditdomain.TargetCompany,
		TargetID:   accepted.ID,
		Metadata:   map[string]any{"accepted_at": accepted.ContractAcceptedAt.Format(time.RFC3339)},
	})
	if err != nil {
		s.log.Warn("audit log failed", zap.String("action", string(auditdomain.ActionContractAccept)), zap.Error(err))
	}
	return accepted, nil
}

func (s *Service) Get(ctx context.Context, companyID string) (domain.Timeline, error) {
	ctx, span := tracing.StartSpan(ctx, "timeline.Get")
	defer span.End()

	company, err := s.companySvc.GetByID(ctx, companyID)
	if err != nil {
		return domain.Timeline{}, err
	}

	activities, err := s.activities.Find(ctx,
		&domain.Activity{OrgID: company.OrgID, CompanyID: company.ID},
		option.WithOrder("occurred_at desc, id asc"),
	)
	if err != nil {
		return domain.Timeline{}, err
	}

	invitations, err := s.invitationSvc.ListByCompany(ctx, company.ID)
	if err != nil {
		return domain.Timeline{}, err
	}

	values := make([]domain.Activity, 0, len(activities))
	for _, activity := range activities {
		if activity != nil {
			values = append(values, *activity)
		}
	}

	return domain.Timeline{
		CompanyID: company.ID,
		Entries:   domain.Merge(values, invitations, company.ContractAcceptedAt),
	}, nil
}
