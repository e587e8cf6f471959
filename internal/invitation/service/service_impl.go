package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/clock"
	companydomain "github.com/smallbiznis/crm/internal/company/domain"
	"github.com/smallbiznis/crm/internal/invitation/domain"
	"github.com/smallbiznis/crm/internal/orgcontext"
	"github.com/smallbiznis/crm/pkg/db"
	"github.com/smallbiznis/crm/pkg/db/option"
	"github.com/smallbiznis/crm/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	CompanySvc companydomain.Service
}

type Service struct {
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	companySvc companydomain.Service
	store      repository.Repository[domain.Invitation]
}

func New(p Params) domain.Service {
	return &Service{
		log:        p.Log.Named("invitation.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		companySvc: p.CompanySvc,
		store:      repository.ProvideStore[domain.Invitation](p.DB),
	}
}

// Invite records a pending invitation. Delivery of the invitation email happens elsewhere.
func (s *Service) Invite(ctx context.Context, req domain.InviteRequest) (domain.Invitation, error) {
	company, err := s.companySvc.GetByID(ctx, req.CompanyID)
	if err != nil {
		return domain.Invitation{}, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.Invitation{}, domain.ErrInvalidEmail
	}
	role := strings.ToUpper(strings.TrimSpace(req.Role))
	if role == "" {
		return domain.Invitation{}, domain.ErrInvalidRole
	}

	now := s.clock.Now()
	invitation := domain.Invitation{
		ID:        s.genID.Generate(),
		OrgID:     company.OrgID,
		CompanyID: company.ID,
		Email:     email,
		Role:      role,
		Status:    domain.Pending,
		SentAt:    now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, &invitation); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Invitation{}, domain.ErrAlreadyInvited
		}
		return domain.Invitation{}, err
	}
	return invitation, nil
}

func (s *Service) ListByCompany(ctx context.Context, companyID snowflake.ID) ([]domain.Invitation, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	items, err := s.store.Find(ctx,
		&domain.Invitation{OrgID: orgID, CompanyID: companyID},
		option.WithOrder("sent_at desc, id asc"),
	)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Invitation, 0, len(items))
	for _, item := range items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out, nil
}
