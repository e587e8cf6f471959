package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/clock"
	companydomain "github.com/smallbiznis/crm/internal/company/domain"
	"github.com/smallbiznis/crm/internal/contact/domain"
	"github.com/smallbiznis/crm/internal/orgcontext"
	"github.com/smallbiznis/crm/pkg/db/option"
	"github.com/smallbiznis/crm/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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
	store      repository.Repository[domain.Contact]
}

func New(p Params) domain.Service {
	return &Service{
		log:        p.Log.Named("contact.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		companySvc: p.CompanySvc,
		store:      repository.ProvideStore[domain.Contact](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateContactRequest) (domain.Contact, error) {
	company, err := s.companySvc.GetByID(ctx, req.CompanyID)
	if err != nil {
		return domain.Contact{}, err
	}

	firstName := strings.TrimSpace(req.FirstName)
	if firstName == "" {
		return domain.Contact{}, domain.ErrInvalidName
	}
	email := strings.TrimSpace(req.Email)
	if email != "" && !strings.Contains(email, "@") {
		return domain.Contact{}, domain.ErrInvalidEmail
	}

	metadata := datatypes.JSONMap{}
	for key, value := range req.Metadata {
		if key = strings.TrimSpace(key); key != "" {
			metadata[key] = value
		}
	}

	now := s.clock.Now()
	contact := domain.Contact{
		ID:        s.genID.Generate(),
		OrgID:     company.OrgID,
		CompanyID: company.ID,
		FirstName: firstName,
		LastName:  strings.TrimSpace(req.LastName),
		Email:     email,
		Phone:     strings.TrimSpace(req.Phone),
		JobTitle:  strings.TrimSpace(req.JobTitle),
		Metadata:  metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, &contact); err != nil {
		return domain.Contact{}, err
	}
	return contact, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Contact, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Contact{}, domain.ErrInvalidOrganization
	}
	contactID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || contactID == 0 {
		return domain.Contact{}, domain.ErrInvalidID
	}

	contact, err := s.store.FindOne(ctx, &domain.Contact{ID: contactID, OrgID: orgID})
	if err != nil {
		return domain.Contact{}, err
	}
	if contact == nil {
		return domain.Contact{}, domain.ErrNotFound
	}
	return *contact, nil
}

func (s *Service) ListByCompany(ctx context.Context, req domain.ListContactRequest) ([]domain.Contact, error) {
	company, err := s.companySvc.GetByID(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}

	items, err := s.store.Find(ctx,
		&domain.Contact{OrgID: company.OrgID, CompanyID: company.ID},
		option.WithOrder("last_name asc, first_name asc, id asc"),
	)
	if err != nil {
		return nil, err
	}

	contacts := make([]domain.Contact, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		contacts = append(contacts, *item)
	}
	return contacts, nil
}
