package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/crm/internal/clock"
	"github.com/smallbiznis/crm/internal/company/domain"
	"github.com/smallbiznis/crm/internal/orgcontext"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxSlugAttempts = 20

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("company.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCompanyRequest) (domain.Company, error) {
	orgID, err := s.orgID(ctx)
	if err != nil {
		return domain.Company{}, err
	}

	name := strings.TrimSpace(req.Name)
	base := slug.Make(name)
	if name == "" || base == "" {
		return domain.Company{}, domain.ErrInvalidName
	}

	email := strings.TrimSpace(req.BillingEmail)
	if email != "" && !strings.Contains(email, "@") {
		return domain.Company{}, domain.ErrInvalidEmail
	}

	companySlug, err := s.uniqueSlug(ctx, orgID, base)
	if err != nil {
		return domain.Company{}, err
	}

	now := s.clock.Now()
	company := domain.Company{
		ID:           s.genID.Generate(),
		OrgID:        orgID,
		Name:         name,
		Slug:         companySlug,
		BillingEmail: email,
		Metadata:     datatypes.JSONMap(copyMetadata(req.Metadata)),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, s.db, &company); err != nil {
		return domain.Company{}, err
	}

	s.log.Info("company created",
		zap.String("company_id", company.ID.String()),
		zap.String("slug", company.Slug),
	)
	return company, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Company, error) {
	companyID, err := parseID(id)
	if err != nil {
		return domain.Company{}, err
	}
	return s.Get(ctx, companyID)
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.Company, error) {
	orgID, err := s.orgID(ctx)
	if err != nil {
		return domain.Company{}, err
	}

	company, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Company{}, err
	}
	if company == nil {
		return domain.Company{}, domain.ErrNotFound
	}
	return *company, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCompanyRequest) (domain.ListCompanyResponse, error) {
	orgID, err := s.orgID(ctx)
	if err != nil {
		return domain.ListCompanyResponse{}, err
	}

	pageSize := int(req.PageSize)
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, orgID, domain.ListCompanyFilter{
		Name: strings.TrimSpace(req.Name),
	}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListCompanyResponse{}, err
	}

	items, pageInfo := pagination.Trim(items, pageSize, func(company *domain.Company) pagination.Cursor {
		return pagination.Cursor{
			ID:        company.ID.String(),
			CreatedAt: company.CreatedAt.Format(time.RFC3339Nano),
		}
	})

	companies := make([]domain.Company, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		companies = append(companies, *item)
	}
	return domain.ListCompanyResponse{PageInfo: pageInfo, Companies: companies}, nil
}

func (s *Service) CreateProject(ctx context.Context, req domain.CreateProjectRequest) (domain.Project, error) {
	company, err := s.GetByID(ctx, req.CompanyID)
	if err != nil {
		return domain.Project{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Project{}, domain.ErrInvalidName
	}
	status, err := parseStatus(req.Status)
	if err != nil {
		return domain.Project{}, err
	}

	now := s.clock.Now()
	project := domain.Project{
		ID:        s.genID.Generate(),
		OrgID:     company.OrgID,
		CompanyID: company.ID,
		Name:      name,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertProject(ctx, s.db, &project); err != nil {
		return domain.Project{}, err
	}
	return project, nil
}

func (s *Service) SetProjectStatus(ctx context.Context, req domain.SetStatusRequest) (domain.Project, error) {
	orgID, err := s.orgID(ctx)
	if err != nil {
		return domain.Project{}, err
	}
	id, err := parseID(req.ID)
	if err != nil {
		return domain.Project{}, err
	}
	status, err := parseStatus(req.Status)
	if err != nil {
		return domain.Project{}, err
	}

	project, err := s.repo.FindProject(ctx, s.db, orgID, id)
	if err != nil {
		return domain.Project{}, err
	}
	if project == nil {
		return domain.Project{}, domain.ErrProjectNotFound
	}

	now := s.clock.Now()
	if err := s.repo.UpdateProjectStatus(ctx, s.db, orgID, id, status, now); err != nil {
		return domain.Project{}, err
	}
	project.Status = status
	project.UpdatedAt = now
	return *project, nil
}

func (s *Service) CreateClientUser(ctx context.Context, req domain.CreateClientUserRequest) (domain.ClientUser, error) {
	company, err := s.GetByID(ctx, req.CompanyID)
	if err != nil {
		return domain.ClientUser{}, err
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.ClientUser{}, domain.ErrInvalidEmail
	}
	status, err := parseStatus(req.Status)
	if err != nil {
		return domain.ClientUser{}, err
	}

	now := s.clock.Now()
	user := domain.ClientUser{
		ID:        s.genID.Generate(),
		OrgID:     company.OrgID,
		CompanyID: company.ID,
		Email:     email,
		Name:      strings.TrimSpace(req.Name),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertClientUser(ctx, s.db, &user); err != nil {
		return domain.ClientUser{}, err
	}
	return user, nil
}

func (s *Service) SetClientUserStatus(ctx context.Context, req domain.SetStatusRequest) (domain.ClientUser, error) {
	orgID, err := s.orgID(ctx)
	if err != nil {
		return domain.ClientUser{}, err
	}
	id, err := parseID(req.ID)
	if err != nil {
		return domain.ClientUser{}, err
	}
	status, err := parseStatus(req.Status)
	if err != nil {
		return domain.ClientUser{}, err
	}

	user, err := s.repo.FindClientUser(ctx, s.db, orgID, id)
	if err != nil {
		return domain.ClientUser{}, err
	}
	if user == nil {
		return domain.ClientUser{}, domain.ErrClientUserNotFound
	}

	now := s.clock.Now()
	if err := s.repo.UpdateClientUserStatus(ctx, s.db, orgID, id, status, now); err != nil {
		return domain.ClientUser{}, err
	}
	user.Status = status
	user.UpdatedAt = now
	return *user, nil
}

func (s *Service) Counts(ctx context.Context, companyID snowflake.ID) (domain.CompanyCounts, error) {
	orgID, err := s.orgID(ctx)
	if err != nil {
		return domain.CompanyCounts{}, err
	}
	return s.repo.CountActive(ctx, s.db, orgID, companyID)
}

func (s *Service) AcceptContract(ctx context.Context, companyID snowflake.ID, at time.Time) (domain.Company, error) {
	company, err := s.Get(ctx, companyID)
	if err != nil {
		return domain.Company{}, err
	}
	if company.ContractAcceptedAt != nil {
		return company, nil
	}

	at = at.UTC()
	if err := s.repo.SetContractAcceptedAt(ctx, s.db, company.OrgID, company.ID, at); err != nil {
		return domain.Company{}, err
	}
	company.ContractAcceptedAt = &at
	company.UpdatedAt = at
	return company, nil
}

func (s *Service) uniqueSlug(ctx context.Context, orgID snowflake.ID, base string) (string, error) {
	candidate := base
	for attempt := 2; attempt <= maxSlugAttempts+1; attempt++ {
		taken, err := s.repo.ExistsBySlug(ctx, s.db, orgID, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt)
	}
	return fmt.Sprintf("%s-%s", base, s.genID.Generate().Base36()), nil
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

func parseStatus(value string) (domain.Status, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))
	if trimmed == "" {
		return domain.StatusActive, nil
	}
	status := domain.Status(trimmed)
	if !status.Valid() {
		return "", domain.ErrInvalidStatus
	}
	return status, nil
}

func copyMetadata(input map[string]any) map[string]any {
	out := make(map[string]any, len(input))
	for key, value := range input {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out[key] = value
	}
	return out
}
