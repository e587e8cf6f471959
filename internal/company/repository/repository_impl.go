package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/company/domain"
	"github.com/smallbiznis/crm/pkg/db/option"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, company *domain.Company) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO companies (id, org_id, name, slug, billing_email, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		company.ID,
		company.OrgID,
		company.Name,
		company.Slug,
		company.BillingEmail,
		company.Metadata,
		company.CreatedAt,
		company.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Company, error) {
	var company domain.Company
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, name, slug, billing_email, contract_accepted_at, metadata, created_at, updated_at
		 FROM companies WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&company).Error
	if err != nil {
		return nil, err
	}
	if company.ID == 0 {
		return nil, nil
	}
	return &company, nil
}

func (r *repo) ExistsBySlug(ctx context.Context, db *gorm.DB, orgID snowflake.ID, slug string) (bool, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Company{}).
		Where("org_id = ? AND slug = ?", orgID, slug).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListCompanyFilter, page pagination.Pagination) ([]*domain.Company, error) {
	var companies []*domain.Company
	stmt := db.WithContext(ctx).
		Model(&domain.Company{}).
		Where("org_id = ?", orgID)
	if filter.Name != "" {
		stmt = stmt.Where("name = ?", filter.Name)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&companies).Error
	if err != nil {
		return nil, err
	}
	return companies, nil
}

func (r *repo) SetContractAcceptedAt(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE companies SET contract_accepted_at = ?, updated_at = ?
		 WHERE org_id = ? AND id = ? AND contract_accepted_at IS NULL`,
		at,
		at,
		orgID,
		id,
	).Error
}

func (r *repo) InsertProject(ctx context.Context, db *gorm.DB, project *domain.Project) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO projects (id, org_id, company_id, name, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		project.ID,
		project.OrgID,
		project.CompanyID,
		project.Name,
		project.Status,
		project.CreatedAt,
		project.UpdatedAt,
	).Error
}

func (r *repo) FindProject(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Project, error) {
	var project domain.Project
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, company_id, name, status, created_at, updated_at
		 FROM projects WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&project).Error
	if err != nil {
		return nil, err
	}
	if project.ID == 0 {
		return nil, nil
	}
	return &project, nil
}

func (r *repo) UpdateProjectStatus(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, status domain.Status, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE projects SET status = ?, updated_at = ? WHERE org_id = ? AND id = ?`,
		status,
		at,
		orgID,
		id,
	).Error
}

func (r *repo) InsertClientUser(ctx context.Context, db *gorm.DB, user *domain.ClientUser) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO client_users (id, org_id, company_id, email, name, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.OrgID,
		user.CompanyID,
		user.Email,
		user.Name,
		user.Status,
		user.CreatedAt,
		user.UpdatedAt,
	).Error
}

func (r *repo) FindClientUser(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.ClientUser, error) {
	var user domain.ClientUser
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, company_id, email, name, status, created_at, updated_at
		 FROM client_users WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&user).Error
	if err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, nil
	}
	return &user, nil
}

func (r *repo) UpdateClientUserStatus(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, status domain.Status, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE client_users SET status = ?, updated_at = ? WHERE org_id = ? AND id = ?`,
		status,
		at,
		orgID,
		id,
	).Error
}

func (r *repo) CountActive(ctx context.Context, db *gorm.DB, orgID, companyID snowflake.ID) (domain.CompanyCounts, error) {
	var projects, users int64
	err := db.WithContext(ctx).
		Model(&domain.Project{}).
		Where("org_id = ? AND company_id = ? AND status = ?", orgID, companyID, domain.StatusActive).
		Count(&projects).Error
	if err != nil {
		return domain.CompanyCounts{}, err
	}
	err = db.WithContext(ctx).
		Model(&domain.ClientUser{}).
		Where("org_id = ? AND company_id = ? AND status = ?", orgID, companyID, domain.StatusActive).
		Count(&users).Error
	if err != nil {
		return domain.CompanyCounts{}, err
	}
	return domain.CompanyCounts{
		ActiveProjects: int(projects),
		ActiveUsers:    int(users),
	}, nil
}
