package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, company *Company) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Company, error)
	ExistsBySlug(ctx context.Context, db *gorm.DB, orgID snowflake.ID, slug string) (bool, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListCompanyFilter, page pagination.Pagination) ([]*Company, error)
	SetContractAcceptedAt(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, at time.Time) error

	InsertProject(ctx context.Context, db *gorm.DB, project *Project) error
	FindProject(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Project, error)
	UpdateProjectStatus(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, status Status, at time.Time) error

	InsertClientUser(ctx context.Context, db *gorm.DB, user *ClientUser) error
	FindClientUser(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*ClientUser, error)
	UpdateClientUserStatus(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, status Status, at time.Time) error

	CountActive(ctx context.Context, db *gorm.DB, orgID, companyID snowflake.ID) (CompanyCounts, error)
}
