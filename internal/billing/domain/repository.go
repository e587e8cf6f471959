package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindSettings(ctx context.Context, db *gorm.DB, orgID, companyID snowflake.ID) (*BillingSettings, error)
	UpsertSettings(ctx context.Context, db *gorm.DB, settings *BillingSettings) error

	ListItems(ctx context.Context, db *gorm.DB, orgID, companyID snowflake.ID) ([]SubscriptionItem, error)
	NextPosition(ctx context.Context, db *gorm.DB, orgID, companyID snowflake.ID) (int, error)
	FindItem(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*SubscriptionItem, error)
	InsertItem(ctx context.Context, db *gorm.DB, item *SubscriptionItem) error
	UpdateItem(ctx context.Context, db *gorm.DB, item *SubscriptionItem) error
	DeleteItem(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (bool, error)
}
