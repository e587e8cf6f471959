package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, quote *Quote) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Quote, error)
	ListByCompany(ctx context.Context, db *gorm.DB, orgID, companyID snowflake.ID) ([]Quote, error)
	Touch(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, at time.Time) error

	ListItems(ctx context.Context, db *gorm.DB, orgID, quoteID snowflake.ID) ([]QuoteItem, error)
	ListItemsForQuotes(ctx context.Context, db *gorm.DB, orgID snowflake.ID, quoteIDs []snowflake.ID) ([]QuoteItem, error)
	NextPosition(ctx context.Context, db *gorm.DB, orgID, quoteID snowflake.ID) (int, error)
	FindItem(ctx context.Context, db *gorm.DB, orgID, quoteID, id snowflake.ID) (*QuoteItem, error)
	InsertItem(ctx context.Context, db *gorm.DB, item *QuoteItem) error
	UpdateItem(ctx context.Context, db *gorm.DB, item *QuoteItem) error
	DeleteItem(ctx context.Context, db *gorm.DB, orgID, quoteID, id snowflake.ID) (bool, error)
}
