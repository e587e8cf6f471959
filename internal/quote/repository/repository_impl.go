package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/quote/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, quote *domain.Quote) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO quotes (id, org_id, company_id, title, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		quote.ID,
		quote.OrgID,
		quote.CompanyID,
		quote.Title,
		quote.Status,
		quote.CreatedAt,
		quote.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Quote, error) {
	var quote domain.Quote
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, company_id, title, status, created_at, updated_at
		 FROM quotes WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	).Scan(&quote).Error
	if err != nil {
		return nil, err
	}
	if quote.ID == 0 {
		return nil, nil
	}
	return &quote, nil
}

func (r *repo) ListByCompany(ctx context.Context, db *gorm.DB, orgID, companyID snowflake.ID) ([]domain.Quote, error) {
	var quotes []domain.Quote
	err := db.WithContext(ctx).
		Where("org_id = ? AND company_id = ?", orgID, companyID).
		Order("created_at desc, id desc").
		Find(&quotes).Error
	if err != nil {
		return nil, err
	}
	return quotes, nil
}

func (r *repo) Touch(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, at time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE quotes SET updated_at = ? WHERE org_id = ? AND id = ?`,
		at,
		orgID,
		id,
	).Error
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, orgID, quoteID snowflake.ID) ([]domain.QuoteItem, error) {
	var items []domain.QuoteItem
	err := db.WithContext(ctx).
		Where("org_id = ? AND quote_id = ?", orgID, quoteID).
		Order("position asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListItemsForQuotes(ctx context.Context, db *gorm.DB, orgID snowflake.ID, quoteIDs []snowflake.ID) ([]domain.QuoteItem, error) {
	if len(quoteIDs) == 0 {
		return nil, nil
	}
	var items []domain.QuoteItem
	err := db.WithContext(ctx).
		Where("org_id = ? AND quote_id IN ?", orgID, quoteIDs).
		Order("quote_id asc, position asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) NextPosition(ctx context.Context, db *gorm.DB, orgID, quoteID snowflake.ID) (int, error) {
	var next int
	err := db.WithContext(ctx).
		Model(&domain.QuoteItem{}).
		Where("org_id = ? AND quote_id = ?", orgID, quoteID).
		Select("COALESCE(MAX(position) + 1, 0)").
		Scan(&next).Error
	return next, err
}

func (r *repo) FindItem(ctx context.Context, db *gorm.DB, orgID, quoteID, id snowflake.ID) (*domain.QuoteItem, error) {
	var items []domain.QuoteItem
	err := db.WithContext(ctx).
		Where("org_id = ? AND quote_id = ? AND id = ?", orgID, quoteID, id).
		Limit(1).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (r *repo) InsertItem(ctx context.Context, db *gorm.DB, item *domain.QuoteItem) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO quote_items (id, org_id, quote_id, description, price, quantity, frequency, position, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.OrgID,
		item.QuoteID,
		item.Description,
		item.Price,
		item.Quantity,
		item.Frequency,
		item.Position,
		item.CreatedAt,
		item.UpdatedAt,
	).Error
}

func (r *repo) UpdateItem(ctx context.Context, db *gorm.DB, item *domain.QuoteItem) error {
	return db.WithContext(ctx).Exec(
		`UPDATE quote_items SET description = ?, price = ?, quantity = ?, frequency = ?, updated_at = ?
		 WHERE org_id = ? AND quote_id = ? AND id = ?`,
		item.Description,
		item.Price,
		item.Quantity,
		item.Frequency,
		item.UpdatedAt,
		item.OrgID,
		item.QuoteID,
		item.ID,
	).Error
}

func (r *repo) DeleteItem(ctx context.Context, db *gorm.DB, orgID, quoteID, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`DELETE FROM quote_items WHERE org_id = ? AND quote_id = ? AND id = ?`,
		orgID,
		quoteID,
		id,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
