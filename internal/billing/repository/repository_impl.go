package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crm/internal/billing/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindSettings(ctx context.Context, db *gorm.DB, orgID, companyID snowflake.ID) (*domain.BillingSettings, error) {
	var settings domain.BillingSettings
	err := db.WithContext(ctx).Raw(
		`SELECT company_id, org_id, billing_type, billing_day, created_at, updated_at
		 FROM billing_settings WHERE org_id = ? AND company_id = ?`,
		orgID,
		companyID,
	).Scan(&settings).Error
	if err != nil {
		return nil, err
	}
	if settings.CompanyID == 0 {
		return nil, nil
	}
	return &settings, nil
}

func (r *repo) UpsertSettings(ctx context.Context, db *gorm.DB, settings *domain.BillingSettings) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "company_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"billing_type", "billing_day", "updated_at"}),
		}).
		Create(settings).Error
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, orgID, companyID snowflake.ID) ([]domain.SubscriptionItem, error) {
	var items []domain.SubscriptionItem
	err := db.WithContext(ctx).
		Where("org_id = ? AND company_id = ?", orgID, companyID).
		Order("position asc, id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// NextPosition returns one past the highest position in use, 0 for a company without items.
func (r *repo) NextPosition(ctx context.Context, db *gorm.DB, orgID, companyID snowflake.ID) (int, error) {
	var next int
	err := db.WithContext(ctx).
		Model(&domain.SubscriptionItem{}).
		Where("org_id = ? AND company_id = ?", orgID, companyID).
		Select("COALESCE(MAX(position) + 1, 0)").
		Scan(&next).Error
	return next, err
}

func (r *repo) FindItem(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.SubscriptionItem, error) {
	var items []domain.SubscriptionItem
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
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

func (r *repo) InsertItem(ctx context.Context, db *gorm.DB, item *domain.SubscriptionItem) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO subscription_items (
			id, org_id, company_id, external_item_id, code, description,
			price, count_type, manual_quantity, position, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.OrgID,
		item.CompanyID,
		item.ExternalItemID,
		item.Code,
		item.Description,
		item.Price,
		item.CountType,
		item.ManualQuantity,
		item.Position,
		item.CreatedAt,
		item.UpdatedAt,
	).Error
}

func (r *repo) UpdateItem(ctx context.Context, db *gorm.DB, item *domain.SubscriptionItem) error {
	return db.WithContext(ctx).Exec(
		`UPDATE subscription_items
		 SET external_item_id = ?, code = ?, description = ?, price = ?, count_type = ?,
		     manual_quantity = ?, position = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		item.ExternalItemID,
		item.Code,
		item.Description,
		item.Price,
		item.CountType,
		item.ManualQuantity,
		item.Position,
		item.UpdatedAt,
		item.OrgID,
		item.ID,
	).Error
}

func (r *repo) DeleteItem(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`DELETE FROM subscription_items WHERE org_id = ? AND id = ?`,
		orgID,
		id,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
