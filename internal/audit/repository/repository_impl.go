package repository

import (
	"context"
	"strings"
	"time"

	"github.com/smallbiznis/crm/internal/audit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.AuditLog) error {
	if entry == nil {
		return nil
	}
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.AuditLog, error) {
	var logs []*domain.AuditLog
	stmt := db.WithContext(ctx).
		Model(&domain.AuditLog{}).
		Scopes(
			matching(filter),
			createdBetween(filter.StartAt, filter.EndAt),
			olderThan(filter.Cursor),
		).
		Order("created_at desc, id desc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit + 1)
	}
	if err := stmt.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func matching(filter domain.ListFilter) func(*gorm.DB) *gorm.DB {
	conds := map[string]any{"org_id": filter.OrgID}
	for column, value := range map[string]string{
		"action":      filter.Action,
		"target_type": filter.TargetType,
		"target_id":   filter.TargetID,
	} {
		if value = strings.TrimSpace(value); value != "" {
			conds[column] = value
		}
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(conds)
	}
}

func createdBetween(start, end *time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if start != nil {
			db = db.Where("created_at >= ?", start.UTC())
		}
		if end != nil {
			db = db.Where("created_at <= ?", end.UTC())
		}
		return db
	}
}

// olderThan continues a newest-first keyset page after cursor.
func olderThan(cursor *domain.AuditCursor) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if cursor == nil {
			return db
		}
		return db.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
}
