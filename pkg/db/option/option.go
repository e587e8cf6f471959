// Package option holds reusable GORM query modifiers.
package option

import (
	"strings"

	"github.com/smallbiznis/crm/pkg/db/pagination"
	"gorm.io/gorm"
)

// QueryOption mutates a GORM statement.
type QueryOption interface {
	Apply(*gorm.DB) *gorm.DB
}

type QueryFunc func(*gorm.DB) *gorm.DB

func (f QueryFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

const maxPageSize = 250

// ApplyPagination applies keyset pagination ordered by created_at desc, id desc.
// One extra row is fetched so callers can tell whether another page exists.
func ApplyPagination(page pagination.Pagination) QueryOption {
	return QueryFunc(func(db *gorm.DB) *gorm.DB {
		size := page.PageSize
		if size <= 0 {
			size = 50
		}
		if size > maxPageSize {
			size = maxPageSize
		}

		if token := strings.TrimSpace(page.PageToken); token != "" {
			cursor, err := pagination.DecodeCursor(token)
			if err == nil && cursor.ID != "" {
				if createdAt, ok := cursor.Time(); ok {
					db = db.Where("(created_at < ?) OR (created_at = ? AND id < ?)", createdAt, createdAt, cursor.ID)
				}
			}
		}
		return db.Limit(size + 1)
	})
}

// WithOrder adds an ORDER BY clause.
func WithOrder(order string) QueryOption {
	return QueryFunc(func(db *gorm.DB) *gorm.DB {
		return db.Order(order)
	})
}
