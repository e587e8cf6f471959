// Package repository provides a generic GORM-backed store for simple tenant-scoped records.
package repository

import (
	"context"

	"github.com/smallbiznis/crm/pkg/db/option"
	"gorm.io/gorm"
)

type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	Updates(ctx context.Context, query *T, values map[string]any) (int64, error)
	Delete(ctx context.Context, query *T) (int64, error)
	Count(ctx context.Context, query *T) (int64, error)
}
