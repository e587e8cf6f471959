package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/crm/pkg/db/option"
	"gorm.io/gorm"
)

var errEmptyQuery = errors.New("repository: query must not be nil")

type store[T any] struct {
	db *gorm.DB
}

func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (r *store[T]) WithTrx(tx *gorm.DB) Repository[T] {
	return &store[T]{db: tx}
}

func (r *store[T]) Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error) {
	var result []*T
	stmt := r.buildQuery(ctx, query, opts...)
	err := stmt.Find(&result).Error
	return result, err
}

func (r *store[T]) FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error) {
	var result T
	stmt := r.buildQuery(ctx, query, opts...)
	err := stmt.First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (r *store[T]) Create(ctx context.Context, resource *T) error {
	return r.db.WithContext(ctx).Create(resource).Error
}

// Updates applies values to the rows matching the non-zero fields of query.
func (r *store[T]) Updates(ctx context.Context, query *T, values map[string]any) (int64, error) {
	if query == nil {
		return 0, errEmptyQuery
	}
	res := r.db.WithContext(ctx).Model(new(T)).Where(query).Updates(values)
	return res.RowsAffected, res.Error
}

func (r *store[T]) Delete(ctx context.Context, query *T) (int64, error) {
	if query == nil {
		return 0, errEmptyQuery
	}
	res := r.db.WithContext(ctx).Where(query).Delete(new(T))
	return res.RowsAffected, res.Error
}

func (r *store[T]) Count(ctx context.Context, query *T) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(new(T)).Where(query).Count(&count).Error
	return count, err
}

func (r *store[T]) buildQuery(ctx context.Context, filter *T, opts ...option.QueryOption) *gorm.DB {
	db := r.db.WithContext(ctx)
	if filter != nil {
		db = db.Where(filter)
	}

	for _, opt := range opts {
		db = opt.Apply(db)
	}

	return db
}
