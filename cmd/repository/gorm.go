package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const queryTimeout = 3 * time.Second

func listAll[T any](ctx context.Context, db *gorm.DB, preload ...string) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	q := db.WithContext(ctx)
	for _, p := range preload {
		q = q.Preload(p)
	}
	out := []T{}
	if err := q.Order("id").Find(&out).Error; err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func getByID[T any](ctx context.Context, db *gorm.DB, id uint, preload ...string) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	q := db.WithContext(ctx)
	for _, p := range preload {
		q = q.Preload(p)
	}
	var row T
	if err := q.First(&row, id).Error; err != nil {
		return nil, classify(err)
	}
	return &row, nil
}

func insert[T any](ctx context.Context, db *gorm.DB, row *T) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return classify(db.WithContext(ctx).Create(row).Error)
}

// updateFields overwrites the given columns of row id and returns the fresh row.
// A missing row yields ErrNotFound and nothing is written.
func updateFields[T any](ctx context.Context, db *gorm.DB, id uint, fields map[string]any, preload ...string) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var out T
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current T
		if err := tx.First(&current, id).Error; err != nil {
			return err
		}
		if len(fields) > 0 {
			if err := tx.Model(&current).Updates(fields).Error; err != nil {
				return err
			}
		}
		q := tx
		for _, p := range preload {
			q = q.Preload(p)
		}
		return q.First(&out, id).Error
	})
	if err != nil {
		return nil, classify(err)
	}
	return &out, nil
}

func deleteByID[T any](ctx context.Context, db *gorm.DB, id uint) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res := db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
