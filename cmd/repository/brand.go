package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/fidellopezm03/inventory-admin/cmd/model"
)

type BrandRepo interface {
	List(ctx context.Context) ([]model.Brand, error)
	Create(ctx context.Context, name string) (*model.Brand, error)
	Update(ctx context.Context, id uint, name string) (*model.Brand, error)
	Delete(ctx context.Context, id uint) error
}

type gormBrandRepo struct {
	db *gorm.DB
}

func NewBrandRepo(db *gorm.DB) BrandRepo {
	return &gormBrandRepo{db: db}
}

func (r *gormBrandRepo) List(ctx context.Context) ([]model.Brand, error) {
	return listAll[model.Brand](ctx, r.db, "Products", "Variants")
}

func (r *gormBrandRepo) Create(ctx context.Context, name string) (*model.Brand, error) {
	b := &model.Brand{Name: name}
	if err := insert(ctx, r.db, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *gormBrandRepo) Update(ctx context.Context, id uint, name string) (*model.Brand, error) {
	return updateFields[model.Brand](ctx, r.db, id, map[string]any{"name": name})
}

func (r *gormBrandRepo) Delete(ctx context.Context, id uint) error {
	return deleteByID[model.Brand](ctx, r.db, id)
}
