package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/fidellopezm03/inventory-admin/cmd/model"
)

type CategoryRepo interface {
	List(ctx context.Context) ([]model.Category, error)
	GetByName(ctx context.Context, name string) (*model.Category, error)
	Create(ctx context.Context, name string) (*model.Category, error)
	Update(ctx context.Context, id uint, name string) (*model.Category, error)
	Delete(ctx context.Context, id uint) error
}

type gormCategoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) CategoryRepo {
	return &gormCategoryRepo{db: db}
}

func (r *gormCategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	return listAll[model.Category](ctx, r.db, "Products", "Variants")
}

// GetByName matches the category name ignoring case. When several categories share
// a name the oldest wins.
func (r *gormCategoryRepo) GetByName(ctx context.Context, name string) (*model.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var c model.Category
	err := r.db.WithContext(ctx).
		Preload("Products").
		Preload("Variants").
		Where("name_key = ?", model.NameKey(name)).
		Order("id").
		First(&c).Error
	if err != nil {
		return nil, classify(err)
	}
	return &c, nil
}

func (r *gormCategoryRepo) Create(ctx context.Context, name string) (*model.Category, error) {
	c := &model.Category{Name: name, NameKey: model.NameKey(name)}
	if err := insert(ctx, r.db, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *gormCategoryRepo) Update(ctx context.Context, id uint, name string) (*model.Category, error) {
	return updateFields[model.Category](ctx, r.db, id, map[string]any{"name": name, "name_key": model.NameKey(name)})
}

func (r *gormCategoryRepo) Delete(ctx context.Context, id uint) error {
	return deleteByID[model.Category](ctx, r.db, id)
}
