package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/fidellopezm03/inventory-admin/cmd/model"
)

// ProductRepo gives access to catalog products and their category and brand.
type ProductRepo interface {
	List(ctx context.Context) ([]model.Product, error)
	Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error)
	Update(ctx context.Context, id uint, req *model.ProductRequest) (*model.Product, error)
	Delete(ctx context.Context, id uint) error
}

type gormProductRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepo {
	return &gormProductRepo{db: db}
}

func (r *gormProductRepo) List(ctx context.Context) ([]model.Product, error) {
	return listAll[model.Product](ctx, r.db, "Category", "Brand")
}

func (r *gormProductRepo) Create(ctx context.Context, req *model.ProductRequest) (*model.Product, error) {
	p := &model.Product{
		Name:       *req.Name,
		Price:      *req.Price,
		CategoryID: *req.CategoryID,
		BrandID:    req.BrandID,
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if err := insert(ctx, r.db, p); err != nil {
		return nil, err
	}
	return getByID[model.Product](ctx, r.db, p.ID, "Category", "Brand")
}

// Update overwrites only the supplied fields. BrandID cannot be cleared through it.
func (r *gormProductRepo) Update(ctx context.Context, id uint, req *model.ProductRequest) (*model.Product, error) {
	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.CategoryID != nil {
		fields["category_id"] = *req.CategoryID
	}
	if req.BrandID != nil {
		fields["brand_id"] = *req.BrandID
	}
	return updateFields[model.Product](ctx, r.db, id, fields, "Category", "Brand")
}

func (r *gormProductRepo) Delete(ctx context.Context, id uint) error {
	return deleteByID[model.Product](ctx, r.db, id)
}
