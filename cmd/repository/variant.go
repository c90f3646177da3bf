package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/fidellopezm03/inventory-admin/cmd/model"
)

type VariantRepo interface {
	List(ctx context.Context) ([]model.Variant, error)
	GetByID(ctx context.Context, id uint) (*model.Variant, error)
	Create(ctx context.Context, req *model.VariantRequest) (*model.Variant, error)
	Update(ctx context.Context, id uint, req *model.VariantRequest) (*model.Variant, error)
	Delete(ctx context.Context, id uint) error
}

type gormVariantRepo struct {
	db *gorm.DB
}

func NewVariantRepo(db *gorm.DB) VariantRepo {
	return &gormVariantRepo{db: db}
}

var variantRelations = []string{"Product", "Brand", "Category"}

func (r *gormVariantRepo) List(ctx context.Context) ([]model.Variant, error) {
	return listAll[model.Variant](ctx, r.db, variantRelations...)
}

func (r *gormVariantRepo) GetByID(ctx context.Context, id uint) (*model.Variant, error) {
	return getByID[model.Variant](ctx, r.db, id, variantRelations...)
}

func (r *gormVariantRepo) Create(ctx context.Context, req *model.VariantRequest) (*model.Variant, error) {
	v := &model.Variant{
		Name:       *req.Name,
		ProductID:  req.ProductID,
		BrandID:    *req.BrandID,
		CategoryID: *req.CategoryID,
		Price:      *req.Price,
		Quantity:   *req.Quantity,
		Status:     model.StatusInStock,
	}
	if req.ImageURL != nil {
		v.ImageURL = *req.ImageURL
	}
	if req.Status != nil {
		v.Status = model.VariantStatus(*req.Status)
	}
	if err := insert(ctx, r.db, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Update overwrites the supplied fields; quantity and status are written as given.
func (r *gormVariantRepo) Update(ctx context.Context, id uint, req *model.VariantRequest) (*model.Variant, error) {
	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.ProductID != nil {
		fields["product_id"] = *req.ProductID
	}
	if req.BrandID != nil {
		fields["brand_id"] = *req.BrandID
	}
	if req.CategoryID != nil {
		fields["category_id"] = *req.CategoryID
	}
	if req.ImageURL != nil {
		fields["image_url"] = *req.ImageURL
	}
	if req.Price != nil {
		fields["price"] = *req.Price
	}
	if req.Quantity != nil {
		fields["quantity"] = *req.Quantity
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	return updateFields[model.Variant](ctx, r.db, id, fields, variantRelations...)
}

func (r *gormVariantRepo) Delete(ctx context.Context, id uint) error {
	return deleteByID[model.Variant](ctx, r.db, id)
}
