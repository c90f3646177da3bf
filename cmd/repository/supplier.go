package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/fidellopezm03/inventory-admin/cmd/model"
)

type SupplierRepo interface {
	List(ctx context.Context) ([]model.Supplier, error)
	Create(ctx context.Context, req *model.SupplierRequest) (*model.Supplier, error)
	Update(ctx context.Context, id uint, req *model.SupplierRequest) (*model.Supplier, error)
	Delete(ctx context.Context, id uint) error
}

type gormSupplierRepo struct {
	db *gorm.DB
}

func NewSupplierRepo(db *gorm.DB) SupplierRepo {
	return &gormSupplierRepo{db: db}
}

func (r *gormSupplierRepo) List(ctx context.Context) ([]model.Supplier, error) {
	return listAll[model.Supplier](ctx, r.db)
}

func (r *gormSupplierRepo) Create(ctx context.Context, req *model.SupplierRequest) (*model.Supplier, error) {
	s := &model.Supplier{
		Name:    *req.Name,
		Contact: req.Contact,
		Email:   req.Email,
		Address: req.Address,
	}
	if err := insert(ctx, r.db, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *gormSupplierRepo) Update(ctx context.Context, id uint, req *model.SupplierRequest) (*model.Supplier, error) {
	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Contact != nil {
		fields["contact"] = *req.Contact
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.Address != nil {
		fields["address"] = *req.Address
	}
	return updateFields[model.Supplier](ctx, r.db, id, fields)
}

func (r *gormSupplierRepo) Delete(ctx context.Context, id uint) error {
	return deleteByID[model.Supplier](ctx, r.db, id)
}
