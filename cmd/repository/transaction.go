package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/fidellopezm03/inventory-admin/cmd/model"
)

// TransactionRepo records sale and purchase events. It never touches variant stock.
type TransactionRepo interface {
	List(ctx context.Context) ([]model.Transaction, error)
	Create(ctx context.Context, req *model.TransactionRequest) (*model.Transaction, error)
	Update(ctx context.Context, id uint, req *model.TransactionRequest) (*model.Transaction, error)
	Delete(ctx context.Context, id uint) error
}

type gormTransactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepo {
	return &gormTransactionRepo{db: db}
}

func (r *gormTransactionRepo) List(ctx context.Context) ([]model.Transaction, error) {
	return listAll[model.Transaction](ctx, r.db, "Variant")
}

func (r *gormTransactionRepo) Create(ctx context.Context, req *model.TransactionRequest) (*model.Transaction, error) {
	t := &model.Transaction{
		VariantID: *req.VariantID,
		Type:      model.TransactionType(*req.Type),
		Quantity:  *req.Quantity,
	}
	if req.Note != nil {
		t.Note = *req.Note
	}
	if err := insert(ctx, r.db, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *gormTransactionRepo) Update(ctx context.Context, id uint, req *model.TransactionRequest) (*model.Transaction, error) {
	fields := map[string]any{}
	if req.VariantID != nil {
		fields["variant_id"] = *req.VariantID
	}
	if req.Type != nil {
		fields["type"] = *req.Type
	}
	if req.Quantity != nil {
		fields["quantity"] = *req.Quantity
	}
	if req.Note != nil {
		fields["note"] = *req.Note
	}
	return updateFields[model.Transaction](ctx, r.db, id, fields)
}

func (r *gormTransactionRepo) Delete(ctx context.Context, id uint) error {
	return deleteByID[model.Transaction](ctx, r.db, id)
}
