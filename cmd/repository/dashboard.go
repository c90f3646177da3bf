package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/fidellopezm03/inventory-admin/cmd/model"
)

type DashboardRepo interface {
	Summary(ctx context.Context) (*model.DashboardSummary, error)
	Ping(ctx context.Context) error
}

type gormDashboardRepo struct {
	db *gorm.DB
}

func NewDashboardRepo(db *gorm.DB) DashboardRepo {
	return &gormDashboardRepo{db: db}
}

const latestTransactions = 10

func (r *gormDashboardRepo) Summary(ctx context.Context) (*model.DashboardSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	db := r.db.WithContext(ctx)
	s := &model.DashboardSummary{}
	counts := []struct {
		model any
		dst   *int64
	}{
		{&model.User{}, &s.Users},
		{&model.Category{}, &s.Categories},
		{&model.Brand{}, &s.Brands},
		{&model.Product{}, &s.Products},
		{&model.Variant{}, &s.Variants},
		{&model.Supplier{}, &s.Suppliers},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dst).Error; err != nil {
			return nil, classify(err)
		}
	}
	if err := db.Model(&model.Variant{}).Where("status = ?", model.StatusLowStock).Count(&s.LowStockVariants).Error; err != nil {
		return nil, classify(err)
	}
	if err := db.Model(&model.Variant{}).Where("status = ?", model.StatusOutOfStock).Count(&s.OutOfStockVariants).Error; err != nil {
		return nil, classify(err)
	}
	s.LatestTransactions = []model.Transaction{}
	if err := db.Preload("Variant").Order("created_at DESC, id DESC").Limit(latestTransactions).Find(&s.LatestTransactions).Error; err != nil {
		return nil, classify(err)
	}
	return s, nil
}

func (r *gormDashboardRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
