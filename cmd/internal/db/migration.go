package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/fidellopezm03/inventory-admin/cmd/model"
)

// ApplyMigrations creates or updates every table of the inventory schema.
func ApplyMigrations(gdb *gorm.DB) error {
	err := gdb.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Brand{},
		&model.Product{},
		&model.Variant{},
		&model.Supplier{},
		&model.Transaction{},
	)
	if err != nil {
		return fmt.Errorf("error applying migration: %w", err)
	}
	return backfillCategoryKeys(gdb)
}

// backfillCategoryKeys fills name_key for rows written before the column existed.
func backfillCategoryKeys(gdb *gorm.DB) error {
	var rows []model.Category
	if err := gdb.Select("id", "name").Where("name_key = ?", "").Find(&rows).Error; err != nil {
		return fmt.Errorf("error reading categories: %w", err)
	}
	for _, c := range rows {
		err := gdb.Model(&model.Category{}).Where("id = ?", c.ID).UpdateColumn("name_key", model.NameKey(c.Name)).Error
		if err != nil {
			return fmt.Errorf("error backfilling category %d: %w", c.ID, err)
		}
	}
	return nil
}

// SeedAdmin inserts an Admin account when the users table is empty. It is a no-op
// when password is empty or any user exists.
func SeedAdmin(ctx context.Context, gdb *gorm.DB, name, email, password string) (bool, error) {
	if password == "" {
		return false, nil
	}
	var count int64
	if err := gdb.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("error counting users: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}
	admin := model.User{
		Name:     name,
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Password: string(hash),
		Role:     model.RoleAdmin,
	}
	if err := gdb.WithContext(ctx).Create(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, fmt.Errorf("error seeding admin: %w", err)
	}
	log.Printf("Seeded admin account %s", admin.Email)
	return true, nil
}
