package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/fidellopezm03/inventory-admin/cmd/model"
)

type UserRepo interface {
	List(ctx context.Context) ([]model.User, error)
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	Update(ctx context.Context, id uint, req *model.UpdateUserRequest) (*model.User, error)
	Delete(ctx context.Context, id uint) error
	TouchLastLogin(ctx context.Context, id uint) error
	ChangePassword(ctx context.Context, id uint, oldPassword, newPassword string) error
}

type gormUserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &gormUserRepo{db: db}
}

func (r *gormUserRepo) List(ctx context.Context) ([]model.User, error) {
	return listAll[model.User](ctx, r.db)
}

func (r *gormUserRepo) GetByID(ctx context.Context, id uint) (*model.User, error) {
	return getByID[model.User](ctx, r.db, id)
}

// GetByEmail looks the address up case-insensitively; emails are stored lowercased.
func (r *gormUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var u model.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error
	if err != nil {
		return nil, classify(err)
	}
	return &u, nil
}

func (r *gormUserRepo) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
		Role:     req.Role,
	}
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	if err := insert(ctx, r.db, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *gormUserRepo) Update(ctx context.Context, id uint, req *model.UpdateUserRequest) (*model.User, error) {
	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.Role != nil {
		fields["role"] = *req.Role
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		fields["password"] = string(hash)
	}
	return updateFields[model.User](ctx, r.db, id, fields)
}

func (r *gormUserRepo) Delete(ctx context.Context, id uint) error {
	return deleteByID[model.User](ctx, r.db, id)
}

func (r *gormUserRepo) TouchLastLogin(ctx context.Context, id uint) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).UpdateColumn("last_login_at", now)
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormUserRepo) ChangePassword(ctx context.Context, id uint, oldPassword, newPassword string) error {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(oldPassword)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrWrongPassword
		}
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return classify(r.db.WithContext(ctx).Model(u).Update("password", string(hash)).Error)
}
