package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/fidellopezm03/inventory-admin/cmd/model"
	"github.com/fidellopezm03/inventory-admin/cmd/repository"
)

var ErrInvalidCredentials = errors.New("Invalid email or password")

// CredentialStore checks an email and password pair and returns who they belong to.
// A mismatch of either is reported as ErrInvalidCredentials.
type CredentialStore interface {
	Verify(ctx context.Context, email, password string) (*model.Principal, error)
}

// TableCredentials checks against the users table and records the login time.
type TableCredentials struct {
	users repository.UserRepo
}

func NewTableCredentials(users repository.UserRepo) *TableCredentials {
	return &TableCredentials{users: users}
}

func (c *TableCredentials) Verify(ctx context.Context, email, password string) (*model.Principal, error) {
	u, err := c.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("error looking up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := c.users.TouchLastLogin(ctx, u.ID); err != nil {
		log.Printf("error recording login for user %d: %v", u.ID, err)
	}
	return &model.Principal{
		UserID: strconv.FormatUint(uint64(u.ID), 10),
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
	}, nil
}

// StaticID is the subject carried by sessions of the configured account.
const StaticID = "static"

// StaticCredentials accepts exactly one configured account, which is always an Admin.
type StaticCredentials struct {
	name  string
	email string
	hash  []byte
}

func NewStaticCredentials(name, email, password string) (*StaticCredentials, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return &StaticCredentials{
		name:  name,
		email: strings.ToLower(strings.TrimSpace(email)),
		hash:  hash,
	}, nil
}

func (c *StaticCredentials) Verify(_ context.Context, email, password string) (*model.Principal, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(c.email)) == 1
	pwErr := bcrypt.CompareHashAndPassword(c.hash, []byte(password))
	if !emailOK || pwErr != nil {
		return nil, ErrInvalidCredentials
	}
	return &model.Principal{UserID: StaticID, Name: c.name, Email: c.email, Role: model.RoleAdmin}, nil
}
