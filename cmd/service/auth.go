package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/fidellopezm03/inventory-admin/cmd/model"
	"github.com/fidellopezm03/inventory-admin/cmd/repository"
)

var (
	ErrSignUpDisabled  = errors.New("Sign-up is disabled")
	ErrAccountReadOnly = errors.New("Password changes are disabled for this account")
)

type AuthService interface {
	SignIn(ctx context.Context, email, password string) (*model.Principal, string, error)
	SignUp(ctx context.Context, req *model.SignUpRequest) (*model.User, error)
	ChangePassword(ctx context.Context, p *model.Principal, oldPassword, newPassword string) error
	Resolve(ctx context.Context, p *model.Principal) (*model.Principal, error)
	Sessions() *Sessions
}

type authService struct {
	creds    CredentialStore
	users    repository.UserRepo
	sessions *Sessions
}

// NewAuthService builds the sign-in flow. A nil users repo turns off sign-up and password
// changes, which is how the static credential mode runs.
func NewAuthService(creds CredentialStore, users repository.UserRepo, sessions *Sessions) AuthService {
	return &authService{creds: creds, users: users, sessions: sessions}
}

func (s *authService) Sessions() *Sessions { return s.sessions }

// SignIn returns the principal and a fresh session token. No token is issued on failure.
func (s *authService) SignIn(ctx context.Context, email, password string) (*model.Principal, string, error) {
	p, err := s.creds.Verify(ctx, email, password)
	if err != nil {
		return nil, "", err
	}
	token, err := s.sessions.Issue(p)
	if err != nil {
		return nil, "", err
	}
	return p, token, nil
}

// Resolve reloads the account behind a session so role changes and deletions apply on
// the next request. It returns nil when the account no longer exists. Static sessions
// are returned as they are.
func (s *authService) Resolve(ctx context.Context, p *model.Principal) (*model.Principal, error) {
	if s.users == nil {
		return p, nil
	}
	id, err := strconv.ParseUint(p.UserID, 10, 64)
	if err != nil {
		return nil, nil
	}
	u, err := s.users.GetByID(ctx, uint(id))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading session user: %w", err)
	}
	return &model.Principal{UserID: p.UserID, Name: u.Name, Email: u.Email, Role: u.Role}, nil
}

// SignUp always creates a User-role account.
func (s *authService) SignUp(ctx context.Context, req *model.SignUpRequest) (*model.User, error) {
	if s.users == nil {
		return nil, ErrSignUpDisabled
	}
	return s.users.Create(ctx, &model.CreateUserRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     model.RoleUser,
	})
}

func (s *authService) ChangePassword(ctx context.Context, p *model.Principal, oldPassword, newPassword string) error {
	if s.users == nil || p.UserID == StaticID {
		return ErrAccountReadOnly
	}
	id, err := strconv.ParseUint(p.UserID, 10, 64)
	if err != nil {
		return repository.ErrNotFound
	}
	return s.users.ChangePassword(ctx, uint(id), oldPassword, newPassword)
}
