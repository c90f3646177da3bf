package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth"

	"github.com/fidellopezm03/inventory-admin/cmd/model"
)

const CookieName = "jwt"

// Sessions issues and reads HS256 session tokens. A token carries sub, role, email,
// name and exp.
type Sessions struct {
	auth   *jwtauth.JWTAuth
	ttl    time.Duration
	secure bool
}

func NewSessions(secret string, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{
		auth:   jwtauth.New("HS256", []byte(secret), nil),
		ttl:    ttl,
		secure: secure,
	}
}

// Auth is the verifier used by the jwtauth middleware.
func (s *Sessions) Auth() *jwtauth.JWTAuth { return s.auth }

func (s *Sessions) TTL() time.Duration { return s.ttl }

func (s *Sessions) Issue(p *model.Principal) (string, error) {
	_, tokenString, err := s.auth.Encode(map[string]interface{}{
		"sub":   p.UserID,
		"role":  string(p.Role),
		"email": p.Email,
		"name":  p.Name,
		"iat":   jwtauth.EpochNow(),
		"exp":   jwtauth.ExpireIn(s.ttl),
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// Parse verifies tokenString and returns its principal.
func (s *Sessions) Parse(tokenString string) (*model.Principal, error) {
	token, err := jwtauth.VerifyToken(s.auth, tokenString)
	if err != nil {
		return nil, err
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		return nil, err
	}
	p, ok := PrincipalFromClaims(claims)
	if !ok {
		return nil, jwtauth.ErrUnauthorized
	}
	return p, nil
}

// PrincipalFromClaims reads the session claims. Tokens without a subject or with an
// unknown role are rejected.
func PrincipalFromClaims(claims map[string]interface{}) (*model.Principal, bool) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, false
	}
	rawRole, _ := claims["role"].(string)
	role, ok := model.ParseRole(rawRole)
	if !ok {
		return nil, false
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	return &model.Principal{UserID: sub, Name: name, Email: email, Role: role}, true
}

func (s *Sessions) SetCookie(w http.ResponseWriter, tokenString string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    tokenString,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(s.ttl),
	})
}

func (s *Sessions) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
