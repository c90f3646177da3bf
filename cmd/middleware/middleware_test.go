package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fidellopezm03/inventory-admin/cmd/internal/authz"
	"github.com/fidellopezm03/inventory-admin/cmd/internal/testutil"
	"github.com/fidellopezm03/inventory-admin/cmd/model"
	"github.com/fidellopezm03/inventory-admin/cmd/service"
)

const testSecret = "middleware-secret"

func newRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(RecoverPanic())
	r.Use(Session(service.NewSessions(testSecret, time.Hour, false), nil))
	ok := func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
	r.With(Authorize(authz.DefaultPolicy(), authz.API)).Get("/api/users", ok)
	r.With(Authorize(authz.DefaultPolicy(), authz.Dashboard)).Get("/dashboard", ok)
	r.With(Authorize(authz.DefaultPolicy(), authz.SignIn)).Get("/auth/signin", ok)
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })
	return r
}

func TestAuthorize(t *testing.T) {
	h := newRouter()
	admin := testutil.GenerateJWTHS256(t, testSecret, "1", "Admin", time.Hour)
	member := testutil.GenerateJWTHS256(t, testSecret, "2", "User", time.Hour)
	expired := testutil.GenerateJWTHS256(t, testSecret, "1", "Admin", 0)

	cases := []struct {
		name, path, token string
		cookie            bool
		status            int
		location          string
	}{
		{"api anonymous", "/api/users", "", false, http.StatusUnauthorized, ""},
		{"api member", "/api/users", member, false, http.StatusForbidden, ""},
		{"api admin bearer", "/api/users", admin, false, http.StatusOK, ""},
		{"api admin cookie", "/api/users", admin, true, http.StatusOK, ""},
		{"api expired", "/api/users", expired, false, http.StatusUnauthorized, ""},
		{"dashboard anonymous", "/dashboard", "", false, http.StatusFound, "/auth/signin"},
		{"dashboard member", "/dashboard", member, true, http.StatusFound, "/"},
		{"dashboard admin", "/dashboard", admin, true, http.StatusOK, ""},
		{"signin logged in", "/auth/signin", member, true, http.StatusFound, "/dashboard"},
		{"signin anonymous", "/auth/signin", "", false, http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.token != "" {
				if tc.cookie {
					req.AddCookie(&http.Cookie{Name: service.CookieName, Value: tc.token})
				} else {
					req.Header.Set("Authorization", "Bearer "+tc.token)
				}
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status=%d want %d body=%s", rec.Code, tc.status, rec.Body.String())
			}
			if loc := rec.Header().Get("Location"); loc != tc.location {
				t.Fatalf("location=%q want %q", loc, tc.location)
			}
		})
	}
}

func TestRecoverPanic(t *testing.T) {
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rec.Code)
	}
	if body := rec.Body.String(); body != "{\"message\":\"Internal server error\"}\n" {
		t.Fatalf("body=%q", body)
	}
}

func TestSessionResolver(t *testing.T) {
	roles := map[string]model.Role{"1": model.RoleUser}
	resolve := func(_ context.Context, p *model.Principal) (*model.Principal, error) {
		if p.UserID == "9" {
			return nil, errors.New("db down")
		}
		role, ok := roles[p.UserID]
		if !ok {
			return nil, nil
		}
		p.Role = role
		return p, nil
	}
	r := chi.NewRouter()
	r.Use(Session(service.NewSessions(testSecret, time.Hour, false), resolve))
	r.With(Authorize(authz.DefaultPolicy(), authz.API)).Get("/api/users", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	cases := []struct {
		name, sub string
		status    int
	}{
		{"demoted", "1", http.StatusForbidden},
		{"deleted", "2", http.StatusUnauthorized},
		{"lookup failure", "9", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			req.Header.Set("Authorization", "Bearer "+testutil.GenerateJWTHS256(t, testSecret, tc.sub, "Admin", time.Hour))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status=%d want %d", rec.Code, tc.status)
			}
		})
	}
}
