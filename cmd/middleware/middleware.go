package middleware

import (
	"context"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"

	"github.com/fidellopezm03/inventory-admin/cmd/internal/authz"
	"github.com/fidellopezm03/inventory-admin/cmd/internal/env"
	"github.com/fidellopezm03/inventory-admin/cmd/model"
	"github.com/fidellopezm03/inventory-admin/cmd/service"
)

func RecoverPanic() func(http.Handler) http.Handler {

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Printf("panic recovered: %v\n%s", rec, debug.Stack())
					render.Status(r, http.StatusInternalServerError)
					render.JSON(w, r, map[string]string{"message": "Internal server error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func CORSmiddleware(env *env.Env) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{env.AddrClient},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "X-Cache"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// Resolver maps the principal read from a token to the current one. A nil result makes
// the request anonymous.
type Resolver func(ctx context.Context, p *model.Principal) (*model.Principal, error)

// Session reads the session token from the Authorization header or the jwt cookie and
// stores its principal in the request context. Missing, expired or forged tokens leave
// the request anonymous. A nil resolve trusts the token claims.
func Session(sessions *service.Sessions, resolve Resolver) func(http.Handler) http.Handler {
	verify := jwtauth.Verify(sessions.Auth(), jwtauth.TokenFromHeader, jwtauth.TokenFromCookie)
	return func(next http.Handler) http.Handler {
		attach := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err == nil && token != nil {
				if p, ok := service.PrincipalFromClaims(claims); ok {
					if resolve != nil {
						if p, err = resolve(r.Context(), p); err != nil {
							log.Printf("error resolving session: %v", err)
							render.Status(r, http.StatusInternalServerError)
							render.JSON(w, r, map[string]string{"message": "Internal server error"})
							return
						}
					}
					if p != nil {
						r = r.WithContext(authz.WithPrincipal(r.Context(), p))
					}
				}
			}
			next.ServeHTTP(w, r)
		})
		return verify(attach)
	}
}

// Authorize applies policy to every request of the given route class.
func Authorize(policy authz.Policy, class authz.RouteClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := policy.Decide(class, authz.StateOf(authz.FromContext(r.Context())))
			switch d.Action {
			case authz.Allow:
				next.ServeHTTP(w, r)
			case authz.Redirect:
				http.Redirect(w, r, d.Location, http.StatusFound)
			default:
				render.Status(r, d.Status)
				render.JSON(w, r, map[string]string{"message": http.StatusText(d.Status)})
			}
		})
	}
}
