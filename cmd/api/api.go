package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"

	"github.com/fidellopezm03/inventory-admin/cmd/handler"
	"github.com/fidellopezm03/inventory-admin/cmd/internal/authz"
	"github.com/fidellopezm03/inventory-admin/cmd/internal/cache"
	"github.com/fidellopezm03/inventory-admin/cmd/internal/env"
	"github.com/fidellopezm03/inventory-admin/cmd/internal/events"
	"github.com/fidellopezm03/inventory-admin/cmd/middleware"
	"github.com/fidellopezm03/inventory-admin/cmd/repository"
	"github.com/fidellopezm03/inventory-admin/cmd/service"
)

type Api struct {
	config *Config
}
type Config struct {
	addr            string
	shutdownTimeout time.Duration
}

func NewApi(addr string) *Api {
	return &Api{
		config: &Config{
			addr:            addr,
			shutdownTimeout: 10 * time.Second,
		},
	}
}

// Run serves r until ctx is done, then drains in-flight requests.
func (a *Api) Run(ctx context.Context, r http.Handler) error {
	server := &http.Server{
		Addr:              a.config.addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", a.config.addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// Deps is everything the router needs. Cache, Events and Policy fall back to an
// in-process store, a logging publisher and the default policy.
type Deps struct {
	Env    *env.Env
	DB     *gorm.DB
	Auth   service.AuthService
	Cache  cache.Store
	Events events.Publisher
	Policy authz.Policy
}

type routes interface {
	RegisterRoutes(r chi.Router)
}

func NewRouter(d Deps) http.Handler {
	if d.Cache == nil {
		d.Cache = cache.NewMemory(d.Env.CacheTTL)
	}
	if d.Events == nil {
		d.Events = events.Log{}
	}
	if d.Policy == nil {
		d.Policy = authz.DefaultPolicy()
	}
	deps := handler.Deps{Cache: d.Cache, Events: d.Events}
	uploads := handler.NewUploadStore(d.Env.UploadDir)

	users := repository.NewUserRepo(d.DB)
	dashboard := handler.NewDashboardHandler(repository.NewDashboardRepo(d.DB))
	resources := []routes{
		handler.NewUserHandler(users, deps),
		handler.NewCategoryHandler(repository.NewCategoryRepo(d.DB), deps),
		handler.NewBrandHandler(repository.NewBrandRepo(d.DB), deps),
		handler.NewProductHandler(repository.NewProductRepo(d.DB), deps),
		handler.NewVariantHandler(repository.NewVariantRepo(d.DB), uploads, d.Env.MaxUploadMB, deps),
		handler.NewSupplierHandler(repository.NewSupplierRepo(d.DB), deps),
		handler.NewTransactionHandler(repository.NewTransactionRepo(d.DB), deps),
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(middleware.RecoverPanic())
	router.Use(middleware.CORSmiddleware(d.Env))
	router.Use(middleware.Session(d.Auth.Sessions(), d.Auth.Resolve))

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authorize(d.Policy, authz.Public))
		r.Get("/", handler.Home)
		r.Get("/healthz", dashboard.Healthz)
		r.Handle(handler.UploadURLPrefix+"*", uploadServer(uploads.Dir()))
	})

	handler.NewAuthHandler(d.Auth, deps).RegisterRoutes(router, d.Policy)

	router.Route("/dashboard", func(r chi.Router) {
		r.Use(middleware.Authorize(d.Policy, authz.Dashboard))
		dashboard.RegisterRoutes(r)
	})
	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Authorize(d.Policy, authz.API))
		for _, h := range resources {
			h.RegisterRoutes(r)
		}
	})
	return router
}

// uploadServer serves stored files read-only without directory listings.
func uploadServer(dir string) http.Handler {
	fs := http.StripPrefix(handler.UploadURLPrefix, http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}
