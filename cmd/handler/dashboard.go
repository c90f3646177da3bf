package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fidellopezm03/inventory-admin/cmd/repository"
)

type DashboardHandler struct {
	repo repository.DashboardRepo
}

func NewDashboardHandler(repo repository.DashboardRepo) *DashboardHandler {
	return &DashboardHandler{repo: repo}
}

// RegisterRoutes mounts the landing summary. Access control is applied by the caller.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.summary)
}

func (h *DashboardHandler) summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.repo.Summary(r.Context())
	if err != nil {
		log.Printf("Error: dashboard summary: %v", err)
		message(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	ok(w, r, s)
}

// Healthz pings the database.
func (h *DashboardHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Ping(r.Context()); err != nil {
		log.Printf("health check failed: %v", err)
		message(w, r, http.StatusServiceUnavailable, "Database unavailable")
		return
	}
	ok(w, r, map[string]string{"status": "ok"})
}

func Home(w http.ResponseWriter, r *http.Request) {
	message(w, r, http.StatusOK, "Inventory admin API")
}
