package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fidellopezm03/inventory-admin/cmd/internal/cache"
	"github.com/fidellopezm03/inventory-admin/cmd/internal/events"
	"github.com/fidellopezm03/inventory-admin/cmd/model"
	"github.com/fidellopezm03/inventory-admin/cmd/repository"
)

type SupplierHandler struct {
	resource
	repo repository.SupplierRepo
}

func NewSupplierHandler(repo repository.SupplierRepo, deps Deps) *SupplierHandler {
	res := newResource("Supplier", cache.TagSupplier, deps)
	res.duplicate = "Supplier with this name already exists"
	return &SupplierHandler{resource: res, repo: repo}
}

func (h *SupplierHandler) RegisterRoutes(r chi.Router) {
	r.Route("/suppliers", func(r chi.Router) {
		r.Get("/", h.getAll)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *SupplierHandler) getAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func() (any, error) { return h.repo.List(r.Context()) })
}

func (h *SupplierHandler) create(w http.ResponseWriter, r *http.Request) {
	var req model.SupplierRequest
	if err := bind(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	s, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.changed(r, events.OpCreated, s.ID, s)
	created(w, r, s)
}

func (h *SupplierHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req model.SupplierRequest
	if err := bind(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	s, err := h.repo.Update(r.Context(), id, &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.changed(r, events.OpUpdated, s.ID, s)
	ok(w, r, s)
}

func (h *SupplierHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.changed(r, events.OpDeleted, id, nil)
	message(w, r, http.StatusOK, "Supplier deleted successfully")
}
