package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/fidellopezm03/inventory-admin/cmd/internal/cache"
	"github.com/fidellopezm03/inventory-admin/cmd/internal/events"
	"github.com/fidellopezm03/inventory-admin/cmd/model"
	"github.com/fidellopezm03/inventory-admin/cmd/repository"
)

// ProductHandler exposes the product catalogue. Listings embed category and brand.
type ProductHandler struct {
	resource
	repo repository.ProductRepo
}

func NewProductHandler(repo repository.ProductRepo, deps Deps) *ProductHandler {
	return &ProductHandler{resource: newResource("Product", cache.TagProduct, deps), repo: repo}
}

func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.getAll)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *ProductHandler) getAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func() (any, error) { return h.repo.List(r.Context()) })
}

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	var req model.ProductRequest
	if err := bind(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.changed(r, events.OpCreated, p.ID, p)
	created(w, r, p)
}

func (h *ProductHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req model.ProductRequest
	if err := bind(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.repo.Update(r.Context(), id, &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.changed(r, events.OpUpdated, p.ID, p)
	ok(w, r, p)
}

func (h *ProductHandler) delete(w http.ResponseWriter, r *http.Request) {
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
	render.NoContent(w, r)
}
