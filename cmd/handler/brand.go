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

type BrandHandler struct {
	resource
	repo repository.BrandRepo
}

func NewBrandHandler(repo repository.BrandRepo, deps Deps) *BrandHandler {
	return &BrandHandler{resource: newResource("Brand", cache.TagBrand, deps), repo: repo}
}

func (h *BrandHandler) RegisterRoutes(r chi.Router) {
	r.Route("/brands", func(r chi.Router) {
		r.Get("/", h.getAll)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *BrandHandler) getAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func() (any, error) { return h.repo.List(r.Context()) })
}

func (h *BrandHandler) create(w http.ResponseWriter, r *http.Request) {
	var req model.NameRequest
	if err := bind(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	b, err := h.repo.Create(r.Context(), req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.changed(r, events.OpCreated, b.ID, b)
	created(w, r, b)
}

func (h *BrandHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req model.NameRequest
	if err := bind(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	b, err := h.repo.Update(r.Context(), id, req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.changed(r, events.OpUpdated, b.ID, b)
	ok(w, r, b)
}

func (h *BrandHandler) delete(w http.ResponseWriter, r *http.Request) {
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
