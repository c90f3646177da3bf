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

type CategoryHandler struct {
	resource
	repo repository.CategoryRepo
}

func NewCategoryHandler(repo repository.CategoryRepo, deps Deps) *CategoryHandler {
	return &CategoryHandler{resource: newResource("Category", cache.TagCategory, deps), repo: repo}
}

func (h *CategoryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.getAll)
		r.Get("/byName/{name}", h.getByName)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *CategoryHandler) getAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func() (any, error) { return h.repo.List(r.Context()) })
}

// getByName matches the name case-insensitively.
func (h *CategoryHandler) getByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	h.list(w, r, func() (any, error) { return h.repo.GetByName(r.Context(), name) })
}

func (h *CategoryHandler) create(w http.ResponseWriter, r *http.Request) {
	var req model.NameRequest
	if err := bind(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.repo.Create(r.Context(), req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.changed(r, events.OpCreated, c.ID, c)
	created(w, r, c)
}

func (h *CategoryHandler) update(w http.ResponseWriter, r *http.Request) {
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
	c, err := h.repo.Update(r.Context(), id, req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.changed(r, events.OpUpdated, c.ID, c)
	ok(w, r, c)
}

func (h *CategoryHandler) delete(w http.ResponseWriter, r *http.Request) {
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
