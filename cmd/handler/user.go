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

type UserHandler struct {
	resource
	repo repository.UserRepo
}

func NewUserHandler(repo repository.UserRepo, deps Deps) *UserHandler {
	res := newResource("User", cache.TagUser, deps)
	res.duplicate = "Email already exists"
	return &UserHandler{resource: res, repo: repo}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.getAll)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *UserHandler) getAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func() (any, error) { return h.repo.List(r.Context()) })
}

func (h *UserHandler) create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if err := bind(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.changed(r, events.OpCreated, u.ID, u)
	created(w, r, u)
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req model.UpdateUserRequest
	if err := bind(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.repo.Update(r.Context(), id, &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.changed(r, events.OpUpdated, u.ID, u)
	ok(w, r, u)
}

func (h *UserHandler) delete(w http.ResponseWriter, r *http.Request) {
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
