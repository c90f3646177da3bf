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

// TransactionHandler records sales and purchases. Stock levels are not adjusted.
type TransactionHandler struct {
	resource
	repo repository.TransactionRepo
}

func NewTransactionHandler(repo repository.TransactionRepo, deps Deps) *TransactionHandler {
	return &TransactionHandler{resource: newResource("Transaction", cache.TagTransaction, deps), repo: repo}
}

func (h *TransactionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/transactions", func(r chi.Router) {
		r.Get("/", h.getAll)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *TransactionHandler) getAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func() (any, error) { return h.repo.List(r.Context()) })
}

func (h *TransactionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req model.TransactionRequest
	if err := bind(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	tx, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.changed(r, events.OpCreated, tx.ID, tx)
	created(w, r, tx)
}

func (h *TransactionHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req model.TransactionRequest
	if err := bind(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	tx, err := h.repo.Update(r.Context(), id, &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.changed(r, events.OpUpdated, tx.ID, tx)
	ok(w, r, tx)
}

func (h *TransactionHandler) delete(w http.ResponseWriter, r *http.Request) {
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
