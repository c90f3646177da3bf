package handler

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fidellopezm03/inventory-admin/cmd/internal/cache"
	"github.com/fidellopezm03/inventory-admin/cmd/internal/events"
	"github.com/fidellopezm03/inventory-admin/cmd/model"
	"github.com/fidellopezm03/inventory-admin/cmd/repository"
)

var errUploadTooLarge = errors.New("upload too large")

type VariantHandler struct {
	resource
	repo     repository.VariantRepo
	uploads  *UploadStore
	maxBytes int64
}

func NewVariantHandler(repo repository.VariantRepo, uploads *UploadStore, maxUploadMB int, deps Deps) *VariantHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &VariantHandler{
		resource: newResource("Variant", cache.TagVariant, deps),
		repo:     repo,
		uploads:  uploads,
		maxBytes: int64(maxUploadMB) << 20,
	}
}

func (h *VariantHandler) RegisterRoutes(r chi.Router) {
	r.Route("/variants", func(r chi.Router) {
		r.Get("/", h.getAll)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *VariantHandler) getAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, func() (any, error) { return h.repo.List(r.Context()) })
}

// readRequest accepts a JSON body or a multipart form with an optional "image" part.
// The stored image URL is returned so the caller can remove it if the write fails.
func (h *VariantHandler) readRequest(w http.ResponseWriter, r *http.Request, create bool) (*model.VariantRequest, string, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		var req model.VariantRequest
		if err := bind(r, &req); err != nil {
			return nil, "", err
		}
		return &req, "", nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", errUploadTooLarge
		}
		return nil, "", model.Invalid("Invalid form data")
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	req, err := model.ParseVariantForm(url.Values(r.MultipartForm.Value))
	if err != nil {
		return nil, "", err
	}
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		// a PUT without an image keeps the current one
		return req, "", req.Validate(create)
	}
	if err != nil {
		return nil, "", model.Invalid("Invalid image")
	}
	defer file.Close()

	pending := ""
	req.ImageURL = &pending
	if err := req.Validate(create); err != nil {
		return nil, "", err
	}
	stored, err := h.uploads.Save(file, header.Filename)
	if err != nil {
		return nil, "", err
	}
	req.ImageURL = &stored
	return req, stored, nil
}

// discard removes an image this server stored. Empty and external URLs are left alone.
func (h *VariantHandler) discard(stored string) {
	if stored == "" {
		return
	}
	if err := h.uploads.Remove(stored); err != nil {
		log.Printf("error removing upload %s: %v", stored, err)
	}
}

func (h *VariantHandler) create(w http.ResponseWriter, r *http.Request) {
	req, stored, err := h.readRequest(w, r, true)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	v, err := h.repo.Create(r.Context(), req)
	if err != nil {
		h.discard(stored)
		h.fail(w, r, err)
		return
	}
	h.changed(r, events.OpCreated, v.ID, v)
	created(w, r, v)
}

func (h *VariantHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	prev, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	req, stored, err := h.readRequest(w, r, false)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	v, err := h.repo.Update(r.Context(), id, req)
	if err != nil {
		h.discard(stored)
		h.fail(w, r, err)
		return
	}
	if prev.ImageURL != v.ImageURL {
		h.discard(prev.ImageURL)
	}
	h.changed(r, events.OpUpdated, v.ID, v)
	ok(w, r, v)
}

func (h *VariantHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	prev, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.discard(prev.ImageURL)
	h.changed(r, events.OpDeleted, id, nil)
	message(w, r, http.StatusOK, "Variant deleted successfully")
}
