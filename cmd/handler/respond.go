package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/fidellopezm03/inventory-admin/cmd/model"
	"github.com/fidellopezm03/inventory-admin/cmd/repository"
)

func message(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]string{"message": msg})
}

// bind decodes the body into v and runs its validation. Bodies without a Content-Type
// are read as JSON.
func bind(r *http.Request, v render.Binder) error {
	var err error
	if render.GetRequestContentType(r) == render.ContentTypeUnknown {
		err = render.DecodeJSON(r.Body, v)
	} else {
		err = render.Decode(r, v)
	}
	if err != nil {
		return model.Invalid("Invalid request body")
	}
	return v.Bind(r)
}

func parseID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		return 0, model.Invalid("Invalid id")
	}
	return uint(id), nil
}

// fail answers err with the status its kind maps to. Unknown errors are logged and
// answered with a generic 500.
func (res *resource) fail(w http.ResponseWriter, r *http.Request, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		message(w, r, http.StatusBadRequest, ve.Message)
	case errors.Is(err, errUploadTooLarge):
		message(w, r, http.StatusRequestEntityTooLarge, "Upload too large")
	case errors.Is(err, repository.ErrNotFound):
		message(w, r, http.StatusNotFound, res.name+" not found")
	case errors.Is(err, repository.ErrDuplicate):
		msg := res.duplicate
		if msg == "" {
			msg = res.name + " already exists"
		}
		message(w, r, http.StatusBadRequest, msg)
	case errors.Is(err, repository.ErrForeignKey):
		if r.Method == http.MethodDelete {
			message(w, r, http.StatusBadRequest, res.name+" is still referenced")
			return
		}
		message(w, r, http.StatusBadRequest, "Referenced record does not exist")
	default:
		log.Printf("Error: %s %s: %v", r.Method, r.URL.Path, err)
		message(w, r, http.StatusInternalServerError, "Internal server error")
	}
}
