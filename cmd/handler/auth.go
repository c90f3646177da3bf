package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/fidellopezm03/inventory-admin/cmd/internal/authz"
	"github.com/fidellopezm03/inventory-admin/cmd/internal/cache"
	"github.com/fidellopezm03/inventory-admin/cmd/internal/events"
	"github.com/fidellopezm03/inventory-admin/cmd/middleware"
	"github.com/fidellopezm03/inventory-admin/cmd/model"
	"github.com/fidellopezm03/inventory-admin/cmd/repository"
	"github.com/fidellopezm03/inventory-admin/cmd/service"
)

const signInErrorLocation = authz.SignInPath + "?error=CredentialsSignin"

type AuthHandler struct {
	resource
	svc service.AuthService
}

func NewAuthHandler(svc service.AuthService, deps Deps) *AuthHandler {
	res := newResource("User", cache.TagUser, deps)
	res.duplicate = "Email already exists"
	return &AuthHandler{resource: res, svc: svc}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router, policy authz.Policy) {
	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.Authorize(policy, authz.SignIn)).Get("/signin", h.signInPage)
		r.Post("/signin", h.signIn)
		r.Post("/signup", h.signUp)
		r.Get("/signout", h.signOut)
		r.Post("/signout", h.signOut)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(policy, authz.Account))
			r.Get("/session", h.session)
			r.Post("/change-password", h.changePassword)
		})
	})
}

func isForm(r *http.Request) bool {
	return render.GetRequestContentType(r) == render.ContentTypeForm
}

func (h *AuthHandler) signInPage(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"message": "Sign in required"}
	if r.URL.Query().Get("error") == "CredentialsSignin" {
		resp["error"] = service.ErrInvalidCredentials.Error()
	}
	ok(w, r, resp)
}

// signIn answers JSON clients with the token and form posts with a redirect.
func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request) {
	var req model.SignInRequest
	if err := bind(r, &req); err != nil {
		if isForm(r) {
			http.Redirect(w, r, signInErrorLocation, http.StatusSeeOther)
			return
		}
		h.fail(w, r, err)
		return
	}
	p, token, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if isForm(r) {
			http.Redirect(w, r, signInErrorLocation, http.StatusSeeOther)
			return
		}
		if errors.Is(err, service.ErrInvalidCredentials) {
			message(w, r, http.StatusUnauthorized, err.Error())
			return
		}
		h.fail(w, r, err)
		return
	}

	h.svc.Sessions().SetCookie(w, token)
	if isForm(r) {
		http.Redirect(w, r, authz.DashboardPath, http.StatusSeeOther)
		return
	}
	ok(w, r, map[string]any{
		"message": "Login successful",
		"token":   token,
		"user":    p,
	})
}

func (h *AuthHandler) signUp(w http.ResponseWriter, r *http.Request) {
	var req model.SignUpRequest
	if err := bind(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	u, err := h.svc.SignUp(r.Context(), &req)
	if errors.Is(err, service.ErrSignUpDisabled) {
		message(w, r, http.StatusForbidden, err.Error())
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.changed(r, events.OpCreated, u.ID, u)
	created(w, r, u)
}

func (h *AuthHandler) signOut(w http.ResponseWriter, r *http.Request) {
	h.svc.Sessions().ClearCookie(w)
	message(w, r, http.StatusOK, "Logout successful")
}

func (h *AuthHandler) session(w http.ResponseWriter, r *http.Request) {
	ok(w, r, map[string]any{"user": authz.FromContext(r.Context())})
}

func (h *AuthHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req model.ChangePasswordRequest
	if err := bind(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	err := h.svc.ChangePassword(r.Context(), authz.FromContext(r.Context()), req.OldPassword, req.NewPassword)
	switch {
	case err == nil:
		message(w, r, http.StatusOK, "Password changed successfully")
	case errors.Is(err, repository.ErrWrongPassword):
		message(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAccountReadOnly):
		message(w, r, http.StatusForbidden, err.Error())
	default:
		h.fail(w, r, err)
	}
}
