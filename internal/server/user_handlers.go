package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terraconstructs/sandaran/internal/authz"
	"github.com/terraconstructs/sandaran/internal/services/user"
	"github.com/terraconstructs/sandaran/internal/services/validation"
)

func (h *handlers) mountUsers(r chi.Router) {
	r.With(h.guard(authz.OpListUsers)).Get("/users", h.handleListUsers)
	r.With(h.guard(authz.OpListPendingUsers)).Get("/users/pending", h.handleListPendingUsers)
	r.With(h.guard(authz.OpApproveUser)).Post("/users/{userID}/approve", h.handleApproveUser)
	r.With(h.guard(authz.OpDeactivateUser)).Post("/users/{userID}/deactivate", h.handleDeactivateUser)
	r.With(h.guard(authz.OpSetUserRole)).Put("/users/{userID}/role", h.handleSetUserRole)
	r.With(h.guard(authz.OpReadProfile)).Get("/me", h.handleProfile)
	r.With(h.guard(authz.OpEditOwnProfile)).Patch("/me", h.handleUpdateProfile)
}

func (h *handlers) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Users.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeList(h, w, r, users)
}

func (h *handlers) handleListPendingUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.Users.ListPending(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeList(h, w, r, users)
}

func (h *handlers) handleApproveUser(w http.ResponseWriter, r *http.Request) {
	var in user.RoleInput
	if err := h.decode(w, r, validation.SchemaApproveUser, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.svc.Users.Approve(r.Context(), principal(r), chi.URLParam(r, "userID"), in.Role)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

func (h *handlers) handleDeactivateUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Users.Deactivate(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

func (h *handlers) handleSetUserRole(w http.ResponseWriter, r *http.Request) {
	var in user.RoleInput
	if err := h.decode(w, r, validation.SchemaSetUserRole, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.svc.Users.SetRole(r.Context(), chi.URLParam(r, "userID"), in.Role)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

func (h *handlers) handleProfile(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Users.Profile(r.Context(), principal(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}

func (h *handlers) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in user.ProfileInput
	if err := h.decode(w, r, validation.SchemaUpdateProfile, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	u, err := h.svc.Users.UpdateProfile(r.Context(), principal(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, u)
}
