package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terraconstructs/sandaran/internal/authz"
	"github.com/terraconstructs/sandaran/internal/services/upload"
	"github.com/terraconstructs/sandaran/internal/services/validation"
)

func (h *handlers) mountUploads(r chi.Router) {
	r.With(h.guard(authz.OpSignUpload)).Post("/uploads/sign", h.handleSignUpload)
	r.With(h.guard(authz.OpDeleteUpload)).Delete("/uploads", h.handleDeleteUpload)
}

func (h *handlers) handleSignUpload(w http.ResponseWriter, r *http.Request) {
	var in upload.SignInput
	if err := h.decode(w, r, validation.SchemaSignUpload, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	signed, err := h.svc.Uploads.Sign(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, signed)
}

func (h *handlers) handleDeleteUpload(w http.ResponseWriter, r *http.Request) {
	publicID := r.URL.Query().Get("publicId")
	if publicID == "" {
		h.writeError(w, r, &validation.Error{Path: "publicId", Message: "publicId is required"})
		return
	}
	if err := h.svc.Uploads.DeleteObject(r.Context(), publicID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
