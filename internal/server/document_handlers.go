package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terraconstructs/sandaran/internal/authz"
	"github.com/terraconstructs/sandaran/internal/db/models"
	"github.com/terraconstructs/sandaran/internal/services/document"
	"github.com/terraconstructs/sandaran/internal/services/validation"
)

func (h *handlers) mountDocuments(r chi.Router) {
	r.With(h.guard(authz.OpCreateDocument)).Post("/documents", h.handleCreateDocument)
	r.With(h.guard(authz.OpListDocuments)).Get("/documents", h.handleListDocuments)
	r.With(h.guard(authz.OpReadDocument)).Get("/documents/{documentID}", h.handleGetDocument)
	r.With(h.guard(authz.OpUpdateDocument)).Patch("/documents/{documentID}", h.handleUpdateDocument)
	r.With(h.guard(authz.OpDeleteDocument)).Delete("/documents/{documentID}", h.handleDeleteDocument)
}

func (h *handlers) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var in document.CreateInput
	if err := h.decode(w, r, validation.SchemaCreateDocument, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	doc, err := h.svc.Documents.Create(r.Context(), principal(r), projectID(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, doc)
}

func (h *handlers) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	fileType := models.DocumentType(r.URL.Query().Get("fileType"))
	docs, err := h.svc.Documents.List(r.Context(), projectID(r), fileType)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeList(h, w, r, docs)
}

func (h *handlers) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.svc.Documents.Get(r.Context(), projectID(r), chi.URLParam(r, "documentID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, doc)
}

func (h *handlers) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	var in document.UpdateInput
	if err := h.decode(w, r, validation.SchemaUpdateDocument, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	doc, err := h.svc.Documents.Update(r.Context(), principal(r), projectID(r), chi.URLParam(r, "documentID"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, doc)
}

func (h *handlers) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Documents.Delete(r.Context(), principal(r), projectID(r), chi.URLParam(r, "documentID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
