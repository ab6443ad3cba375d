package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terraconstructs/sandaran/internal/auth"
	"github.com/terraconstructs/sandaran/internal/authz"
	"github.com/terraconstructs/sandaran/internal/services/project"
	"github.com/terraconstructs/sandaran/internal/services/validation"
)

type memberRoleInput struct {
	Role auth.ProjectRole `mapstructure:"role"`
}

func (h *handlers) mountProjects(r chi.Router) {
	r.Route("/projects", func(r chi.Router) {
		r.With(h.guard(authz.OpListProjects)).Get("/", h.handleListProjects)
		r.With(h.guard(authz.OpCreateProject)).Post("/", h.handleCreateProject)

		r.Route("/{projectID}", func(r chi.Router) {
			r.With(h.guard(authz.OpReadProject)).Get("/", h.handleGetProject)
			r.With(h.guard(authz.OpUpdateProject)).Patch("/", h.handleUpdateProject)
			r.With(h.guard(authz.OpDeleteProject)).Delete("/", h.handleDeleteProject)
			r.With(h.guard(authz.OpListMembers)).Get("/members", h.handleListMembers)
			r.With(h.guard(authz.OpAddMember)).Post("/members", h.handleAddMember)

			h.mountReports(r)
			h.mountComments(r)
			h.mountDocuments(r)
			h.mountEmergency(r)
			h.mountLogistics(r)
		})
	})

	r.With(h.guard(authz.OpUpdateMemberRole)).Put("/members/{memberID}", h.handleUpdateMember)
	r.With(h.guard(authz.OpRemoveMember)).Delete("/members/{memberID}", h.handleRemoveMember)
}

func (h *handlers) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.svc.Projects.List(r.Context(), principal(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeList(h, w, r, projects)
}

func (h *handlers) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var in project.CreateInput
	if err := h.decode(w, r, validation.SchemaCreateProject, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.svc.Projects.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, p)
}

func (h *handlers) handleGetProject(w http.ResponseWriter, r *http.Request) {
	detail, err := h.svc.Projects.Get(r.Context(), projectID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, detail)
}

func (h *handlers) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var in project.UpdateInput
	if err := h.decode(w, r, validation.SchemaUpdateProject, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	p, err := h.svc.Projects.Update(r.Context(), projectID(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *handlers) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Projects.Delete(r.Context(), projectID(r)); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.svc.Projects.ListMembers(r.Context(), projectID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeList(h, w, r, members)
}

func (h *handlers) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var in project.AddMemberInput
	if err := h.decode(w, r, validation.SchemaAddMember, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	m, err := h.svc.Projects.AddMember(r.Context(), projectID(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, m)
}

func (h *handlers) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	var in memberRoleInput
	if err := h.decode(w, r, validation.SchemaUpdateMember, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	m, err := h.svc.Projects.UpdateMemberRole(r.Context(), chi.URLParam(r, "memberID"), in.Role)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, m)
}

func (h *handlers) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Projects.RemoveMember(r.Context(), chi.URLParam(r, "memberID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
