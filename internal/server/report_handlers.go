package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/terraconstructs/sandaran/internal/authz"
	"github.com/terraconstructs/sandaran/internal/repository"
	"github.com/terraconstructs/sandaran/internal/services/comment"
	"github.com/terraconstructs/sandaran/internal/services/report"
	"github.com/terraconstructs/sandaran/internal/services/validation"
)

func (h *handlers) mountReports(r chi.Router) {
	r.With(h.guard(authz.OpCreateReport)).Post("/reports", h.handleCreateReport)
	r.With(h.guard(authz.OpListReports)).Get("/reports", h.handleListReports)
	r.With(h.guard(authz.OpReadReport)).Get("/reports/{reportID}", h.handleGetReport)
	r.With(h.guard(authz.OpReadReport)).Get("/reports/by-slug/{slug}", h.handleGetReportBySlug)
	r.With(h.guard(authz.OpUpdateReport)).Patch("/reports/{reportID}", h.handleUpdateReport)
	r.With(h.guard(authz.OpDeleteReport)).Delete("/reports/{reportID}", h.handleDeleteReport)

	r.With(h.guard(authz.OpCreateTask)).Post("/reports/{reportID}/tasks", h.handleCreateTask)
	r.With(h.guard(authz.OpUpdateTask)).Patch("/tasks/{taskID}", h.handleUpdateTask)
	r.With(h.guard(authz.OpDeleteTask)).Delete("/tasks/{taskID}", h.handleDeleteTask)

	r.With(h.guard(authz.OpAttachMedia)).Post("/reports/{reportID}/media", h.handleAttachMedia)
	r.With(h.guard(authz.OpDeleteMedia)).Delete("/media/{mediaID}", h.handleDeleteMedia)
}

func (h *handlers) mountComments(r chi.Router) {
	r.With(h.guard(authz.OpCreateComment)).Post("/reports/{reportID}/comments", h.handleCreateComment)
	r.With(h.guard(authz.OpListComments)).Get("/reports/{reportID}/comments", h.handleListComments)
	r.With(h.guard(authz.OpUpdateComment)).Patch("/comments/{commentID}", h.handleUpdateComment)
	r.With(h.guard(authz.OpDeleteComment)).Delete("/comments/{commentID}", h.handleDeleteComment)
}

func (h *handlers) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var in report.CreateInput
	if err := h.decode(w, r, validation.SchemaCreateReport, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	rep, err := h.svc.Reports.Create(r.Context(), principal(r), projectID(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, rep)
}

// handleListReports serves one page of reports. The filter expression is
// applied to the page after pagination.
func (h *handlers) handleListReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := repository.DefaultPageSize
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > repository.MaxPageSize {
			h.writeError(w, r, &validation.Error{
				Path:    "limit",
				Message: fmt.Sprintf("must be an integer between 1 and %d", repository.MaxPageSize),
			})
			return
		}
		limit = n
	}

	page, err := h.svc.Reports.List(r.Context(), projectID(r), q.Get("cursor"), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	page.Reports, err = filterItems(h, r, page.Reports)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, page)
}

func (h *handlers) handleGetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Reports.Get(r.Context(), projectID(r), chi.URLParam(r, "reportID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rep)
}

func (h *handlers) handleGetReportBySlug(w http.ResponseWriter, r *http.Request) {
	rep, err := h.svc.Reports.GetBySlug(r.Context(), projectID(r), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rep)
}

func (h *handlers) handleUpdateReport(w http.ResponseWriter, r *http.Request) {
	var in report.UpdateInput
	if err := h.decode(w, r, validation.SchemaUpdateReport, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	rep, err := h.svc.Reports.Update(r.Context(), principal(r), projectID(r), chi.URLParam(r, "reportID"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rep)
}

func (h *handlers) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reports.Delete(r.Context(), principal(r), projectID(r), chi.URLParam(r, "reportID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in report.TaskInput
	if err := h.decode(w, r, validation.SchemaCreateTask, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	task, err := h.svc.Reports.CreateTask(r.Context(), principal(r), projectID(r), chi.URLParam(r, "reportID"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, task)
}

func (h *handlers) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var in report.TaskUpdate
	if err := h.decode(w, r, validation.SchemaUpdateTask, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	task, err := h.svc.Reports.UpdateTask(r.Context(), principal(r), projectID(r), chi.URLParam(r, "taskID"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, task)
}

func (h *handlers) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reports.DeleteTask(r.Context(), principal(r), projectID(r), chi.URLParam(r, "taskID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) handleAttachMedia(w http.ResponseWriter, r *http.Request) {
	var in report.MediaInput
	if err := h.decode(w, r, validation.SchemaAttachMedia, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	media, err := h.svc.Reports.AttachMedia(r.Context(), principal(r), projectID(r), chi.URLParam(r, "reportID"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, media)
}

func (h *handlers) handleDeleteMedia(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reports.DeleteMedia(r.Context(), principal(r), projectID(r), chi.URLParam(r, "mediaID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var in comment.Input
	if err := h.decode(w, r, validation.SchemaComment, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.Comments.Create(r.Context(), principal(r), projectID(r), chi.URLParam(r, "reportID"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, c)
}

func (h *handlers) handleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.svc.Comments.List(r.Context(), projectID(r), chi.URLParam(r, "reportID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeList(h, w, r, comments)
}

func (h *handlers) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	var in comment.Input
	if err := h.decode(w, r, validation.SchemaComment, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.svc.Comments.Update(r.Context(), principal(r), projectID(r), chi.URLParam(r, "commentID"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, c)
}

func (h *handlers) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Comments.Delete(r.Context(), principal(r), projectID(r), chi.URLParam(r, "commentID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
