package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terraconstructs/sandaran/internal/authz"
	"github.com/terraconstructs/sandaran/internal/db/models"
	"github.com/terraconstructs/sandaran/internal/services/logistic"
	"github.com/terraconstructs/sandaran/internal/services/validation"
)

func (h *handlers) mountLogistics(r chi.Router) {
	r.Route("/logistics", func(r chi.Router) {
		r.With(h.guard(authz.OpCreateLogisticItem)).Post("/items", h.handleCreateItem)
		r.With(h.guard(authz.OpListLogisticItems)).Get("/items", h.handleListItems)
		r.With(h.guard(authz.OpUpdateLogisticItem)).Patch("/items/{itemID}", h.handleUpdateItem)
		r.With(h.guard(authz.OpDeleteLogisticItem)).Delete("/items/{itemID}", h.handleDeleteItem)
		r.With(h.guard(authz.OpCreateLogisticTransaction)).Post("/transactions", h.handleCreateMovement)
		r.With(h.guard(authz.OpListLogisticTransactions)).Get("/transactions", h.handleListMovements)
		r.With(h.guard(authz.OpReadStock)).Get("/stock", h.handleStock)
	})
}

func (h *handlers) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var in logistic.ItemInput
	if err := h.decode(w, r, validation.SchemaCreateItem, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	item, err := h.svc.Logistics.CreateItem(r.Context(), projectID(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, item)
}

func (h *handlers) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Logistics.ListItems(r.Context(), projectID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeList(h, w, r, items)
}

func (h *handlers) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var in logistic.ItemUpdate
	if err := h.decode(w, r, validation.SchemaUpdateItem, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	item, err := h.svc.Logistics.UpdateItem(r.Context(), projectID(r), chi.URLParam(r, "itemID"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, item)
}

func (h *handlers) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logistics.DeleteItem(r.Context(), projectID(r), chi.URLParam(r, "itemID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) handleCreateMovement(w http.ResponseWriter, r *http.Request) {
	var in logistic.MovementInput
	if err := h.decode(w, r, validation.SchemaCreateMovement, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	tx, err := h.svc.Logistics.CreateTransaction(r.Context(), principal(r), projectID(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, tx)
}

func (h *handlers) handleListMovements(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	txs, err := h.svc.Logistics.ListTransactions(r.Context(), projectID(r), q.Get("itemId"), models.MovementType(q.Get("type")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeList(h, w, r, txs)
}

func (h *handlers) handleStock(w http.ResponseWriter, r *http.Request) {
	stock, err := h.svc.Logistics.Stock(r.Context(), projectID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeList(h, w, r, stock)
}
