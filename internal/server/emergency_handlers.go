package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/terraconstructs/sandaran/internal/authz"
	"github.com/terraconstructs/sandaran/internal/db/models"
	"github.com/terraconstructs/sandaran/internal/services/emergency"
	"github.com/terraconstructs/sandaran/internal/services/validation"
)

func (h *handlers) mountEmergency(r chi.Router) {
	r.Route("/emergency-fund", func(r chi.Router) {
		r.With(h.guard(authz.OpReadFund)).Get("/", h.handleGetFund)
		r.With(h.guard(authz.OpAddFundBalance)).Post("/balance", h.handleAddFundBalance)
		r.With(h.guard(authz.OpRequestFund)).Post("/requests", h.handleRequestFund)
		r.With(h.guard(authz.OpVerifyFund)).Post("/transactions/{transactionID}/verify", h.handleVerifyFund)
		r.With(h.guard(authz.OpListFundTransactions)).Get("/transactions", h.handleListFundTransactions)
	})
}

func (h *handlers) handleGetFund(w http.ResponseWriter, r *http.Request) {
	fund, err := h.svc.Emergency.Get(r.Context(), projectID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, fund)
}

func (h *handlers) handleAddFundBalance(w http.ResponseWriter, r *http.Request) {
	var in emergency.BalanceInput
	if err := h.decode(w, r, validation.SchemaAddFundBalance, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	fund, err := h.svc.Emergency.AddBalance(r.Context(), principal(r), projectID(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, fund)
}

func (h *handlers) handleRequestFund(w http.ResponseWriter, r *http.Request) {
	var in emergency.RequestInput
	if err := h.decode(w, r, validation.SchemaRequestFund, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	tx, err := h.svc.Emergency.Request(r.Context(), principal(r), projectID(r), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, tx)
}

func (h *handlers) handleVerifyFund(w http.ResponseWriter, r *http.Request) {
	var in emergency.VerifyInput
	if err := h.decode(w, r, validation.SchemaVerifyFund, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	tx, err := h.svc.Emergency.Verify(r.Context(), principal(r), projectID(r), chi.URLParam(r, "transactionID"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tx)
}

func (h *handlers) handleListFundTransactions(w http.ResponseWriter, r *http.Request) {
	status := models.TransactionStatus(r.URL.Query().Get("status"))
	txs, err := h.svc.Emergency.ListTransactions(r.Context(), projectID(r), status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeList(h, w, r, txs)
}
