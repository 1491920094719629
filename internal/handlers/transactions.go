package handlers

import (
	"net/http"

	"github.com/benx421/bankmt/internal/api"
	"github.com/benx421/bankmt/internal/models"
	"github.com/benx421/bankmt/internal/service"
	"github.com/oapi-codegen/runtime"
)

// CreateDeposit handles POST /api/v1/deposits
func (h *Handler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	h.createTransaction(w, r, models.TransactionTypeDeposit)
}

// CreateWithdrawal handles POST /api/v1/withdrawals
func (h *Handler) CreateWithdrawal(w http.ResponseWriter, r *http.Request) {
	h.createTransaction(w, r, models.TransactionTypeWithdrawal)
}

func (h *Handler) createTransaction(w http.ResponseWriter, r *http.Request, typ models.TransactionType) {
	session, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	var body api.TransactionRequest
	if err := decodeJSON(w, r, &body); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.ErrorCodeInvalidRequest, err.Error())
		return
	}

	amount, err := models.ParseAmount(body.Amount)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, api.ErrorCodeInvalidAmount, service.UserMessage(service.ErrCodeInvalidAmount))
		return
	}

	description := service.OnlineDescription(typ)
	if body.Description != nil && *body.Description != "" {
		description = *body.Description
	}

	account, err := h.applier.Apply(r.Context(), session, service.TransactionRequest{
		Type:        typ,
		Amount:      amount,
		Description: description,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	txn := account.Transactions[0]
	api.WriteJSON(w, http.StatusCreated, api.TransactionResponse{
		Transaction: toAPITransaction(txn),
		Balance:     models.FormatCents(account.BalanceCents),
		Message:     service.TransactionMessage(typ, txn.AmountCents),
	})
}

// ListTransactions handles GET /api/v1/transactions
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	var params api.ListTransactionsParams
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		api.WriteError(w, http.StatusBadRequest, api.ErrorCodeInvalidRequest, "Invalid format for parameter limit.")
		return
	}
	if params.Limit != nil && *params.Limit < 1 {
		api.WriteError(w, http.StatusBadRequest, api.ErrorCodeInvalidRequest, "Parameter limit must be at least 1.")
		return
	}

	session, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	account, err := session.Refresh(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	txns := account.Transactions
	if params.Limit != nil && *params.Limit < len(txns) {
		txns = txns[:*params.Limit]
	}

	api.WriteJSON(w, http.StatusOK, api.TransactionList{
		Transactions: toAPITransactions(txns),
		Count:        len(txns),
	})
}
