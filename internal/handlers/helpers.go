package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/benx421/bankmt/internal/api"
	"github.com/benx421/bankmt/internal/models"
	"github.com/benx421/bankmt/internal/service"
)

const maxBodyBytes = 64 << 10

func mapServiceErrorToCode(code string) api.ErrorCode {
	switch code {
	case service.ErrCodeDuplicateUsername:
		return api.ErrorCodeDuplicateUsername
	case service.ErrCodeNotFound:
		return api.ErrorCodeNotFound
	case service.ErrCodeInvalidCredential:
		return api.ErrorCodeInvalidCredential
	case service.ErrCodeInvalidAmount:
		return api.ErrorCodeInvalidAmount
	case service.ErrCodeInsufficientFunds:
		return api.ErrorCodeInsufficientFunds
	case service.ErrCodePersistenceFailure:
		return api.ErrorCodePersistenceFailure
	case service.ErrCodeAdviceUnavailable:
		return api.ErrorCodeAdviceUnavailable
	case service.ErrCodeInvalidUsername:
		return api.ErrorCodeInvalidUsername
	case service.ErrCodeInvalidSecret:
		return api.ErrorCodeInvalidSecret
	case service.ErrCodeInvalidTransactionType:
		return api.ErrorCodeInvalidTransactionType
	case service.ErrCodeNotAuthenticated:
		return api.ErrorCodeNotAuthenticated
	case service.ErrCodeNotEnoughData:
		return api.ErrorCodeNotEnoughData
	default:
		return api.ErrorCodeInternalError
	}
}

func statusForCode(code string) int {
	switch code {
	case service.ErrCodeInvalidAmount,
		service.ErrCodeInvalidUsername,
		service.ErrCodeInvalidSecret,
		service.ErrCodeInvalidTransactionType,
		service.ErrCodeNotEnoughData:
		return http.StatusBadRequest
	case service.ErrCodeInvalidCredential, service.ErrCodeNotAuthenticated:
		return http.StatusUnauthorized
	case service.ErrCodeInsufficientFunds:
		return http.StatusPaymentRequired
	case service.ErrCodeNotFound:
		return http.StatusNotFound
	case service.ErrCodeDuplicateUsername:
		return http.StatusConflict
	case service.ErrCodeAdviceUnavailable:
		return http.StatusBadGateway
	case service.ErrCodePersistenceFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError maps service errors to appropriate HTTP responses
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	svcErr := extractServiceError(err)
	if svcErr == nil {
		h.logger.Error("unexpected error", "error", err)
		api.WriteError(w, http.StatusInternalServerError, api.ErrorCodeInternalError, "internal error")
		return
	}

	api.WriteError(w, statusForCode(svcErr.Code), mapServiceErrorToCode(svcErr.Code), svcErr.Message)
}

func extractServiceError(err error) *service.ServiceError {
	var svcErr *service.ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func bearerToken(r *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

// requireSession resolves the caller's session or writes a 401
func (h *Handler) requireSession(w http.ResponseWriter, r *http.Request) (*service.SessionManager, bool) {
	token, ok := bearerToken(r)
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, api.ErrorCodeNotAuthenticated, service.UserMessage(service.ErrCodeNotAuthenticated))
		return nil, false
	}

	session, ok := h.sessions.Get(token)
	if !ok || !session.Authenticated() {
		api.WriteError(w, http.StatusUnauthorized, api.ErrorCodeNotAuthenticated, service.UserMessage(service.ErrCodeNotAuthenticated))
		return nil, false
	}

	return session, true
}

func toAPITransaction(t models.Transaction) api.Transaction {
	return api.Transaction{
		Id:          t.ID,
		Type:        api.TransactionType(t.Type),
		Amount:      models.FormatCents(t.AmountCents),
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
}

func toAPITransactions(txns []models.Transaction) []api.Transaction {
	out := make([]api.Transaction, 0, len(txns))
	for _, t := range txns {
		out = append(out, toAPITransaction(t))
	}
	return out
}

func toAPIAccount(a *models.Account) api.Account {
	return api.Account{
		Id:            a.ID,
		Username:      a.Username,
		AccountNumber: a.AccountNumber,
		Balance:       models.FormatCents(a.BalanceCents),
		Transactions:  toAPITransactions(a.Transactions),
	}
}
