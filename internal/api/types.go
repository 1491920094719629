package api

import (
	"encoding/json"
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ErrorCode identifies the error kind in an ErrorResponse
type ErrorCode string

// Defines values for ErrorCode.
const (
	ErrorCodeInvalidRequest         ErrorCode = "invalid_request"
	ErrorCodeDuplicateUsername      ErrorCode = "duplicate_username"
	ErrorCodeNotFound               ErrorCode = "not_found"
	ErrorCodeInvalidCredential      ErrorCode = "invalid_credential"
	ErrorCodeInvalidAmount          ErrorCode = "invalid_amount"
	ErrorCodeInsufficientFunds      ErrorCode = "insufficient_funds"
	ErrorCodePersistenceFailure     ErrorCode = "persistence_failure"
	ErrorCodeAdviceUnavailable      ErrorCode = "advice_unavailable"
	ErrorCodeInvalidUsername        ErrorCode = "invalid_username"
	ErrorCodeInvalidSecret          ErrorCode = "invalid_secret"
	ErrorCodeInvalidTransactionType ErrorCode = "invalid_transaction_type"
	ErrorCodeNotAuthenticated       ErrorCode = "not_authenticated"
	ErrorCodeNotEnoughData          ErrorCode = "not_enough_data"
	ErrorCodeInternalError          ErrorCode = "internal_error"
)

// HealthResponseStatus defines model for HealthResponse.Status.
type HealthResponseStatus string

// Defines values for HealthResponseStatus.
const (
	Healthy   HealthResponseStatus = "healthy"
	Unhealthy HealthResponseStatus = "unhealthy"
)

// TransactionType defines model for Transaction.Type.
type TransactionType string

// Defines values for TransactionType.
const (
	Deposit    TransactionType = "deposit"
	Withdrawal TransactionType = "withdrawal"
)

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Error   ErrorCode `json:"error"`
	Message string    `json:"message"`
}

// HealthResponse defines model for HealthResponse.
type HealthResponse struct {
	Status HealthResponseStatus `json:"status"`
}

// CredentialsRequest defines model for CredentialsRequest.
type CredentialsRequest struct {
	Password string `json:"password"`
	Username string `json:"username"`
}

// Transaction defines model for Transaction.
type Transaction struct {
	CreatedAt   time.Time          `json:"created_at"`
	Amount      string             `json:"amount"`
	Description string             `json:"description"`
	Type        TransactionType    `json:"type"`
	Id          openapi_types.UUID `json:"id"`
}

// Account defines model for Account.
type Account struct {
	AccountNumber string             `json:"account_number"`
	Balance       string             `json:"balance"`
	Username      string             `json:"username"`
	Transactions  []Transaction      `json:"transactions"`
	Id            openapi_types.UUID `json:"id"`
}

// SessionResponse defines model for SessionResponse.
type SessionResponse struct {
	Message string  `json:"message"`
	Token   string  `json:"token"`
	Account Account `json:"account"`
}

// MessageResponse defines model for MessageResponse.
type MessageResponse struct {
	Message string `json:"message"`
}

// TransactionRequest defines model for TransactionRequest.
type TransactionRequest struct {
	Description *string `json:"description,omitempty"`
	Amount      string  `json:"amount"`
}

// TransactionResponse defines model for TransactionResponse.
type TransactionResponse struct {
	Balance     string      `json:"balance"`
	Message     string      `json:"message"`
	Transaction Transaction `json:"transaction"`
}

// TransactionList defines model for TransactionList.
type TransactionList struct {
	Transactions []Transaction `json:"transactions"`
	Count        int           `json:"count"`
}

// AdviceResponse defines model for AdviceResponse.
type AdviceResponse struct {
	Advice string `json:"advice"`
}

// ListTransactionsParams defines parameters for ListTransactions.
type ListTransactionsParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck // Nothing useful to do if write fails
}

// WriteError writes an ErrorResponse with the given status
func WriteError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	WriteJSON(w, status, ErrorResponse{Error: code, Message: message})
}
