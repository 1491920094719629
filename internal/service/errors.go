package service

import (
	"errors"
	"fmt"
)

// ServiceError represents a business logic error with a code
type ServiceError struct {
	Err     error
	Message string
	Code    string
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	ErrCodeDuplicateUsername      = "duplicate_username"
	ErrCodeNotFound               = "not_found"
	ErrCodeInvalidCredential      = "invalid_credential"
	ErrCodeInvalidAmount          = "invalid_amount"
	ErrCodeInsufficientFunds      = "insufficient_funds"
	ErrCodePersistenceFailure     = "persistence_failure"
	ErrCodeAdviceUnavailable      = "advice_unavailable"
	ErrCodeInvalidUsername        = "invalid_username"
	ErrCodeInvalidSecret          = "invalid_secret"
	ErrCodeInvalidTransactionType = "invalid_transaction_type"
	ErrCodeNotAuthenticated       = "not_authenticated"
	ErrCodeNotEnoughData          = "not_enough_data"
	ErrCodeInternalError          = "internal_error"
)

var userMessages = map[string]string{
	ErrCodeDuplicateUsername:      "Username already exists.",
	ErrCodeNotFound:               "User not found.",
	ErrCodeInvalidCredential:      "Invalid password.",
	ErrCodeInvalidAmount:          "Transaction amount must be positive.",
	ErrCodeInsufficientFunds:      "You do not have enough balance for this withdrawal.",
	ErrCodePersistenceFailure:     "Failed to save your changes. Please try again.",
	ErrCodeAdviceUnavailable:      "Could not fetch financial advice.",
	ErrCodeInvalidUsername:        "Username must be at least 3 characters.",
	ErrCodeInvalidSecret:          "Password must be at least 6 characters.",
	ErrCodeInvalidTransactionType: "Transaction type must be deposit or withdrawal.",
	ErrCodeNotAuthenticated:       "User not logged in.",
	ErrCodeNotEnoughData:          "Make some transactions to get financial advice.",
	ErrCodeInternalError:          "An unexpected error occurred.",
}

// UserMessage returns the human-readable message shown for an error code.
func UserMessage(code string) string {
	if msg, ok := userMessages[code]; ok {
		return msg
	}
	return userMessages[ErrCodeInternalError]
}

// CodeOf extracts the service error code from err, or ErrCodeInternalError
// when err is not a ServiceError.
func CodeOf(err error) string {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Code
	}
	return ErrCodeInternalError
}

func newError(code string, cause error) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: UserMessage(code),
		Err:     cause,
	}
}
