package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/benx421/bankmt/internal/models"
	"github.com/shopspring/decimal"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 64
	minSecretLength   = 6
	// bcrypt ignores input past 72 bytes
	maxSecretBytes = 72
)

// ValidateUsername checks the registration rules for a username.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return &ServiceError{Code: ErrCodeInvalidUsername, Message: "Username is required."}
	}

	n := utf8.RuneCountInString(username)
	if n < minUsernameLength {
		return newError(ErrCodeInvalidUsername, nil)
	}
	if n > maxUsernameLength {
		return &ServiceError{
			Code:    ErrCodeInvalidUsername,
			Message: fmt.Sprintf("Username must be at most %d characters.", maxUsernameLength),
		}
	}

	return nil
}

// ValidateSecret checks the registration rules for a password.
func ValidateSecret(secret string) error {
	if utf8.RuneCountInString(secret) < minSecretLength {
		return newError(ErrCodeInvalidSecret, nil)
	}
	if len(secret) > maxSecretBytes {
		return &ServiceError{
			Code:    ErrCodeInvalidSecret,
			Message: fmt.Sprintf("Password must be at most %d bytes.", maxSecretBytes),
		}
	}

	return nil
}

// ValidateAmount checks that amount is positive with at most two decimals and
// returns it in minor units.
func ValidateAmount(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, newError(ErrCodeInvalidAmount, nil)
	}

	cents, err := models.ToCents(amount)
	if err != nil {
		return 0, &ServiceError{
			Code:    ErrCodeInvalidAmount,
			Message: "Amount must be a positive value with at most two decimal places.",
			Err:     err,
		}
	}

	return cents, nil
}
