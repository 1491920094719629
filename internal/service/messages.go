package service

import (
	"fmt"

	"github.com/benx421/bankmt/internal/models"
)

// LogoutMessage confirms a logout
const LogoutMessage = "You have been successfully logged out."

// RegisteredMessage greets a newly registered user
func RegisteredMessage(username string) string {
	return fmt.Sprintf("Welcome, %s! Your account is ready.", username)
}

// LoginMessage greets a returning user
func LoginMessage(username string) string {
	return fmt.Sprintf("Welcome back, %s!", username)
}

// TransactionMessage confirms an applied transaction, e.g. "Deposited $250.00."
func TransactionMessage(typ models.TransactionType, amountCents int64) string {
	verb := "Deposited"
	if typ == models.TransactionTypeWithdrawal {
		verb = "Withdrew"
	}
	return fmt.Sprintf("%s $%s.", verb, models.FormatCents(amountCents))
}

// OnlineDescription is the description used by interactive clients when the
// user gives none.
func OnlineDescription(typ models.TransactionType) string {
	return "Online " + typ.DefaultDescription()
}
