package models

import "github.com/shopspring/decimal"

// AdviceTransaction is one entry sent to the advice service. Amount is signed:
// positive for deposits, negative for withdrawals.
type AdviceTransaction struct {
	Description string
	Amount      decimal.Decimal
}

// AdviceRequest is the input to the external advice service
type AdviceRequest struct {
	Transactions []AdviceTransaction
	Balance      decimal.Decimal
}
