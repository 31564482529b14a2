package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FundingBalance is the user's uninvested cash balance, cached as a
// singleton with a short freshness window.
type FundingBalance struct {
	Available decimal.Decimal `json:"available"`
	Pending   decimal.Decimal `json:"pending"`
	Currency  string          `json:"currency"`
	AsOf      time.Time       `json:"asOf"`
}

// TransferType distinguishes money moving in from money moving out.
type TransferType string

const (
	TransferDeposit    TransferType = "deposit"
	TransferWithdrawal TransferType = "withdrawal"
)

// TransferStatus is the server-side state of a transfer.
type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
	TransferFailed    TransferStatus = "failed"
)

// Transfer is one funding movement between the user's bank and Nestegg.
type Transfer struct {
	ID        string          `json:"id"`
	Type      TransferType    `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Status    TransferStatus  `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Cancellable reports whether the transfer may still be cancelled. Only
// pending transfers can be.
func (t Transfer) Cancellable() bool {
	return t.Status == TransferPending
}

// TransferInput is the payload for initiating a deposit or withdrawal.
type TransferInput struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}
