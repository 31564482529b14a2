// Package domain defines the entities exchanged with the Nestegg API and
// cached by the repositories. Entities are plain serializable structs;
// monetary quantities use decimal arithmetic throughout.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio is an investment account with cash and holdings.
type Portfolio struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Currency    string          `json:"currency"`
	IsDefault   bool            `json:"isDefault"`
	CashBalance decimal.Decimal `json:"cashBalance"`
	TotalValue  decimal.Decimal `json:"totalValue"`
	GainPercent decimal.Decimal `json:"gainPercent"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Holding is a position inside a portfolio.
type Holding struct {
	ID           string          `json:"id"`
	PortfolioID  string          `json:"portfolioId"`
	Symbol       string          `json:"symbol"`
	Quantity     decimal.Decimal `json:"quantity"`
	CostBasis    decimal.Decimal `json:"costBasis"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	MarketValue  decimal.Decimal `json:"marketValue"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// LedgerEntryType enumerates ledger entry kinds.
type LedgerEntryType string

const (
	LedgerBuy      LedgerEntryType = "buy"
	LedgerSell     LedgerEntryType = "sell"
	LedgerDividend LedgerEntryType = "dividend"
	LedgerFee      LedgerEntryType = "fee"
)

// LedgerEntry is one recorded portfolio transaction.
type LedgerEntry struct {
	ID          string          `json:"id"`
	PortfolioID string          `json:"portfolioId"`
	Type        LedgerEntryType `json:"type"`
	Symbol      string          `json:"symbol,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	Amount      decimal.Decimal `json:"amount"`
	OccurredAt  time.Time       `json:"occurredAt"`
	Note        string          `json:"note,omitempty"`
}

// CreatePortfolioInput is the payload for creating a portfolio.
type CreatePortfolioInput struct {
	Name     string `json:"name" validate:"required,min=1,max=80"`
	Currency string `json:"currency" validate:"required,iso4217"`
}

// UpdatePortfolioInput renames a portfolio.
type UpdatePortfolioInput struct {
	Name string `json:"name" validate:"required,min=1,max=80"`
}

// CreateHoldingInput is the payload for adding a holding.
type CreateHoldingInput struct {
	Symbol    string          `json:"symbol" validate:"required,min=1,max=12"`
	Quantity  decimal.Decimal `json:"quantity" validate:"required"`
	CostBasis decimal.Decimal `json:"costBasis" validate:"required"`
}

// UpdateHoldingInput adjusts an existing holding.
type UpdateHoldingInput struct {
	Quantity  decimal.Decimal `json:"quantity" validate:"required"`
	CostBasis decimal.Decimal `json:"costBasis" validate:"required"`
}

// CreateLedgerEntryInput is the payload for recording a ledger entry.
type CreateLedgerEntryInput struct {
	Type       LedgerEntryType `json:"type" validate:"required,oneof=buy sell dividend fee"`
	Symbol     string          `json:"symbol" validate:"omitempty,min=1,max=12"`
	Quantity   decimal.Decimal `json:"quantity"`
	Amount     decimal.Decimal `json:"amount" validate:"required"`
	OccurredAt time.Time       `json:"occurredAt" validate:"required"`
	Note       string          `json:"note" validate:"max=280"`
}

// CashOpInput moves cash into, out of, or between portfolios.
type CashOpInput struct {
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	ToPortfolioID string          `json:"toPortfolioId,omitempty"` // transfers only
	Note          string          `json:"note" validate:"max=280"`
}
