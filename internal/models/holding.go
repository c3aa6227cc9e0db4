package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide is the direction of a simulated fill.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// Holding is one open simulated position: cumulative amount and cumulative
// cost basis. Amount and CostBasis are never negative. Holdings are owned
// exclusively by the ledger; nothing else mutates them.
type Holding struct {
	Symbol    string          `json:"symbol"`
	Amount    decimal.Decimal `json:"amount"`
	CostBasis decimal.Decimal `json:"cost_basis"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Order is an immutable record of a simulated fill. Orders form an
// append-only audit trail and are never mutated after creation.
type Order struct {
	ID        string          `json:"id"`
	Symbol    string          `json:"symbol"`
	Side      OrderSide       `json:"side"`
	Amount    decimal.Decimal `json:"amount"`
	Price     decimal.Decimal `json:"price"`
	Timestamp time.Time       `json:"timestamp"`
}

// HoldingReport is a holding annotated with its unrealized P&L at a
// reference price, for API consumers.
type HoldingReport struct {
	Holding
	CurrentPrice  decimal.Decimal `json:"current_price"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
}
