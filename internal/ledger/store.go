package ledger

import (
	"context"

	"github.com/acoopRD/poc-finance/internal/models"
)

// Store is the persistence backend for holdings and the order audit trail.
// Implementations must be safe for concurrent use; the ledger serializes
// read-modify-write sequences per symbol on top of it.
type Store interface {
	// GetHolding returns the holding for symbol, reporting whether one exists.
	GetHolding(ctx context.Context, symbol string) (models.Holding, bool, error)
	// UpsertHolding creates or replaces the holding for its symbol.
	UpsertHolding(ctx context.Context, holding models.Holding) error
	// DeleteHolding removes the holding for symbol. Removing an absent
	// holding is not an error.
	DeleteHolding(ctx context.Context, symbol string) error
	// ListHoldings returns all open holdings ordered by symbol.
	ListHoldings(ctx context.Context) ([]models.Holding, error)
	// AppendOrder appends an immutable order record.
	AppendOrder(ctx context.Context, order models.Order) error
	// ListOrders returns the audit trail in chronological order, optionally
	// restricted to one symbol (empty symbol means all).
	ListOrders(ctx context.Context, symbol string) ([]models.Order, error)
}
