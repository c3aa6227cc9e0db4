// Package interfaces defines the contracts between the analysis core and its
// external collaborators. The core consumes already-deserialized snapshots
// and emits trade instructions; transport, signing and order placement live
// behind these interfaces.
package interfaces

import (
	"context"
	"time"

	"github.com/acoopRD/poc-finance/internal/models"
)

// MarketDataProvider supplies the per-instrument snapshots one analysis cycle
// consumes. Implementations own all exchange connectivity; the core never
// performs network I/O itself.
type MarketDataProvider interface {
	// GetTicker returns the current quote for an instrument.
	GetTicker(ctx context.Context, symbol string) (models.TickerSnapshot, error)
	// GetOrderBook returns the current book snapshot for an instrument.
	GetOrderBook(ctx context.Context, symbol string) (models.OrderBookSnapshot, error)
	// GetPriceHistory returns mark prices observed since the given time,
	// in chronological order.
	GetPriceHistory(ctx context.Context, symbol string, since time.Time) (models.PriceSeries, error)
}

// UniverseProvider supplies the flat ticker set the universe filter
// classifies each cycle.
type UniverseProvider interface {
	GetTickers(ctx context.Context) ([]models.TickerSnapshot, error)
}

// OrderExecutor places a decided trade on the exchange. The core only
// decides; the executor owns submission, retries and fills.
type OrderExecutor interface {
	Execute(ctx context.Context, instruction models.TradeInstruction) error
}
