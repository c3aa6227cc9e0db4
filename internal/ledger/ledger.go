// Package ledger tracks open simulated positions and the order audit trail.
// It is the only mutable shared state in the analysis core: all mutations to
// a symbol's holding are serialized behind a per-symbol lock, since cost-basis
// accumulation and reduction do not commute under lost-update races.
package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/acoopRD/poc-finance/internal/models"
)

// ExitRSIThreshold is the overbought level above which a profitable position
// is closed.
const ExitRSIThreshold = 70.0

// Ledger owns the holdings store. Buys accumulate volume-weighted, sells
// reduce cost basis proportionally, and the exit rule closes profitable
// overbought positions in full.
type Ledger struct {
	store  Store
	logger *logrus.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a ledger over a storage backend.
func New(store Store, logger *logrus.Logger) *Ledger {
	return &Ledger{
		store:  store,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// symbolLock returns the mutex serializing mutations for one symbol.
// Cross-symbol operations stay independent.
func (l *Ledger) symbolLock(symbol string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[symbol]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[symbol] = lock
	}
	return lock
}

// RecordBuy opens or accumulates a holding: amounts add, cost basis grows by
// amount times price. An order record is appended for the fill.
func (l *Ledger) RecordBuy(ctx context.Context, symbol string, amount, price decimal.Decimal) (models.Order, error) {
	if amount.Sign() <= 0 || price.Sign() <= 0 {
		return models.Order{}, newValidationErrorf("buy for %s requires positive amount and price, got amount=%s price=%s", symbol, amount, price)
	}

	lock := l.symbolLock(symbol)
	lock.Lock()
	defer lock.Unlock()

	holding, exists, err := l.store.GetHolding(ctx, symbol)
	if err != nil {
		return models.Order{}, err
	}

	now := time.Now().UTC()
	cost := amount.Mul(price)
	if exists {
		holding.Amount = holding.Amount.Add(amount)
		holding.CostBasis = holding.CostBasis.Add(cost)
	} else {
		holding = models.Holding{Symbol: symbol, Amount: amount, CostBasis: cost}
	}
	holding.UpdatedAt = now

	if err := l.store.UpsertHolding(ctx, holding); err != nil {
		return models.Order{}, err
	}

	order := models.Order{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Side:      models.OrderSideBuy,
		Amount:    amount,
		Price:     price,
		Timestamp: now,
	}
	if err := l.store.AppendOrder(ctx, order); err != nil {
		return models.Order{}, err
	}

	l.logger.WithFields(logrus.Fields{
		"symbol":     symbol,
		"amount":     amount,
		"price":      price,
		"cost_basis": holding.CostBasis,
	}).Info("Recorded simulated buy")

	return order, nil
}

// RecordSell reduces a holding, shrinking cost basis proportionally to the
// amount sold. Selling more than held, or against no holding, fails with
// InsufficientPositionError and leaves the holding unchanged. A holding sold
// down to zero is removed.
func (l *Ledger) RecordSell(ctx context.Context, symbol string, amount, price decimal.Decimal) (models.Order, error) {
	if amount.Sign() <= 0 || price.Sign() <= 0 {
		return models.Order{}, newValidationErrorf("sell for %s requires positive amount and price, got amount=%s price=%s", symbol, amount, price)
	}

	lock := l.symbolLock(symbol)
	lock.Lock()
	defer lock.Unlock()

	return l.recordSellLocked(ctx, symbol, amount, price)
}

// recordSellLocked applies a sell with the symbol lock already held.
func (l *Ledger) recordSellLocked(ctx context.Context, symbol string, amount, price decimal.Decimal) (models.Order, error) {
	holding, exists, err := l.store.GetHolding(ctx, symbol)
	if err != nil {
		return models.Order{}, err
	}
	if !exists || amount.GreaterThan(holding.Amount) {
		return models.Order{}, &InsufficientPositionError{
			Symbol:    symbol,
			Requested: amount,
			Held:      holding.Amount,
		}
	}

	now := time.Now().UTC()
	remaining := holding.Amount.Sub(amount)
	if remaining.IsZero() {
		if err := l.store.DeleteHolding(ctx, symbol); err != nil {
			return models.Order{}, err
		}
	} else {
		holding.CostBasis = holding.CostBasis.Mul(remaining).Div(holding.Amount)
		holding.Amount = remaining
		holding.UpdatedAt = now
		if err := l.store.UpsertHolding(ctx, holding); err != nil {
			return models.Order{}, err
		}
	}

	order := models.Order{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Side:      models.OrderSideSell,
		Amount:    amount,
		Price:     price,
		Timestamp: now,
	}
	if err := l.store.AppendOrder(ctx, order); err != nil {
		return models.Order{}, err
	}

	l.logger.WithFields(logrus.Fields{
		"symbol":    symbol,
		"amount":    amount,
		"price":     price,
		"remaining": remaining,
	}).Info("Recorded simulated sell")

	return order, nil
}

// UnrealizedPnL is amount times current price minus cost basis. It fails with
// NoPositionError when no holding exists.
func (l *Ledger) UnrealizedPnL(ctx context.Context, symbol string, currentPrice decimal.Decimal) (decimal.Decimal, error) {
	holding, exists, err := l.store.GetHolding(ctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	if !exists {
		return decimal.Zero, &NoPositionError{Symbol: symbol}
	}
	return holding.Amount.Mul(currentPrice).Sub(holding.CostBasis), nil
}

// ExitDecision reports the outcome of one DecideExit application.
type ExitDecision struct {
	// Instruction is non-nil when the position was closed; it carries the
	// full held amount for the execution collaborator.
	Instruction *models.TradeInstruction
	// UnrealizedPnL is the position's P&L at the decision price.
	UnrealizedPnL decimal.Decimal
}

// DecideExit applies the per-cycle exit rule: a position exits when its
// unrealized P&L is positive and the instrument's RSI reads above the
// overbought threshold. On exit the full amount is sold and the holding
// removed; otherwise the holding is untouched and the current P&L reported.
// The recommendation is recorded for the audit log but does not override the
// rule.
func (l *Ledger) DecideExit(ctx context.Context, symbol string, rec models.Recommendation, rsi models.RSI, currentPrice decimal.Decimal) (ExitDecision, error) {
	lock := l.symbolLock(symbol)
	lock.Lock()
	defer lock.Unlock()

	holding, exists, err := l.store.GetHolding(ctx, symbol)
	if err != nil {
		return ExitDecision{}, err
	}
	if !exists {
		return ExitDecision{}, &NoPositionError{Symbol: symbol}
	}

	pnl := holding.Amount.Mul(currentPrice).Sub(holding.CostBasis)
	overbought := rsi.Valid && rsi.Value > ExitRSIThreshold
	if !pnl.IsPositive() || !overbought {
		l.logger.WithFields(logrus.Fields{
			"symbol":         symbol,
			"unrealized_pnl": pnl,
			"rsi_valid":      rsi.Valid,
			"rsi":            rsi.Value,
			"action":         rec.Action,
		}).Debug("Holding position")
		return ExitDecision{UnrealizedPnL: pnl}, nil
	}

	order, err := l.recordSellLocked(ctx, symbol, holding.Amount, currentPrice)
	if err != nil {
		return ExitDecision{}, err
	}

	l.logger.WithFields(logrus.Fields{
		"symbol":         symbol,
		"amount":         order.Amount,
		"unrealized_pnl": pnl,
		"rsi":            rsi.Value,
		"confidence":     rec.Confidence,
	}).Info("Exit triggered, position closed")

	return ExitDecision{
		Instruction: &models.TradeInstruction{
			Symbol:    symbol,
			Side:      models.OrderSideSell,
			Amount:    order.Amount,
			Price:     currentPrice,
			Timestamp: order.Timestamp,
		},
		UnrealizedPnL: pnl,
	}, nil
}

// Holdings returns all open positions.
func (l *Ledger) Holdings(ctx context.Context) ([]models.Holding, error) {
	return l.store.ListHoldings(ctx)
}

// Orders returns the audit trail, optionally filtered by symbol.
func (l *Ledger) Orders(ctx context.Context, symbol string) ([]models.Order, error) {
	return l.store.ListOrders(ctx, symbol)
}
