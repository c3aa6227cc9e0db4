package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/acoopRD/poc-finance/internal/config"
	"github.com/acoopRD/poc-finance/internal/ledger"
	"github.com/acoopRD/poc-finance/internal/models"
	"github.com/acoopRD/poc-finance/pkg/interfaces"
)

// Trader turns a cycle's analysis into simulated position changes: it buys
// the best-scoring instrument and runs the exit rule over every open holding.
// The executor is optional; without one the ledger is still the system of
// record for paper trading.
type Trader struct {
	ledger   *ledger.Ledger
	executor interfaces.OrderExecutor
	notifier *Notifier
	trading  config.TradingConfig
	logger   *logrus.Logger
}

// NewTrader creates a trader. executor and notifier may be nil.
func NewTrader(l *ledger.Ledger, executor interfaces.OrderExecutor, notifier *Notifier, trading config.TradingConfig, logger *logrus.Logger) *Trader {
	return &Trader{
		ledger:   l,
		executor: executor,
		notifier: notifier,
		trading:  trading,
		logger:   logger,
	}
}

// BuyBest sizes a buy of the given instrument from the configured USD order
// size and records it. A symbol configured with a minimum trade size rejects
// orders below it.
func (t *Trader) BuyBest(ctx context.Context, report *models.AnalysisReport) (models.Order, error) {
	if report == nil {
		return models.Order{}, fmt.Errorf("no analysis report to buy from")
	}

	price := report.Ticker.MarkPrice
	if price.Sign() <= 0 {
		return models.Order{}, fmt.Errorf("no usable price for %s", report.Symbol)
	}

	amount := decimal.NewFromFloat(t.trading.OrderSizeUSD).Div(price)
	if sc, ok := t.trading.Symbol(report.Symbol); ok && sc.MinSize > 0 {
		if amount.LessThan(decimal.NewFromFloat(sc.MinSize)) {
			return models.Order{}, fmt.Errorf("order size %s for %s is below minimum %v", amount, report.Symbol, sc.MinSize)
		}
	}

	order, err := t.ledger.RecordBuy(ctx, report.Symbol, amount, price)
	if err != nil {
		return models.Order{}, err
	}

	t.dispatch(ctx, models.TradeInstruction{
		Symbol:    order.Symbol,
		Side:      order.Side,
		Amount:    order.Amount,
		Price:     order.Price,
		Timestamp: order.Timestamp,
	})
	if t.notifier != nil {
		t.notifier.NotifyTrade(ctx, order, decimal.Zero)
	}

	return order, nil
}

// RunExitChecks applies the exit rule to every open holding that has a fresh
// report this cycle. Holdings without a report are left untouched. Returned
// instructions are the sells that fired.
func (t *Trader) RunExitChecks(ctx context.Context, reports map[string]*models.AnalysisReport) ([]models.TradeInstruction, error) {
	holdings, err := t.ledger.Holdings(ctx)
	if err != nil {
		return nil, err
	}

	var instructions []models.TradeInstruction
	for _, holding := range holdings {
		report, ok := reports[holding.Symbol]
		if !ok {
			continue
		}

		decision, err := t.ledger.DecideExit(ctx, holding.Symbol, report.Recommendation, report.Technical.RSI, report.Ticker.MarkPrice)
		if err != nil {
			var noPos *ledger.NoPositionError
			if errors.As(err, &noPos) {
				// Position closed by a concurrent cycle between listing and
				// deciding; nothing to do.
				continue
			}
			t.logger.WithFields(logrus.Fields{"symbol": holding.Symbol}).Warnf("Exit decision failed: %v", err)
			continue
		}

		if decision.Instruction == nil {
			continue
		}

		instructions = append(instructions, *decision.Instruction)
		t.dispatch(ctx, *decision.Instruction)
		if t.notifier != nil {
			t.notifier.NotifyTrade(ctx, models.Order{
				Symbol:    decision.Instruction.Symbol,
				Side:      decision.Instruction.Side,
				Amount:    decision.Instruction.Amount,
				Price:     decision.Instruction.Price,
				Timestamp: decision.Instruction.Timestamp,
			}, decision.UnrealizedPnL)
		}
	}

	return instructions, nil
}

func (t *Trader) dispatch(ctx context.Context, instruction models.TradeInstruction) {
	if t.executor == nil {
		return
	}
	if err := t.executor.Execute(ctx, instruction); err != nil {
		t.logger.WithFields(logrus.Fields{"symbol": instruction.Symbol}).Warnf("Order execution failed: %v", err)
	}
}
