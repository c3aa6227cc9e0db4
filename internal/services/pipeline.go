package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/acoopRD/poc-finance/internal/config"
	"github.com/acoopRD/poc-finance/internal/models"
	"github.com/acoopRD/poc-finance/internal/universe"
	"github.com/acoopRD/poc-finance/pkg/interfaces"
)

// Pipeline drives the periodic analyze-decide-act cycle: pull the universe,
// snapshot each instrument, analyze the batch, then hand the results to the
// trader for the buy pick and exit checks.
type Pipeline struct {
	provider interfaces.MarketDataProvider
	universe interfaces.UniverseProvider
	filter   *universe.Filter
	analyzer *MarketAnalysisService
	trader   *Trader
	notifier *Notifier
	logger   *logrus.Logger

	interval      time.Duration
	historyWindow time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewPipeline(
	provider interfaces.MarketDataProvider,
	universeProvider interfaces.UniverseProvider,
	filter *universe.Filter,
	analyzer *MarketAnalysisService,
	trader *Trader,
	notifier *Notifier,
	md config.MarketDataConfig,
	logger *logrus.Logger,
) *Pipeline {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pipeline{
		provider:      provider,
		universe:      universeProvider,
		filter:        filter,
		analyzer:      analyzer,
		trader:        trader,
		notifier:      notifier,
		logger:        logger,
		interval:      md.CycleIntervalDuration(),
		historyWindow: md.HistoryWindowDuration(),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start launches the cycle loop. It runs one cycle immediately, then on
// every interval tick until Stop is called.
func (p *Pipeline) Start() error {
	if p.provider == nil || p.universe == nil {
		return fmt.Errorf("pipeline requires market data and universe providers")
	}

	p.wg.Add(1)
	go p.run()

	p.logger.WithField("interval", p.interval).Info("Analysis pipeline started")
	return nil
}

// Stop cancels the loop and waits for the in-flight cycle to finish.
func (p *Pipeline) Stop() {
	p.cancel()
	p.wg.Wait()
	p.logger.Info("Analysis pipeline stopped")
}

func (p *Pipeline) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	if err := p.RunCycle(p.ctx); err != nil {
		p.logger.WithError(err).Error("Analysis cycle failed")
	}

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			if err := p.RunCycle(p.ctx); err != nil {
				p.logger.WithError(err).Error("Analysis cycle failed")
			}
		}
	}
}

// RunCycle executes a single end-to-end cycle.
func (p *Pipeline) RunCycle(ctx context.Context) error {
	started := time.Now()

	tickers, err := p.universe.GetTickers(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch universe tickers: %w", err)
	}

	buckets := p.filter.TopCoins(tickers)
	symbols := append(append([]string{}, buckets.Stable...), buckets.Alts...)
	if len(symbols) == 0 {
		p.logger.Warn("Universe is empty, skipping cycle")
		return nil
	}

	snapshots := p.collectSnapshots(ctx, symbols)
	result := p.analyzer.AnalyzeBatch(ctx, snapshots)

	for symbol, reason := range result.Errors {
		p.logger.WithFields(logrus.Fields{
			"symbol": symbol,
			"reason": reason,
		}).Warn("Instrument analysis failed")
	}

	for _, report := range result.Reports {
		p.notifier.NotifyRecommendation(ctx, report)
	}

	if best, ok := p.analyzer.SelectBest(result.Reports); ok {
		if _, err := p.trader.BuyBest(ctx, result.Reports[best]); err != nil {
			p.logger.WithError(err).WithField("symbol", best).Warn("Buy skipped")
		}
	}

	exits, err := p.trader.RunExitChecks(ctx, result.Reports)
	if err != nil {
		p.logger.WithError(err).Error("Exit checks failed")
	}

	p.logger.WithFields(logrus.Fields{
		"symbols":  len(symbols),
		"reports":  len(result.Reports),
		"failures": len(result.Errors),
		"exits":    len(exits),
		"elapsed":  time.Since(started),
	}).Info("Analysis cycle complete")

	return nil
}

// collectSnapshots fetches ticker, order book and price history per symbol.
// Partial data is tolerated: a symbol with a ticker but no history still
// produces a snapshot, and symbols with no data at all are dropped.
func (p *Pipeline) collectSnapshots(ctx context.Context, symbols []string) map[string]models.MarketSnapshot {
	since := time.Now().Add(-p.historyWindow)
	snapshots := make(map[string]models.MarketSnapshot, len(symbols))

	for _, symbol := range symbols {
		ticker, err := p.provider.GetTicker(ctx, symbol)
		if err != nil {
			p.logger.WithError(err).WithField("symbol", symbol).Warn("Failed to fetch ticker")
			continue
		}

		book, err := p.provider.GetOrderBook(ctx, symbol)
		if err != nil {
			p.logger.WithError(err).WithField("symbol", symbol).Warn("Failed to fetch order book")
		}

		history, err := p.provider.GetPriceHistory(ctx, symbol, since)
		if err != nil {
			p.logger.WithError(err).WithField("symbol", symbol).Warn("Failed to fetch price history")
		}

		snapshots[symbol] = models.MarketSnapshot{
			Ticker:    ticker,
			OrderBook: book,
			History:   history,
		}
	}

	return snapshots
}
