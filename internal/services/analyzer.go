package services

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/acoopRD/poc-finance/internal/indicators"
	"github.com/acoopRD/poc-finance/internal/models"
	"github.com/acoopRD/poc-finance/internal/orderbook"
)

// ReportSink receives finished analysis reports (e.g. the Redis report cache).
type ReportSink interface {
	Store(ctx context.Context, report *models.AnalysisReport) error
}

// MarketAnalysisService runs the per-instrument analysis pipeline: indicator
// computation and order-book analysis feed the signal engine, and the combined
// report is handed to the sink. Per-instrument work is pure, so batches fan
// out across workers without cross-instrument coordination.
type MarketAnalysisService struct {
	logger      *logrus.Logger
	engine      *SignalEngine
	sink        ReportSink
	depthLevels int
	concurrency int
}

// NewMarketAnalysisService creates the pipeline service. sink may be nil when
// reports are consumed directly. depthLevels and concurrency fall back to
// sensible defaults when non-positive.
func NewMarketAnalysisService(logger *logrus.Logger, engine *SignalEngine, sink ReportSink, depthLevels, concurrency int) *MarketAnalysisService {
	if depthLevels <= 0 {
		depthLevels = orderbook.DefaultDepthLevels
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &MarketAnalysisService{
		logger:      logger,
		engine:      engine,
		sink:        sink,
		depthLevels: depthLevels,
		concurrency: concurrency,
	}
}

// AnalyzeInstrument derives the full analysis report for one instrument from
// its snapshot bundle. Indicator and order-book analysis degrade to sentinel
// values on thin or malformed data; the only hard failure is a snapshot
// without a symbol.
func (s *MarketAnalysisService) AnalyzeInstrument(ctx context.Context, snap models.MarketSnapshot) (*models.AnalysisReport, error) {
	symbol := snap.Ticker.Symbol
	if symbol == "" {
		symbol = snap.History.Symbol
	}
	if symbol == "" {
		return nil, fmt.Errorf("market snapshot carries no symbol")
	}

	tech := indicators.Snapshot(snap.History)
	liquidity := orderbook.Analyze(snap.OrderBook, s.depthLevels)
	rec := s.engine.Recommend(tech)
	conditions := ClassifyConditions(liquidity, tech.Volatility)

	currentPrice := snap.Ticker.MarkPrice.InexactFloat64()
	if n := len(snap.History.Points); n > 0 {
		currentPrice = snap.History.Points[n-1].Price
	}

	report := &models.AnalysisReport{
		ID:             uuid.NewString(),
		Symbol:         symbol,
		Ticker:         snap.Ticker,
		Technical:      tech,
		Liquidity:      liquidity,
		Recommendation: rec,
		Conditions:     conditions,
		Strategies:     EvaluateStrategies(tech, currentPrice),
		GeneratedAt:    time.Now().UTC(),
	}

	if s.sink != nil {
		if err := s.sink.Store(ctx, report); err != nil {
			s.logger.WithFields(logrus.Fields{"symbol": symbol}).Warnf("Failed to store analysis report: %v", err)
		}
	}

	return report, nil
}

// BatchResult separates analyzed instruments from explicit per-symbol error
// entries, so downstream consumers can tell "no data" from "not evaluated".
type BatchResult struct {
	Reports map[string]*models.AnalysisReport `json:"reports"`
	Errors  map[string]string                 `json:"errors"`
}

// AnalyzeBatch analyzes every snapshot concurrently with bounded fan-out.
// One instrument's failure is logged and recorded as an error entry; it never
// aborts the rest of the batch.
func (s *MarketAnalysisService) AnalyzeBatch(ctx context.Context, snapshots map[string]models.MarketSnapshot) BatchResult {
	result := BatchResult{
		Reports: make(map[string]*models.AnalysisReport, len(snapshots)),
		Errors:  make(map[string]string),
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for symbol, snap := range snapshots {
		g.Go(func() error {
			report, err := s.analyzeIsolated(ctx, snap)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.WithFields(logrus.Fields{"symbol": symbol}).Warnf("Instrument analysis failed: %v", err)
				result.Errors[symbol] = err.Error()
				return nil
			}
			result.Reports[symbol] = report
			return nil
		})
	}

	// Workers report failures through the result, never through the group.
	_ = g.Wait()

	return result
}

// analyzeIsolated shields the batch from a panicking instrument.
func (s *MarketAnalysisService) analyzeIsolated(ctx context.Context, snap models.MarketSnapshot) (report *models.AnalysisReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			report = nil
			err = fmt.Errorf("analysis panicked: %v", r)
		}
	}()
	return s.AnalyzeInstrument(ctx, snap)
}

// SelectBest scores every analyzed instrument and returns the symbol with the
// maximum score: (100 − |RSI−50|) + MACD histogram + 24h volume. Instruments
// missing required fields (undefined RSI) are skipped with a warning; when
// everything is skipped no best instrument is selected.
func (s *MarketAnalysisService) SelectBest(reports map[string]*models.AnalysisReport) (string, bool) {
	best := ""
	bestScore := math.Inf(-1)

	for symbol, report := range reports {
		if report == nil || !report.Technical.RSI.Valid {
			s.logger.WithFields(logrus.Fields{"symbol": symbol}).Warn("Skipping instrument with incomplete analysis")
			continue
		}

		score := (100 - math.Abs(report.Technical.RSI.Value-50)) +
			report.Technical.MACD.Histogram +
			report.Ticker.Volume24h.InexactFloat64()
		if score > bestScore {
			bestScore = score
			best = symbol
		}
	}

	if best == "" {
		return "", false
	}
	return best, true
}
