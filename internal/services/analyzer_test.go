package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acoopRD/poc-finance/internal/models"
)

type recordingSink struct {
	mu      sync.Mutex
	reports []*models.AnalysisReport
	err     error
}

func (s *recordingSink) Store(_ context.Context, report *models.AnalysisReport) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report)
	return nil
}

func (s *recordingSink) stored() []*models.AnalysisReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.AnalysisReport(nil), s.reports...)
}

func historySnapshot(symbol string, prices ...float64) models.MarketSnapshot {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	points := make([]models.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = models.PricePoint{Timestamp: base.Add(time.Duration(i) * time.Minute), Price: p}
	}
	return models.MarketSnapshot{
		Ticker:  models.TickerSnapshot{Symbol: symbol},
		History: models.NewPriceSeries(symbol, points),
	}
}

func uptrendSnapshot(symbol string, n int) models.MarketSnapshot {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	return historySnapshot(symbol, prices...)
}

func TestAnalyzeInstrument(t *testing.T) {
	sink := &recordingSink{}
	svc := NewMarketAnalysisService(testLogger(), NewSignalEngine(testLogger()), sink, 10, 4)

	report, err := svc.AnalyzeInstrument(context.Background(), uptrendSnapshot("BTC/USD", 30))
	require.NoError(t, err)

	assert.Equal(t, "BTC/USD", report.Symbol)
	assert.NotEmpty(t, report.ID)
	assert.True(t, report.Technical.RSI.Valid)
	assert.Equal(t, 100.0, report.Technical.RSI.Value)
	assert.False(t, report.GeneratedAt.IsZero())

	require.Len(t, sink.reports, 1)
	assert.Same(t, report, sink.reports[0])
}

func TestAnalyzeInstrument_SymbolFallback(t *testing.T) {
	svc := NewMarketAnalysisService(testLogger(), NewSignalEngine(testLogger()), nil, 10, 4)

	snap := uptrendSnapshot("", 5)
	snap.History.Symbol = "ETH/USD"

	report, err := svc.AnalyzeInstrument(context.Background(), snap)
	require.NoError(t, err)
	assert.Equal(t, "ETH/USD", report.Symbol)
}

func TestAnalyzeInstrument_NoSymbol(t *testing.T) {
	svc := NewMarketAnalysisService(testLogger(), NewSignalEngine(testLogger()), nil, 10, 4)

	_, err := svc.AnalyzeInstrument(context.Background(), models.MarketSnapshot{})
	assert.Error(t, err)
}

func TestAnalyzeInstrument_SinkFailureTolerated(t *testing.T) {
	sink := &recordingSink{err: errors.New("redis down")}
	svc := NewMarketAnalysisService(testLogger(), NewSignalEngine(testLogger()), sink, 10, 4)

	report, err := svc.AnalyzeInstrument(context.Background(), uptrendSnapshot("BTC/USD", 5))
	require.NoError(t, err)
	assert.NotNil(t, report)
}

func TestAnalyzeInstrument_ThinHistory(t *testing.T) {
	svc := NewMarketAnalysisService(testLogger(), NewSignalEngine(testLogger()), nil, 10, 4)

	report, err := svc.AnalyzeInstrument(context.Background(), historySnapshot("BTC/USD", 100, 101))
	require.NoError(t, err)

	// Indicators degrade to sentinels instead of failing.
	assert.False(t, report.Technical.RSI.Valid)
	assert.Zero(t, report.Technical.MACD.MACD)
	assert.Equal(t, models.ActionHold, report.Recommendation.Action)
	assert.Equal(t, models.VerdictHold, report.Strategies.BollingerBand)
}

func TestAnalyzeBatch_FailureIsolation(t *testing.T) {
	svc := NewMarketAnalysisService(testLogger(), NewSignalEngine(testLogger()), nil, 10, 2)

	snapshots := map[string]models.MarketSnapshot{
		"BTC/USD": uptrendSnapshot("BTC/USD", 30),
		"ETH/USD": uptrendSnapshot("ETH/USD", 30),
		"bad":     {}, // no symbol anywhere
	}

	result := svc.AnalyzeBatch(context.Background(), snapshots)

	assert.Len(t, result.Reports, 2)
	assert.Contains(t, result.Reports, "BTC/USD")
	assert.Contains(t, result.Reports, "ETH/USD")
	require.Contains(t, result.Errors, "bad")
	assert.Contains(t, result.Errors["bad"], "no symbol")
}

func TestAnalyzeBatch_Empty(t *testing.T) {
	svc := NewMarketAnalysisService(testLogger(), NewSignalEngine(testLogger()), nil, 10, 2)

	result := svc.AnalyzeBatch(context.Background(), nil)

	assert.Empty(t, result.Reports)
	assert.Empty(t, result.Errors)
}

func TestSelectBest(t *testing.T) {
	svc := NewMarketAnalysisService(testLogger(), NewSignalEngine(testLogger()), nil, 10, 4)

	reports := map[string]*models.AnalysisReport{
		// Score: (100-0) + 0 + 10 = 110.
		"BTC/USD": {
			Symbol:    "BTC/USD",
			Ticker:    models.TickerSnapshot{Volume24h: decimal.NewFromInt(10)},
			Technical: models.TechnicalSnapshot{RSI: validRSI(50)},
		},
		// Score: (100-25) + 0 + 100 = 175.
		"ETH/USD": {
			Symbol:    "ETH/USD",
			Ticker:    models.TickerSnapshot{Volume24h: decimal.NewFromInt(100)},
			Technical: models.TechnicalSnapshot{RSI: validRSI(25)},
		},
		// Undefined RSI is skipped regardless of volume.
		"SOL/USD": {
			Symbol: "SOL/USD",
			Ticker: models.TickerSnapshot{Volume24h: decimal.NewFromInt(100000)},
		},
	}

	best, ok := svc.SelectBest(reports)
	require.True(t, ok)
	assert.Equal(t, "ETH/USD", best)
}

func TestSelectBest_NothingEligible(t *testing.T) {
	svc := NewMarketAnalysisService(testLogger(), NewSignalEngine(testLogger()), nil, 10, 4)

	best, ok := svc.SelectBest(map[string]*models.AnalysisReport{
		"BTC/USD": {Symbol: "BTC/USD"},
		"nil":     nil,
	})

	assert.False(t, ok)
	assert.Empty(t, best)
}
