package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acoopRD/poc-finance/internal/cache"
	"github.com/acoopRD/poc-finance/internal/ledger"
	"github.com/acoopRD/poc-finance/internal/models"
	"github.com/acoopRD/poc-finance/internal/services"
	"github.com/acoopRD/poc-finance/internal/universe"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newReportCache(t *testing.T) *cache.RedisReportCache {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.NewRedisReportCache(client, time.Minute)
}

func cachedReport(symbol string, lastPrice float64) *models.AnalysisReport {
	return &models.AnalysisReport{
		ID:     "report-" + symbol,
		Symbol: symbol,
		Ticker: models.TickerSnapshot{
			Symbol:    symbol,
			Last:      decimal.NewFromFloat(lastPrice),
			Volume24h: decimal.NewFromInt(100),
		},
		Technical: models.TechnicalSnapshot{
			RSI: models.RSI{Value: 55, Valid: true},
		},
		GeneratedAt: time.Now().UTC(),
	}
}

func newAnalyzer() *services.MarketAnalysisService {
	return services.NewMarketAnalysisService(quietLogger(), services.NewSignalEngine(quietLogger()), nil, 10, 2)
}

func TestGetAnalysis(t *testing.T) {
	reports := newReportCache(t)
	require.NoError(t, reports.Store(context.Background(), cachedReport("BTC-USD", 30000)))

	handler := NewAnalysisHandler(reports, newAnalyzer())
	router := gin.New()
	router.GET("/api/v1/analysis/:symbol", handler.GetAnalysis)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/analysis/BTC-USD", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var report models.AnalysisReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "BTC-USD", report.Symbol)
}

func TestGetAnalysis_NotFound(t *testing.T) {
	handler := NewAnalysisHandler(newReportCache(t), newAnalyzer())
	router := gin.New()
	router.GET("/api/v1/analysis/:symbol", handler.GetAnalysis)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/analysis/NOPE", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListAnalyses(t *testing.T) {
	reports := newReportCache(t)
	require.NoError(t, reports.Store(context.Background(), cachedReport("BTC-USD", 30000)))
	require.NoError(t, reports.Store(context.Background(), cachedReport("ETH-USD", 2000)))

	handler := NewAnalysisHandler(reports, newAnalyzer())
	router := gin.New()
	router.GET("/api/v1/analysis", handler.ListAnalyses)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/analysis", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response AnalysisListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Total)
	assert.NotEmpty(t, response.Best)
}

func TestGetHoldings_PricedFromCachedReport(t *testing.T) {
	book := ledger.New(ledger.NewMemoryStore(), quietLogger())
	_, err := book.RecordBuy(context.Background(), "BTC-USD", decimal.NewFromInt(2), decimal.NewFromInt(10000))
	require.NoError(t, err)

	reports := newReportCache(t)
	require.NoError(t, reports.Store(context.Background(), cachedReport("BTC-USD", 12000)))

	handler := NewHoldingsHandler(book, reports)
	router := gin.New()
	router.GET("/api/v1/holdings", handler.GetHoldings)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/holdings", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response HoldingsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, 1, response.Total)

	holding := response.Holdings[0]
	assert.Equal(t, "BTC-USD", holding.Symbol)
	assert.True(t, holding.CurrentPrice.Equal(decimal.NewFromInt(12000)))
	// 2 * 12000 - 20000 = 4000
	assert.True(t, holding.UnrealizedPnL.Equal(decimal.NewFromInt(4000)), "pnl = %s", holding.UnrealizedPnL)
}

func TestGetOrders(t *testing.T) {
	book := ledger.New(ledger.NewMemoryStore(), quietLogger())
	_, err := book.RecordBuy(context.Background(), "BTC-USD", decimal.NewFromInt(1), decimal.NewFromInt(10000))
	require.NoError(t, err)
	_, err = book.RecordBuy(context.Background(), "ETH-USD", decimal.NewFromInt(1), decimal.NewFromInt(2000))
	require.NoError(t, err)

	handler := NewHoldingsHandler(book, newReportCache(t))
	router := gin.New()
	router.GET("/api/v1/orders", handler.GetOrders)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/orders?symbol=BTC-USD", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response OrdersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, 1, response.Total)
	assert.Equal(t, "BTC-USD", response.Orders[0].Symbol)
}

type stubUniverseProvider struct {
	tickers []models.TickerSnapshot
	err     error
}

func (s *stubUniverseProvider) GetTickers(_ context.Context) ([]models.TickerSnapshot, error) {
	return s.tickers, s.err
}

func TestGetUniverse(t *testing.T) {
	provider := &stubUniverseProvider{tickers: []models.TickerSnapshot{
		{Symbol: "BTC/USD", Volume24h: decimal.NewFromInt(900)},
		{Symbol: "USDT/USD", Volume24h: decimal.NewFromInt(500)},
	}}

	handler := NewUniverseHandler(universe.NewFilter(), provider)
	router := gin.New()
	router.GET("/api/v1/universe", handler.GetUniverse)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/universe", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response UniverseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, []string{"USDT/USD"}, response.Stable)
	assert.Equal(t, []string{"BTC/USD"}, response.Alts)
}

func TestGetUniverse_NoProvider(t *testing.T) {
	handler := NewUniverseHandler(universe.NewFilter(), nil)
	router := gin.New()
	router.GET("/api/v1/universe", handler.GetUniverse)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/universe", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetUniverse_ProviderError(t *testing.T) {
	handler := NewUniverseHandler(universe.NewFilter(), &stubUniverseProvider{err: errors.New("down")})
	router := gin.New()
	router.GET("/api/v1/universe", handler.GetUniverse)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/universe", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}
