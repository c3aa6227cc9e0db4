package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/acoopRD/poc-finance/internal/cache"
	"github.com/acoopRD/poc-finance/internal/ledger"
	"github.com/acoopRD/poc-finance/internal/models"
)

type HoldingsHandler struct {
	ledger  *ledger.Ledger
	reports *cache.RedisReportCache
}

func NewHoldingsHandler(l *ledger.Ledger, reports *cache.RedisReportCache) *HoldingsHandler {
	return &HoldingsHandler{
		ledger:  l,
		reports: reports,
	}
}

// HoldingsResponse represents the current portfolio with unrealized P&L
type HoldingsResponse struct {
	Holdings  []models.HoldingReport `json:"holdings"`
	Total     int                    `json:"total"`
	Timestamp time.Time              `json:"timestamp"`
}

// OrdersResponse represents the recorded order history
type OrdersResponse struct {
	Orders    []models.Order `json:"orders"`
	Total     int            `json:"total"`
	Timestamp time.Time      `json:"timestamp"`
}

// GetHoldings returns every open position, priced off the latest cached
// analysis report when one exists.
func (h *HoldingsHandler) GetHoldings(c *gin.Context) {
	holdings, err := h.ledger.Holdings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load holdings"})
		return
	}

	reports := make([]models.HoldingReport, 0, len(holdings))
	for _, holding := range holdings {
		entry := models.HoldingReport{Holding: holding}
		if report, ok := h.reports.Get(c.Request.Context(), holding.Symbol); ok {
			entry.CurrentPrice = report.Ticker.Last
			entry.UnrealizedPnL = holding.Amount.Mul(entry.CurrentPrice).Sub(holding.CostBasis)
		} else {
			entry.CurrentPrice = decimal.Zero
			entry.UnrealizedPnL = decimal.Zero
		}
		reports = append(reports, entry)
	}

	c.JSON(http.StatusOK, HoldingsResponse{
		Holdings:  reports,
		Total:     len(reports),
		Timestamp: time.Now(),
	})
}

// GetOrders returns the order history, optionally filtered by symbol.
func (h *HoldingsHandler) GetOrders(c *gin.Context) {
	symbol := c.Query("symbol")

	orders, err := h.ledger.Orders(c.Request.Context(), symbol)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load orders"})
		return
	}

	c.JSON(http.StatusOK, OrdersResponse{
		Orders:    orders,
		Total:     len(orders),
		Timestamp: time.Now(),
	})
}
