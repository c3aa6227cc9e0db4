package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/acoopRD/poc-finance/internal/cache"
	"github.com/acoopRD/poc-finance/internal/models"
	"github.com/acoopRD/poc-finance/internal/services"
)

type AnalysisHandler struct {
	reports  *cache.RedisReportCache
	analyzer *services.MarketAnalysisService
}

func NewAnalysisHandler(reports *cache.RedisReportCache, analyzer *services.MarketAnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		reports:  reports,
		analyzer: analyzer,
	}
}

// AnalysisListResponse represents the response for all cached reports
type AnalysisListResponse struct {
	Reports   []*models.AnalysisReport `json:"reports"`
	Best      string                   `json:"best,omitempty"`
	Total     int                      `json:"total"`
	Timestamp time.Time                `json:"timestamp"`
}

// GetAnalysis returns the latest cached report for a single instrument.
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	symbol := c.Param("symbol")
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}

	report, ok := h.reports.Get(c.Request.Context(), symbol)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no analysis available for symbol"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// ListAnalyses returns every cached report plus the current best pick.
func (h *AnalysisHandler) ListAnalyses(c *gin.Context) {
	reports, err := h.reports.All(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analysis reports"})
		return
	}

	response := AnalysisListResponse{
		Reports:   reports,
		Total:     len(reports),
		Timestamp: time.Now(),
	}

	bySymbol := make(map[string]*models.AnalysisReport, len(reports))
	for _, r := range reports {
		bySymbol[r.Symbol] = r
	}
	if best, ok := h.analyzer.SelectBest(bySymbol); ok {
		response.Best = best
	}

	c.JSON(http.StatusOK, response)
}
