package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/acoopRD/poc-finance/internal/universe"
	"github.com/acoopRD/poc-finance/pkg/interfaces"
)

type UniverseHandler struct {
	filter   *universe.Filter
	provider interfaces.UniverseProvider
}

func NewUniverseHandler(filter *universe.Filter, provider interfaces.UniverseProvider) *UniverseHandler {
	return &UniverseHandler{
		filter:   filter,
		provider: provider,
	}
}

// UniverseResponse represents the tradeable instrument universe split into
// stable and alt buckets.
type UniverseResponse struct {
	Stable    []string  `json:"stable"`
	Alts      []string  `json:"alts"`
	Timestamp time.Time `json:"timestamp"`
}

// GetUniverse fetches the full ticker set and returns the top instruments
// per bucket ranked by 24h volume.
func (h *UniverseHandler) GetUniverse(c *gin.Context) {
	if h.provider == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "market data provider unavailable"})
		return
	}

	tickers, err := h.provider.GetTickers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch tickers"})
		return
	}

	result := h.filter.TopCoins(tickers)
	c.JSON(http.StatusOK, UniverseResponse{
		Stable:    result.Stable,
		Alts:      result.Alts,
		Timestamp: time.Now(),
	})
}
