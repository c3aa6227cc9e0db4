package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/acoopRD/poc-finance/internal/api/handlers"
	"github.com/acoopRD/poc-finance/internal/cache"
	"github.com/acoopRD/poc-finance/internal/database"
	"github.com/acoopRD/poc-finance/internal/ledger"
	"github.com/acoopRD/poc-finance/internal/services"
	"github.com/acoopRD/poc-finance/internal/universe"
	"github.com/acoopRD/poc-finance/pkg/interfaces"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Services  Services  `json:"services"`
}

type Services struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
}

// Deps bundles everything the HTTP surface reads from.
type Deps struct {
	DB       *database.PostgresDB
	Redis    *database.RedisClient
	Reports  *cache.RedisReportCache
	Ledger   *ledger.Ledger
	Analyzer *services.MarketAnalysisService
	Filter   *universe.Filter
	Universe interfaces.UniverseProvider
}

func SetupRoutes(router *gin.Engine, deps Deps) {
	// Health check endpoint
	router.GET("/health", healthCheck(deps.DB, deps.Redis))

	analysisHandler := handlers.NewAnalysisHandler(deps.Reports, deps.Analyzer)
	holdingsHandler := handlers.NewHoldingsHandler(deps.Ledger, deps.Reports)
	universeHandler := handlers.NewUniverseHandler(deps.Filter, deps.Universe)

	v1 := router.Group("/api/v1")
	{
		analysis := v1.Group("/analysis")
		{
			analysis.GET("", analysisHandler.ListAnalyses)
			analysis.GET("/:symbol", analysisHandler.GetAnalysis)
		}

		v1.GET("/universe", universeHandler.GetUniverse)

		v1.GET("/holdings", holdingsHandler.GetHoldings)
		v1.GET("/orders", holdingsHandler.GetOrders)
	}
}

func healthCheck(db *database.PostgresDB, redis *database.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now(),
			Version:   "1.0.0",
			Services: Services{
				Database: "ok",
				Redis:    "ok",
			},
		}

		// Check database health
		if db == nil || db.HealthCheck(c.Request.Context()) != nil {
			response.Services.Database = "error"
			response.Status = "degraded"
		}

		// Check Redis health
		if redis == nil || redis.HealthCheck(c.Request.Context()) != nil {
			response.Services.Redis = "error"
			response.Status = "degraded"
		}

		statusCode := http.StatusOK
		if response.Status == "degraded" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, response)
	}
}
