package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/closeday-api/internal/config"
	domainRepo "github.com/sangkips/closeday-api/internal/domain/repository"
	"github.com/sangkips/closeday-api/internal/presentation/http/handler"
	"github.com/sangkips/closeday-api/internal/presentation/http/middleware"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Report *handler.ReportHandler
	Sales  *handler.SalesHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		rateLimiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		v1.Use(rateLimiter.Middleware())

		registerReportRoutes(v1, h, deps)
		registerSalesRoutes(v1, h)
	}

	return router
}

func registerReportRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	reports := v1.Group("/reports")
	{
		reports.GET("", h.Report.List)
		reports.GET("/summary", h.Report.PeriodSummary)
		reports.GET("/:date", h.Report.Get)
		reports.PUT("/:date", h.Report.Save)
		// Sync hits the vendor API, so replays with the same key return the
		// cached response instead of re-fetching.
		reports.POST("/:date/sync", middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		}), h.Report.Sync)
	}
}

func registerSalesRoutes(v1 *gin.RouterGroup, h *Handlers) {
	sales := v1.Group("/sales")
	{
		sales.GET("/:date", h.Sales.GetDailySales)
	}

	calculations := v1.Group("/calculations")
	{
		calculations.POST("/period", h.Sales.CalculatePeriod)
		calculations.POST("/ledger", h.Sales.SummarizeLedger)
	}
}
