package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	limitermemory "github.com/ulule/limiter/v3/drivers/store/memory"

	portssvc "github.com/finstream/records_backend/internal/core/ports/services"
	"github.com/finstream/records_backend/internal/middleware"
	"github.com/finstream/records_backend/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	api := r.Group("/api")
	if mw, ok := rateLimitMiddleware(cfg); ok {
		api.Use(mw)
	}

	registerRecordRoutes(api, services.Record, services.Aggregation)
}

// registerRecordRoutes registers record specific routes
func registerRecordRoutes(group *gin.RouterGroup, recordSvc portssvc.RecordSvcFacade, aggregationSvc portssvc.AggregationSvcFacade) {
	h := newRecordHandler(recordSvc, aggregationSvc)

	records := group.Group("/records")
	records.POST("", h.createRecord)
	records.GET("/aggregate", h.aggregateRecords)
}

// rateLimitMiddleware builds the IP rate limiter from config. An empty or
// malformed RATE_LIMIT disables limiting rather than failing startup.
func rateLimitMiddleware(cfg *config.Config) (gin.HandlerFunc, bool) {
	if cfg.RateLimit == "" {
		return nil, false
	}
	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		slog.Warn("Invalid RATE_LIMIT, rate limiting disabled", slog.String("rate_limit", cfg.RateLimit), slog.String("error", err.Error()))
		return nil, false
	}
	return middleware.RateLimit(limiter.New(limitermemory.NewStore(), rate)), true
}
