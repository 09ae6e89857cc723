package api

import (
	"github.com/gin-gonic/gin"
	"github.com/ipcctiled/transform-api/internal/api/handlers"
	apimiddleware "github.com/ipcctiled/transform-api/internal/api/middleware"
	"github.com/ipcctiled/transform-api/internal/metrics"
	"github.com/ipcctiled/transform-api/internal/profile"
	"github.com/ipcctiled/transform-api/internal/transform"
)

// Dependencies are the process-wide handles the router injects into its handlers
type Dependencies struct {
	Service        *transform.Service
	Profiles       map[profile.Name]profile.Profile
	DefaultProfile profile.Name
	Recorder       metrics.Recorder
	Stats          *metrics.Stats
	Prometheus     *metrics.Prometheus
	Version        string
}

func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(deps.Recorder))

	// CORS middleware, answers preflights
	router.Use(apimiddleware.CORS())

	// Any verb other than POST on a transform path lands here
	router.NoMethod(handlers.NoMethod)
	router.NoRoute(handlers.NotFound)

	// Health check
	healthHandler := handlers.NewHealthHandler(deps.Service, deps.DefaultProfile)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoints
	metricsHandler := handlers.NewMetricsHandler(deps.Version, deps.Stats)
	router.GET("/api/metrics", metricsHandler.GetMetrics)
	if deps.Prometheus != nil {
		router.GET("/metrics", gin.WrapH(deps.Prometheus.Handler()))
	}

	// Transform endpoints, one handler for every profile
	transformHandler := handlers.NewTransformHandler(deps.Service, deps.Profiles, deps.DefaultProfile)
	router.POST(handlers.TransformPath, transformHandler.Transform)
	router.POST(handlers.TransformPath+"/:profile", transformHandler.Transform)

	return router
}
