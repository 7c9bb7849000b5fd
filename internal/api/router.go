package api

import (
	"github.com/gin-gonic/gin"

	"github.com/cadenzalabs/composer-api/internal/api/handlers"
	apimiddleware "github.com/cadenzalabs/composer-api/internal/api/middleware"
	"github.com/cadenzalabs/composer-api/internal/config"
	"github.com/cadenzalabs/composer-api/internal/service"
)

func SetupRouter(cfg *config.Config, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking())

	// CORS middleware
	router.Use(apimiddleware.CORS(cfg.AllowedOrigins))

	// Health check
	router.GET("/health", handlers.HealthCheck)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(version)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	// Composition endpoints
	composeHandler := handlers.NewComposeHandler(service.NewCompositionService(cfg.MaxMelodyAttempts))
	router.POST("/generate_melody", composeHandler.GenerateMelody)
	router.POST("/reharmonize", composeHandler.Reharmonize)
	router.POST("/realize_chord", composeHandler.RealizeChord)
	router.POST("/export_midi", composeHandler.ExportMidi)
	router.POST("/transform_phrase", composeHandler.TransformPhrase)
	router.POST("/add_voice", composeHandler.AddVoice)

	return router
}
