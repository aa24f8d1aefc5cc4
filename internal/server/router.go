// Package server - HTTP surface of the preview server.
//
// The router is the composition root: all middleware and the file handler
// are assembled here. The request pipeline is
//
//	recovery → request ID → logging → metrics → CORS/cache headers → files
//
// Logging sits before the CORS middleware on purpose: the CORS middleware
// short-circuits OPTIONS preflights, and those must still be logged and
// counted like any other request.
package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"previewd/internal/config"
	"previewd/internal/server/middleware"
)

// RouterConfig - everything the router assembly needs.
type RouterConfig struct {
	// Logger for the request log and middleware
	Logger *slog.Logger
	// Root - absolute directory files are served from
	Root string
	// Index - document served for the root path
	Index string
	// CORS - header values attached to every response
	CORS *middleware.CORSConfig
	// MetricsEnabled exposes the Prometheus endpoint
	MetricsEnabled bool
	// MetricsPath - route for the Prometheus endpoint
	MetricsPath string
}

// NewRouterConfig maps the application configuration onto a RouterConfig.
// root is passed separately because it is resolved at startup.
func NewRouterConfig(cfg *config.Config, root string, logger *slog.Logger) *RouterConfig {
	return &RouterConfig{
		Logger: logger,
		Root:   root,
		Index:  cfg.Static.Index,
		CORS: &middleware.CORSConfig{
			AllowOrigin:  cfg.CORS.AllowOrigin,
			AllowMethods: cfg.CORS.AllowMethods,
			AllowHeaders: cfg.CORS.AllowHeaders,
			CacheControl: cfg.CORS.CacheControl,
		},
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
	}
}

// NewRouter builds the configured gin engine.
func NewRouter(cfg *RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Global middleware; recovery first so nothing below can kill the
	// process.
	router.Use(middleware.Recovery(&middleware.RecoveryConfig{
		Logger:           cfg.Logger,
		EnableStackTrace: true,
	}))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logging(&middleware.LoggingConfig{
		Logger: cfg.Logger,
	}))
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS(cfg.CORS))

	if cfg.MetricsEnabled {
		router.GET(cfg.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	// Everything else is a file request.
	static := NewStaticHandler(cfg.Root, cfg.Index)
	router.NoRoute(static.Handle)

	return router
}
