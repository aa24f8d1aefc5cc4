// Package middleware contains the HTTP middleware for the preview server.
//
// Middleware run before the file handler and cover the cross-cutting
// concerns: CORS/cache headers, request IDs, logging, metrics, recovery.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSConfig - header values attached to every response.
type CORSConfig struct {
	// AllowOrigin - allowed origin ("*" for local development)
	AllowOrigin string
	// AllowMethods - allowed HTTP methods
	AllowMethods []string
	// AllowHeaders - allowed request headers
	AllowHeaders []string
	// CacheControl - cache policy; previews must never be cached
	CacheControl string
}

// DefaultCORSConfig - the local-development defaults.
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowOrigin: "*",
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowHeaders: []string{
			"Content-Type",
			"Authorization",
		},
		CacheControl: "no-store, no-cache, must-revalidate",
	}
}

// CORS attaches the CORS and cache headers and answers preflight requests.
//
// The headers are set before any handler runs, so every response path -
// file hits, 404s, panics converted to 500s, the OPTIONS reply - carries
// them. OPTIONS is answered immediately with 200 and an empty body without
// inspecting the requested path.
func CORS(config *CORSConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultCORSConfig()
	}

	allowMethods := strings.Join(config.AllowMethods, ", ")
	allowHeaders := strings.Join(config.AllowHeaders, ", ")

	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", config.AllowOrigin)
		c.Header("Access-Control-Allow-Methods", allowMethods)
		c.Header("Access-Control-Allow-Headers", allowHeaders)
		c.Header("Cache-Control", config.CacheControl)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}
