package middleware

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// LoggingConfig - configuration for the request log.
type LoggingConfig struct {
	Logger    *slog.Logger
	SkipPaths []string // paths to leave out of the log (e.g. /metrics)
}

// DefaultLoggingConfig - log everything to the default logger.
func DefaultLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Logger:    slog.Default(),
		SkipPaths: nil,
	}
}

// Logging emits one structured log line per request.
//
// Each line carries the client address, the HTTP request line
// ("GET /app.js HTTP/1.1"), the response status, the bytes written, the
// handling duration and the request ID. Timestamps come from the slog
// handler.
func Logging(config *LoggingConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultLoggingConfig()
	}

	skipMap := make(map[string]bool)
	for _, path := range config.SkipPaths {
		skipMap[path] = true
	}

	return func(c *gin.Context) {
		if skipMap[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		requestLine := fmt.Sprintf("%s %s %s",
			c.Request.Method, c.Request.URL.RequestURI(), c.Request.Proto)

		c.Next()

		size := c.Writer.Size()
		if size < 0 {
			size = 0
		}

		attrs := []slog.Attr{
			slog.String("client", c.Request.RemoteAddr),
			slog.String("request", requestLine),
			slog.Int("status", c.Writer.Status()),
			slog.Int("bytes", size),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", GetRequestID(c)),
		}

		level := slog.LevelInfo
		if c.Writer.Status() >= 500 {
			level = slog.LevelError
		} else if c.Writer.Status() >= 400 {
			level = slog.LevelWarn
		}

		config.Logger.LogAttrs(c.Request.Context(), level, "request", attrs...)
	}
}
