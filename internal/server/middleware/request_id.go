package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader - header carrying the request ID
	RequestIDHeader = "X-Request-ID"
	// RequestIDContextKey - gin context key for the request ID
	RequestIDContextKey = "request_id"
)

// RequestID tags each request with a unique ID.
//
// A client-supplied X-Request-ID is honored; otherwise a new UUID is
// generated. The ID is echoed in the response headers and picked up by the
// logging middleware.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDContextKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// GetRequestID extracts the request ID from the gin context.
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDContextKey); exists {
		if strID, ok := id.(string); ok {
			return strID
		}
	}
	return ""
}
