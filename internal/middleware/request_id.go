package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the correlation ID in and out
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey is the gin context key the ID is stored under
	RequestIDKey = "request_id"
)

// RequestID tags every request with a correlation ID, minting one when the
// caller did not send its own. The ID is echoed on the response and picked up
// by the request logger.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)

		c.Next()
	}
}

// GetRequestID returns the correlation ID for the current request, empty when
// the middleware did not run
func GetRequestID(c *gin.Context) string {
	if v, ok := c.Get(RequestIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
