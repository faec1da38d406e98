package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CorrelationIDHeader = "X-Correlation-ID"

	// CorrelationIDKey holds the request's correlation id in the gin context
	CorrelationIDKey = "correlation_id"

	// Caller ids end up in logs, voucher events and Kafka headers
	maxCorrelationIDLength = 128
)

// CorrelationID tags the request with the caller's X-Correlation-ID, or a fresh UUID when the
// header is missing or unusable, and echoes the chosen id on the response.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationIDHeader)
		if !usableCorrelationID(id) {
			id = uuid.NewString()
		}

		c.Header(CorrelationIDHeader, id)
		c.Set(CorrelationIDKey, id)
		c.Next()
	}
}

// RequestCorrelationID returns the id set by CorrelationID, or "" outside that middleware
func RequestCorrelationID(c *gin.Context) string {
	return c.GetString(CorrelationIDKey)
}

// usableCorrelationID accepts short tokens of letters, digits and . _ : - only
func usableCorrelationID(id string) bool {
	if id == "" || len(id) > maxCorrelationIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '_', r == ':', r == '-':
		default:
			return false
		}
	}
	return true
}
