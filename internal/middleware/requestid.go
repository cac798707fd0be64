package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/guttosm/sectorpulse/internal/logger"
	"github.com/rs/zerolog"
)

const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
	loggerKey       = "request_logger"
	maxRequestIDLen = 64
)

// RequestID is a Gin middleware that tags every request with an identifier
// and a request-scoped logger.
//
// Behavior:
//   - Reuses a well-formed inbound X-Request-ID (up to 64 characters of
//     letters, digits, '-', '_', '.' or ':'), so ids survive a proxy hop.
//   - Otherwise generates a new UUID (v4).
//   - Stores the id under "request_id" and echoes it in the X-Request-ID
//     response header.
//   - Stores an "http" component logger carrying request_id; read it with
//     LoggerFrom.
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.RequestID(), middleware.RequestLogger())
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if !validRequestID(id) {
			id = uuid.NewString()
		}

		c.Set(RequestIDKey, id)
		c.Set(loggerKey, logger.With("http").With().Str("request_id", id).Logger())
		c.Writer.Header().Set(RequestIDHeader, id)

		c.Next()
	}
}

// RequestIDFrom returns the id set by RequestID, or "" outside it.
func RequestIDFrom(c *gin.Context) string {
	v, _ := c.Get(RequestIDKey)
	return toString(v)
}

// LoggerFrom returns the request-scoped logger set by RequestID. Outside
// RequestID it falls back to the plain "http" component logger.
func LoggerFrom(c *gin.Context) zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(zerolog.Logger); ok {
			return l
		}
	}
	return logger.With("http")
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		switch b := id[i]; {
		case 'a' <= b && b <= 'z', 'A' <= b && b <= 'Z', '0' <= b && b <= '9':
		case b == '-' || b == '_' || b == '.' || b == ':':
		default:
			return false
		}
	}
	return true
}
