package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/sectorpulse/internal/domain/dto"
	"github.com/rs/zerolog"
)

// RequestLogger is a Gin middleware that logs method, path, status code and
// request latency through the logger RequestID attached, so each line
// carries request_id.
//
// Behavior:
//   - Captures start time before request handling.
//   - After request is processed, calculates latency.
//   - Logs at warn for 4xx, error for 5xx, info otherwise.
//   - Attaches the last gin error, if any.
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.RequestID(), middleware.RequestLogger())
//
// Example log output:
//
//	request_id=123e4567-e89b-12d3-a456-426614174000 method=GET path=/api/v1/sectors status=200 latency_ms=15
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Start timer
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path

		// Process request
		c.Next()

		// Compute latency and get status
		latency := time.Since(start)
		status := c.Writer.Status()

		log := LoggerFrom(c)
		ev := eventFor(&log, status)
		if len(c.Errors) > 0 {
			ev = ev.Err(c.Errors.Last().Err)
		}
		ev.
			Str("method", method).
			Str("path", path).
			Int("status", status).
			Int64("latency_ms", latency.Milliseconds()).
			Str("client_ip", c.ClientIP()).
			Msg("http_request")
	}
}

func eventFor(l *zerolog.Logger, status int) *zerolog.Event {
	switch {
	case status >= http.StatusInternalServerError:
		return l.Error()
	case status >= http.StatusBadRequest:
		return l.Warn()
	}
	return l.Info()
}

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// client tracks one IP's requests in its current fixed window.
type client struct {
	windowStart time.Time
	lastSeen    time.Time
	count       int
}

// Global in-memory store for rate limiting.
// NOTE: In production, consider Redis or another distributed store for multi-instance deployments.
var (
	clients         = make(map[string]*client)
	window          = time.Minute
	limit           = 60
	lastSweep       time.Time
	rateLimiterLock sync.Mutex

	// clock is an indirection for tests; defaults to time.Now.
	clock = time.Now

	// unlimitedPaths are health check endpoints that must never be throttled.
	unlimitedPaths = map[string]bool{
		"/healthz": true,
		"/readyz":  true,
	}
)

// RateLimiter is a simple in-memory middleware that limits the number of requests per client IP.
//
// Behavior:
//   - Allows up to `limit` requests per fixed `window` (default: 60 requests per 1 minute).
//   - The window restarts once `window` has passed since it opened, however
//     steady the traffic in between.
//   - Identifies clients by their IP address.
//   - Liveness and readiness checks (/healthz, /readyz) are never limited.
//   - Clients idle for longer than `window` are evicted.
//   - If limit exceeded, returns HTTP 429 Too Many Requests.
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.RateLimiter())
//
// Response when limit exceeded:
//
//	HTTP/1.1 429 Too Many Requests
//	{
//	    "message": "rate limit exceeded",
//	    "timestamp": "..."
//	}
func RateLimiter() gin.HandlerFunc {
	return func(c *gin.Context) {
		if unlimitedPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		ip := c.ClientIP()
		now := clock()

		rateLimiterLock.Lock()
		sweepClients(now)
		cl, ok := clients[ip]
		if !ok || now.Sub(cl.windowStart) > window {
			cl = &client{windowStart: now}
			clients[ip] = cl
		}
		cl.count++
		cl.lastSeen = now
		exceeded := cl.count > limit
		rateLimiterLock.Unlock()

		if exceeded {
			AbortWithError(c, http.StatusTooManyRequests, dto.MsgRateLimited, nil)
			return
		}

		c.Next()
	}
}

// sweepClients evicts clients idle for longer than window, at most once per
// window. Callers hold rateLimiterLock.
func sweepClients(now time.Time) {
	if now.Sub(lastSweep) <= window {
		return
	}
	for ip, cl := range clients {
		if now.Sub(cl.lastSeen) > window {
			delete(clients, ip)
		}
	}
	lastSweep = now
}
