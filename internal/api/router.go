package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/sectorpulse/internal/domain/dto"
	"github.com/guttosm/sectorpulse/internal/middleware"
)

// requestTimeout bounds every snapshot query made on behalf of a request.
const requestTimeout = 10 * time.Second

// NewRouter creates the Gin engine serving the latest snapshot.
//
// Responsibilities:
//   - Registers global middlewares (RequestID, Logger, Recovery, ErrorHandler, RateLimiter).
//   - Bounds each request context by requestTimeout.
//   - Configures the read-only snapshot routes under /api/v1.
//   - Answers unknown routes and methods with the standard JSON error body.
//
// Note:
//   - Health and readiness endpoints (/healthz, /readyz) are registered in
//     app.InitializeApp() on this engine; RateLimiter lets them through.
func NewRouter(handler *Handler) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	// ─── Middlewares ───────────────────────────────
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		middleware.ErrorHandler,
		middleware.RateLimiter(),
	)

	// ─── Timeout ──────────────────────────────────
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	// ─── Fallbacks ────────────────────────────────
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, middleware.ErrorBody(c, dto.MsgRouteNotFound, nil))
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, middleware.ErrorBody(c, dto.MsgMethodNotAllowed, nil))
	})

	// ─── API v1 ───────────────────────────────────
	v1 := router.Group("/api/v1")
	{
		v1.GET("/records", handler.GetRecords)
		v1.GET("/sectors", handler.GetSectors)
		v1.GET("/sectors/:code", handler.GetSector)
	}

	return router
}
