package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/sectorpulse/internal/domain/dto"
)

// RecoveryMiddleware returns a Gin middleware that recovers from panics in
// snapshot handlers.
//
// Behavior:
//   - Logs the panic value, route and stack through the request logger, so
//     the line carries request_id.
//   - Attaches the panic as a gin error; RequestLogger reports it with the
//     final 500 status.
//   - Aborts with a 500 body that echoes the request id.
//
// Example:
//
//	router := gin.New()
//	router.Use(middleware.RequestID(), middleware.RequestLogger(), middleware.RecoveryMiddleware())
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			log := LoggerFrom(c)
			log.Error().
				Str("panic", fmt.Sprint(r)).
				Str("route", c.FullPath()).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")

			AbortWithError(c, http.StatusInternalServerError, dto.MsgInternal, fmt.Errorf("panic: %v", r))
		}()

		c.Next()
	}
}
