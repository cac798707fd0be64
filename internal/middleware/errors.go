package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/sectorpulse/internal/domain/dto"
)

// ErrorHandler turns errors attached with c.Error into a 500 response when
// the handler did not write one itself.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorBody(c, dto.MsgInternal, c.Errors.Last().Err))
}

// AbortWithError aborts the chain and writes a standardized error body.
func AbortWithError(c *gin.Context, status int, message string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, ErrorBody(c, message, err))
}

// ErrorBody builds the error response for c, tagged with its request id.
func ErrorBody(c *gin.Context, message string, err error) dto.ErrorResponse {
	return dto.NewErrorResponse(message, err).WithRequestID(RequestIDFrom(c))
}
