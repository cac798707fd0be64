package dto

import "time"

// Messages returned by the snapshot API and its middlewares.
const (
	MsgNoSnapshot     = "no snapshot available"
	MsgBadSectorCode  = "sector code must be three digits"
	MsgSectorNotFound = "sector not found"
	MsgLoadFailed     = "failed to load snapshot"
	MsgInternal       = "Internal server error"
	MsgRateLimited    = "rate limit exceeded"

	MsgRouteNotFound    = "route not found"
	MsgMethodNotAllowed = "method not allowed"
)

// ErrorResponse is the JSON body returned for every non-2xx API response.
type ErrorResponse struct {
	Message      string    `json:"message" example:"no snapshot available"`
	ErrorDetails string    `json:"error,omitempty" example:"sql: no rows in result set"`
	RequestID    string    `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Timestamp    time.Time `json:"timestamp"`
}

// Error implements the error interface.
func (e ErrorResponse) Error() string {
	if e.ErrorDetails == "" {
		return e.Message
	}
	return e.Message + ": " + e.ErrorDetails
}

// WithRequestID returns a copy of e tagged with the request id, so clients
// can quote it when reporting a failure.
func (e ErrorResponse) WithRequestID(id string) ErrorResponse {
	e.RequestID = id
	return e
}

// NewErrorResponse builds an ErrorResponse stamped with the current UTC time.
// err may be nil.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{Message: message, Timestamp: time.Now().UTC()}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}
