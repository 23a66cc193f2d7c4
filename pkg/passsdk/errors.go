package passsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes used in ErrorResponse.
const (
	ErrorCodeInvalidRequest    = "invalid_request"
	ErrorCodeInvalidToken      = "invalid_token"
	ErrorCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrorCodeServerError       = "server_error"
)

// APIError is a protocol-level failure. Authentication and barcode failures
// are not APIErrors; they come back as a result with Success=false.
type APIError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// parseErrorResponse returns an *APIError for body, or nil if body is not an
// ErrorResponse with a description.
func parseErrorResponse(statusCode int, body []byte) *APIError {
	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.ErrorDescription != "" {
		return &APIError{
			StatusCode:  statusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}
	return nil
}

func genericError(statusCode int) *APIError {
	return &APIError{
		StatusCode:  statusCode,
		Code:        ErrorCodeServerError,
		Description: fmt.Sprintf("HTTP %d: %s", statusCode, http.StatusText(statusCode)),
	}
}
