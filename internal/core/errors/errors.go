package errors

const (
	HttpInternalError             = "internal_error"
	HttpInvalidJsonError          = "invalid_json"
	HttpInvalidQueryError         = "invalid_query"
	HttpDuplicateTransactionError = "duplicate_transaction"
	HttpPointsMismatchError       = "points_mismatch"
)

// ErrorResponse is the error response body for all API errors.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
