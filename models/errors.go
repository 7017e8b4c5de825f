package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeFetchFailed       = "FETCH_FAILED"
	ErrCodeRenderFailed      = "RENDER_FAILED"
	ErrCodeExtractionFailed  = "EXTRACTION_FAILED"
	ErrCodeExtractionTimeout = "EXTRACTION_TIMEOUT"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code         string   `json:"code"`
	Message      string   `json:"message"`
	MethodsTried []string `json:"methods_tried,omitempty"`
}

// ExtractError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ExtractError struct {
	Code    string
	Message string

	// MethodsTried is set on terminal errors raised by the orchestrator.
	MethodsTried []string

	Err error // wrapped original error
}

func (e *ExtractError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// NewExtractError creates a new ExtractError.
func NewExtractError(code, message string, err error) *ExtractError {
	return &ExtractError{Code: code, Message: message, Err: err}
}

// WithMethods attaches the list of attempted strategies and returns e.
func (e *ExtractError) WithMethods(tried []string) *ExtractError {
	e.MethodsTried = append([]string{}, tried...)
	return e
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *ExtractError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message, MethodsTried: e.MethodsTried}
}
