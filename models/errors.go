package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	ErrCodeMissingURL    = "MISSING_URL"
	ErrCodeNavigation    = "NAVIGATION_FAILURE"
	ErrCodeExtraction    = "EXTRACTION_FAILURE"
	ErrCodeSummarization = "SUMMARIZATION_FAILURE"
	ErrCodePersistence   = "PERSISTENCE_FAILURE"

	ErrCodeBrowser      = "BROWSER_UNAVAILABLE"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"

	// LLM-related codes, wrapped inside a SUMMARIZATION_FAILURE by the pipeline.
	ErrCodeLLMFailure     = "LLM_FAILURE"
	ErrCodeLLMAuthFailure = "LLM_AUTH_FAILURE"
	ErrCodeLLMRateLimited = "LLM_RATE_LIMITED"
)

// ErrorDetail is the structured error in API responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DigestError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type DigestError struct {
	Code    string
	Message string
	Err     error // wrapped cause
}

func (e *DigestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DigestError) Unwrap() error {
	return e.Err
}

// NewDigestError creates a new DigestError.
func NewDigestError(code, message string, err error) *DigestError {
	return &DigestError{Code: code, Message: message, Err: err}
}

// ToDetail converts an internal error to an API-facing ErrorDetail.
func (e *DigestError) ToDetail() *ErrorDetail {
	return &ErrorDetail{Code: e.Code, Message: e.Message}
}

// ErrorCode returns the code of the outermost DigestError in err's chain,
// ErrCodeInternal for any other non-nil error and "" for nil.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var de *DigestError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeInternal
}

// AsDigestError returns err as a *DigestError, wrapping foreign errors
// as INTERNAL_ERROR.
func AsDigestError(err error) *DigestError {
	var de *DigestError
	if errors.As(err, &de) {
		return de
	}
	return NewDigestError(ErrCodeInternal, err.Error(), err)
}
