// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Listings backend
	ErrCodeListingsFetchFailed     ErrorCode = "LISTINGS_FETCH_FAILED"
	ErrCodeListingsResponseInvalid ErrorCode = "LISTINGS_RESPONSE_INVALID"
	ErrCodeListingsTimeout         ErrorCode = "LISTINGS_TIMEOUT"

	// Input
	ErrCodeInvalidInput        ErrorCode = "INVALID_INPUT"
	ErrCodeInvalidFilterFormat ErrorCode = "INVALID_FILTER_FORMAT"

	// Catalog index
	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout                 ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"

	// Search audit store
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// DefaultListingsMessage is reported when the backend gives no message of its own.
const DefaultListingsMessage = "Failed to fetch listings"

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key to the error and returns it for chaining.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewListingsFetchFailedError covers transport failures and non-2xx replies.
// message is what the caller shows; an empty message falls back to the default.
func NewListingsFetchFailedError(message string, err error) *StandardError {
	if message == "" {
		message = DefaultListingsMessage
	}
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeListingsFetchFailed,
		Message:   message,
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewListingsResponseInvalidError is returned for envelopes whose status is not
// "success" or that carry no data.listings.
func NewListingsResponseInvalidError(message, details string) *StandardError {
	if message == "" {
		message = DefaultListingsMessage
	}
	return &StandardError{
		Code:      ErrCodeListingsResponseInvalid,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewListingsTimeoutError(path string) *StandardError {
	return &StandardError{
		Code:      ErrCodeListingsTimeout,
		Message:   "Listings request timed out",
		Details:   fmt.Sprintf("path: %s", path),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidFilterFormatError creates a non-retryable filter format error.
func NewInvalidFilterFormatError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidFilterFormat,
		Message:   "Invalid filter format",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeElasticsearchConnectionFailed,
		Message:   "Elasticsearch connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewSearchQueryFailedError(index string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Elasticsearch query error",
		Details:   fmt.Sprintf("index: %s, error: %s", index, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewSearchTimeoutError(index string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Elasticsearch query timeout",
		Details:   fmt.Sprintf("index: %s", index),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexNotFoundError creates a non-retryable index not found error.
func NewIndexNotFoundError(indexName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexNotFound,
		Message:   "Elasticsearch index not found",
		Details:   fmt.Sprintf("indexName: %s", indexName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Response cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeListingsFetchFailed:           "LISTINGS_FETCH_FAILED",
	ErrCodeListingsResponseInvalid:       "LISTINGS_RESPONSE_INVALID",
	ErrCodeListingsTimeout:               "LISTINGS_TIMEOUT",
	ErrCodeInvalidInput:                  "INVALID_INPUT",
	ErrCodeInvalidFilterFormat:           "INVALID_FILTER_FORMAT",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeSearchQueryFailed:             "SEARCH_QUERY_FAILED",
	ErrCodeSearchTimeout:                 "SEARCH_TIMEOUT",
	ErrCodeIndexNotFound:                 "INDEX_NOT_FOUND",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeDatabaseInsertFailed:          "DATABASE_INSERT_FAILED",
	ErrCodeCacheUnavailable:              "CACHE_UNAVAILABLE",
	ErrCodeInternal:                      "INTERNAL_ERROR",
}

// GetRetryCount returns the recommended job retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeDatabaseInsertFailed:
		return 3

	case ErrCodeSearchTimeout:
		return 2

	default:
		// listings backend failures are reported as data and never retried
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "LISTINGS"):
		return "LISTINGS"
	case strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}

// AsStandardError unwraps err into a *StandardError when one is in the chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// IsTimeout reports whether err is a context deadline.
func IsTimeout(err error) bool {
	return stderrors.Is(err, context.DeadlineExceeded)
}
