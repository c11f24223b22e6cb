package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	CodeAppError    = "APP_ERROR"
	CodeScrape      = "SCRAPE_ERROR"
	CodeValidation  = "VALIDATION_ERROR"
	CodeCache       = "CACHE_ERROR"
	CodeStore       = "STORE_ERROR"
	CodeNotFound    = "NOT_FOUND"
	CodeUnavailable = "UNAVAILABLE"
)

type AppError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewAppError(message, code string, statusCode int, context map[string]any) *AppError {
	return &AppError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

// ScrapeError reports a failed profile fetch or an unparseable document.
type ScrapeError struct {
	*AppError
	URL string
}

func NewScrapeError(message, url string, cause error) *ScrapeError {
	return &ScrapeError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeScrape,
			StatusCode: http.StatusBadGateway,
			Context: map[string]any{
				"url": url,
			},
			Cause: cause,
		},
		URL: url,
	}
}

type ValidationError struct {
	*AppError
	Field string
	Value any
}

func NewValidationError(message, field string, value any) *ValidationError {
	return &ValidationError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: http.StatusBadRequest,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

// NewFieldsValidationError collects several field messages into one error.
func NewFieldsValidationError(message string, fields map[string]string) *ValidationError {
	ctx := make(map[string]any, len(fields))
	for k, v := range fields {
		ctx[k] = v
	}
	return &ValidationError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: http.StatusBadRequest,
			Context:    ctx,
		},
	}
}

type CacheError struct {
	*AppError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: http.StatusInternalServerError,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

type StoreError struct {
	*AppError
	Store     string
	Operation string
}

func NewStoreError(message, store, operation string, cause error) *StoreError {
	return &StoreError{
		AppError: &AppError{
			Message:    message,
			Code:       CodeStore,
			StatusCode: http.StatusInternalServerError,
			Context: map[string]any{
				"store":     store,
				"operation": operation,
			},
			Cause: cause,
		},
		Store:     store,
		Operation: operation,
	}
}

type NotFoundError struct {
	*AppError
	Resource string
	ID       string
}

func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{
		AppError: &AppError{
			Message:    fmt.Sprintf("%s %q not found", resource, id),
			Code:       CodeNotFound,
			StatusCode: http.StatusNotFound,
			Context: map[string]any{
				"resource": resource,
				"id":       id,
			},
		},
		Resource: resource,
		ID:       id,
	}
}

// NewUnavailableError is returned when a backing store was not configured.
func NewUnavailableError(component string) *AppError {
	return NewAppError(component+" is not configured", CodeUnavailable, http.StatusServiceUnavailable, map[string]any{
		"component": component,
	})
}

// StatusCode extracts the HTTP status carried by any error in the chain.
// Errors without one map to 500.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var scrapeErr *ScrapeError
	if stderrors.As(err, &scrapeErr) {
		return scrapeErr.StatusCode
	}
	var validationErr *ValidationError
	if stderrors.As(err, &validationErr) {
		return validationErr.StatusCode
	}
	var notFoundErr *NotFoundError
	if stderrors.As(err, &notFoundErr) {
		return notFoundErr.StatusCode
	}
	var storeErr *StoreError
	if stderrors.As(err, &storeErr) {
		return storeErr.StatusCode
	}
	var cacheErr *CacheError
	if stderrors.As(err, &cacheErr) {
		return cacheErr.StatusCode
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

func IsScrapeError(err error) bool {
	var scrapeErr *ScrapeError
	return stderrors.As(err, &scrapeErr)
}

func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return stderrors.As(err, &notFoundErr)
}
