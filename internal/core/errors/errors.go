package errors

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	// CodeExtractionFailure means the compiler output held no usable symbol data.
	// Hard: propagated to the caller.
	CodeExtractionFailure ErrorCode = "EXTRACTION_FAILURE"
	// CodeCacheUnavailable marks a template-cache read that could not be served.
	// Soft: absorbed at the adapter, readers see "absent".
	CodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"
	// CodeSyncItemFailure marks a single corpus item that failed to sync.
	// Soft: the run skips it and continues.
	CodeSyncItemFailure ErrorCode = "SYNC_ITEM_FAILURE"
	// CodeSyncListingFailure means the authoritative corpus listing could not be
	// fetched. Hard: aborts the whole sync run.
	CodeSyncListingFailure ErrorCode = "SYNC_LISTING_FAILURE"
	CodeValidationError    ErrorCode = "VALIDATION_ERROR"
	CodeInternal           ErrorCode = "INTERNAL_ERROR"
)

type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
	Context map[string]interface{}
}

const (
	CtxPath      = "path"
	CtxOperation = "operation"
	CtxSymbol    = "symbol"
	CtxMIB       = "mib"
)

func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if len(e.Context) > 0 {
		msg += fmt.Sprintf(" %v", e.Context)
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func New(code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg}
}

func Wrap(err error, code ErrorCode, msg string) error {
	return &DomainError{Code: code, Message: msg, Err: err}
}

func AddContext(err error, key string, value interface{}) error {
	var de *DomainError
	if errors.As(err, &de) {
		de.WithContext(key, value)
		return de
	}
	return &DomainError{
		Code:    CodeInternal,
		Message: "wrapped error",
		Err:     err,
		Context: map[string]interface{}{key: value},
	}
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsSoft reports whether an error belongs to the degrade-and-continue class.
func IsSoft(err error) bool {
	return IsCode(err, CodeCacheUnavailable) || IsCode(err, CodeSyncItemFailure)
}
