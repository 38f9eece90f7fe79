// Package errors defines the stable error taxonomy for the reload pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ParseFailed indicates a module's source does not parse; the whole
	// operation aborts because an unanalyzable module cannot be scheduled
	ParseFailed ErrorCode = "PARSE_ERROR"
	// SourceNotFound indicates the locator found no source for a dotted path
	SourceNotFound ErrorCode = "SOURCE_NOT_FOUND"
	// UnresolvableImport indicates a from-import target could not be located;
	// non-fatal, the edge is dropped
	UnresolvableImport ErrorCode = "UNRESOLVABLE_IMPORT"
	// ReloadFailed indicates the host re-execution primitive raised while
	// re-running a module's own code
	ReloadFailed ErrorCode = "RELOAD_FAILED"
	// CacheEvictFailed indicates stale bytecode could not be removed;
	// non-fatal, logged and skipped
	CacheEvictFailed ErrorCode = "CACHE_EVICT_FAILED"
	// HistoryUnavailable indicates the session history store could not be
	// opened or written
	HistoryUnavailable ErrorCode = "HISTORY_UNAVAILABLE"
	// ConfigInvalid indicates a malformed configuration or skip-list file
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InternalError indicates an unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// ReloadError is an error with a stable code and, when known, the dotted path
// of the module it concerns.
type ReloadError struct {
	Code    ErrorCode `json:"code"`
	Module  string    `json:"module,omitempty"`
	Message string    `json:"message"`
	cause   error
}

// New creates a ReloadError with no module attribution.
func New(code ErrorCode, message string, cause error) *ReloadError {
	return &ReloadError{Code: code, Message: message, cause: cause}
}

// NewModule creates a ReloadError attributed to a module's dotted path.
func NewModule(code ErrorCode, module, message string, cause error) *ReloadError {
	return &ReloadError{Code: code, Module: module, Message: message, cause: cause}
}

// Error implements the error interface
func (e *ReloadError) Error() string {
	switch {
	case e.Module != "" && e.cause != nil:
		return fmt.Sprintf("[%s] %s: %s: %v", e.Code, e.Module, e.Message, e.cause)
	case e.Module != "":
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Module, e.Message)
	case e.cause != nil:
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	default:
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
}

// Unwrap returns the underlying error
func (e *ReloadError) Unwrap() error {
	return e.cause
}

// CodeOf extracts the ErrorCode from err, or InternalError when err carries
// no ReloadError in its chain.
func CodeOf(err error) ErrorCode {
	var re *ReloadError
	if stderrors.As(err, &re) {
		return re.Code
	}
	return InternalError
}

// ModuleOf extracts the attributed module dotted path from err, if any.
func ModuleOf(err error) string {
	var re *ReloadError
	if stderrors.As(err, &re) {
		return re.Module
	}
	return ""
}
