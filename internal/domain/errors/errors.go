// Package errors defines the typed error taxonomy shared across the
// ingestion pipeline: feed loading, the rule engine, storage, and the
// webhook worker each raise one of these so callers can branch on Type
// rather than string-matching messages.
package errors

import "fmt"

// ErrorType classifies an AppError; each constructor below also sets
// the HTTP status code the type maps to.
type ErrorType string

const (
	// ErrorTypeInvalidInput means the caller-supplied request itself is
	// malformed (e.g. an unparsable webhook payload, a bad source URL).
	ErrorTypeInvalidInput ErrorType = "INVALID_INPUT"

	// ErrorTypeInvalidFeed means a downloaded vendor feed failed to
	// parse: a missing anchor sheet, a missing critical column, or a
	// workbook that isn't valid XLSX.
	ErrorTypeInvalidFeed ErrorType = "INVALID_FEED"

	// ErrorTypeTransientStorage means a storage operation failed for a
	// reason expected to clear on retry (connection drop, timeout,
	// serialization failure) as opposed to a constraint violation.
	ErrorTypeTransientStorage ErrorType = "TRANSIENT_STORAGE"

	// ErrorTypeSyncAborted means a sync run was abandoned partway
	// through, distinct from a failure in any one step.
	ErrorTypeSyncAborted ErrorType = "SYNC_ABORTED"

	// ErrorTypeDuplicateEdge means a compatibility edge insert collided
	// with an existing (base_sku, partner_sku) pair. The materializer
	// treats this as a benign race with a concurrent run, not a failure.
	ErrorTypeDuplicateEdge ErrorType = "DUPLICATE_EDGE"

	// ErrorTypeInterruptedRun means the process exited mid-sync (e.g.
	// a crash between downloading the feed and completing
	// materialization), discovered on the next startup's recovery scan.
	ErrorTypeInterruptedRun ErrorType = "INTERRUPTED_RUN"
)

// AppError is the structured error type returned across package
// boundaries in the ingestion pipeline.
type AppError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
	Detail  string    `json:"detail,omitempty"`
	Code    int       `json:"-"` // HTTP status code, when surfaced over HTTP
	Err     error     `json:"-"` // wrapped cause, if any
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether err is an *AppError of the given type, unwrapping
// as needed. Used by callers that branch on error type (e.g. C6
// swallowing DuplicateEdge while letting everything else propagate).
func Is(err error, t ErrorType) bool {
	for err != nil {
		if ae, ok := err.(*AppError); ok && ae.Type == t {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// NewInvalidInput wraps a malformed-request error.
func NewInvalidInput(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidInput,
		Message: message,
		Code:    400,
		Err:     err,
	}
}

// NewInvalidFeed wraps a vendor feed parse failure. detail typically
// names the missing sheet or column.
func NewInvalidFeed(message, detail string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidFeed,
		Message: message,
		Detail:  detail,
		Code:    422,
		Err:     err,
	}
}

// NewTransientStorage wraps a retryable storage failure.
func NewTransientStorage(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeTransientStorage,
		Message: message,
		Code:    503,
		Err:     err,
	}
}

// NewSyncAborted wraps a sync run abandoned partway through.
func NewSyncAborted(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeSyncAborted,
		Message: message,
		Code:    500,
		Err:     err,
	}
}

// NewDuplicateEdge wraps a unique-constraint collision on a
// compatibility edge insert.
func NewDuplicateEdge(baseSKU, partnerSKU string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeDuplicateEdge,
		Message: fmt.Sprintf("edge %s -> %s already exists", baseSKU, partnerSKU),
		Code:    409,
		Err:     err,
	}
}

// NewInterruptedRun wraps a sync discovered abandoned mid-flight by
// startup recovery.
func NewInterruptedRun(syncID string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInterruptedRun,
		Message: fmt.Sprintf("sync %s was interrupted before completion", syncID),
		Code:    500,
		Err:     err,
	}
}
