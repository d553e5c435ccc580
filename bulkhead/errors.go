package bulkhead

import "fmt"

// ErrorCode identifies the category of an error the bulkhead itself
// originates.
type ErrorCode string

const (
	// ErrCodeRejected marks a submission that failed admission because
	// the bulkhead was saturated. Not a failure of the operation itself.
	ErrCodeRejected ErrorCode = "BULKHEAD_REJECTED"

	// ErrCodeNullResult marks an operation factory that returned a nil
	// result, a caller-contract violation treated as an Operation Failure.
	ErrCodeNullResult ErrorCode = "BULKHEAD_NULL_RESULT"

	// ErrCodeInvariantViolation marks a detected inconsistency in permit
	// accounting — always a bug, never a normal outcome.
	ErrCodeInvariantViolation ErrorCode = "BULKHEAD_INVARIANT_VIOLATION"
)

// BulkheadError is the error type surfaced through a Handle's failure path
// or synchronously from introspection calls. Unlike a user's own
// operation error, which is propagated unchanged, BulkheadError is
// reserved for errors the bulkhead itself originates: rejection,
// null-result detection, and invariant violations.
type BulkheadError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *BulkheadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("bulkhead: [%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("bulkhead: [%s] %s", e.Code, e.Message)
}

func (e *BulkheadError) Unwrap() error {
	return e.Cause
}

// NewRejectedError builds the error carried by a handle that was
// completed-failure immediately at submission time due to saturation.
func NewRejectedError() *BulkheadError {
	return &BulkheadError{
		Code:    ErrCodeRejected,
		Message: "bulkhead capacity exceeded, submission rejected",
	}
}

// NewNullResultError builds the error carried when the operation factory
// returns a nil result, a caller-contract violation.
func NewNullResultError() *BulkheadError {
	return &BulkheadError{
		Code:    ErrCodeNullResult,
		Message: "operation factory returned a nil result",
	}
}

// NewInvariantViolationError builds the error surfaced when the permit
// counter observes a value outside [0, limit].
func NewInvariantViolationError(available, limit int) *BulkheadError {
	return &BulkheadError{
		Code:    ErrCodeInvariantViolation,
		Message: fmt.Sprintf("permit counter invariant violated: available=%d limit=%d", available, limit),
	}
}

// IsRejected reports whether err is (or wraps) a rejection error.
func IsRejected(err error) bool {
	return hasCode(err, ErrCodeRejected)
}

// IsNullResult reports whether err is (or wraps) a null-result error.
func IsNullResult(err error) bool {
	return hasCode(err, ErrCodeNullResult)
}

// IsInvariantViolation reports whether err is (or wraps) an invariant
// violation error.
func IsInvariantViolation(err error) bool {
	return hasCode(err, ErrCodeInvariantViolation)
}

func hasCode(err error, code ErrorCode) bool {
	for err != nil {
		if be, ok := err.(*BulkheadError); ok {
			return be.Code == code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// CallerError indicates a programmer error at the call site: invalid
// construction or a nil operation factory. It never consumes a permit and
// is reported synchronously, not through a Handle.
type CallerError struct {
	Message string
}

func (e *CallerError) Error() string {
	return "bulkhead: caller error: " + e.Message
}
