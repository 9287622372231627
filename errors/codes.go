// Package errors provides the coded error system shared by the release train packages.
// It extends Go's standard error handling with structured error codes, retry classification
// and context preservation.
package errors

// ErrorCode represents a specific error condition.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Resource errors.

	// CodeNotFound indicates a requested resource does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// Permission errors.

	// CodeUnauthorized indicates the remote rejected or required credentials.
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	// Dependency cycles and trains referencing iterations outside their sequence
	// are reported with this code.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// CodeConfigLoadFailed indicates a configuration document could not be read or compiled.
	CodeConfigLoadFailed ErrorCode = "CONFIG_LOAD_FAILED"

	// CodeConfigDecodeFailed indicates a configuration document did not match the expected shape.
	CodeConfigDecodeFailed ErrorCode = "CONFIG_DECODE_FAILED"

	// Timeline errors.

	// CodeInvalidTimelinePosition indicates an iteration does not belong to the given train,
	// or that no predecessor/successor exists for the requested point on the timeline.
	CodeInvalidTimelinePosition ErrorCode = "INVALID_TIMELINE_POSITION"

	// CodeAmbiguousBranch indicates a raw branch name that cannot be turned into a branch.
	CodeAmbiguousBranch ErrorCode = "AMBIGUOUS_BRANCH_INPUT"

	// Infrastructure errors.

	// CodeNetwork indicates a network operation failed.
	CodeNetwork ErrorCode = "NETWORK_ERROR"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeCanceled indicates an operation was abandoned because its context was canceled.
	CodeCanceled ErrorCode = "CANCELED"

	// CodeUnavailable indicates the remote is temporarily unavailable.
	CodeUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// Execution errors.

	// CodeRepositorySync indicates cloning or fetching a module repository failed.
	CodeRepositorySync ErrorCode = "REPOSITORY_SYNC_FAILED"

	// CodeExecutionFailed indicates an external command failed.
	CodeExecutionFailed ErrorCode = "EXECUTION_FAILED"

	// System errors.

	// CodeInternal indicates an internal error occurred.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// Generic errors.

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// retryableCodes lists the codes whose failures may succeed when attempted again.
var retryableCodes = map[ErrorCode]bool{
	CodeNetwork:     true,
	CodeTimeout:     true,
	CodeUnavailable: true,
}

// Retryable reports whether failures carrying this code are transient.
func (c ErrorCode) Retryable() bool {
	return retryableCodes[c]
}
