// Package errors provides the error types used across logsync.
// It combines string-based error codes for classification with an
// operation-scoped Error that carries bucket and object key context.
package errors

// ErrorCode represents a specific error condition.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Resource errors.

	// CodeNotFound indicates a requested object, bucket or directory does not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeAlreadyExists indicates a local file already exists and must not be overwritten.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Permission errors.

	// CodeAccessDenied indicates the storage backend refused the request.
	CodeAccessDenied ErrorCode = "ACCESS_DENIED"

	// Validation errors.

	// CodeInvalidInput indicates the provided input is invalid or malformed.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeInvalidConfig indicates a configuration error prevents startup.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// CodeParseFailed indicates object content could not be parsed as JSON.
	CodeParseFailed ErrorCode = "PARSE_ERROR"

	// CodeEmptyContent indicates a downloaded object held only whitespace.
	CodeEmptyContent ErrorCode = "EMPTY_CONTENT"

	// Infrastructure errors.

	// CodeNetwork indicates a network operation failed.
	CodeNetwork ErrorCode = "NETWORK_ERROR"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeIO indicates a local filesystem operation failed.
	CodeIO ErrorCode = "IO_ERROR"

	// System errors.

	// CodeInternal indicates an internal error occurred.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// Generic errors.

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)
