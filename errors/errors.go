package errors

import (
	"context"
	"errors"
	"fmt"
)

// Error represents a failed logsync operation with context about where it failed.
// It wraps the underlying storage or filesystem error for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "list", "download", "write")
	Op string

	// Bucket is the storage bucket name (if applicable)
	Bucket string

	// Key is the object key or local file name (if applicable)
	Key string

	// Code classifies the failure
	Code ErrorCode

	// Err is the underlying error
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("logsync.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("logsync.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("logsync.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("logsync.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error carrying the same non-empty code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code != "" && t.Code == e.Code && t.Op == "" && t.Err == nil
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithCode sets the classification code.
func (e *Error) WithCode(code ErrorCode) *Error {
	e.Code = code
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
// The code is inferred from err when it wraps a known sentinel.
func NewError(op string, err error) *Error {
	return &Error{
		Op:   op,
		Code: CodeOf(err),
		Err:  err,
	}
}

// NewObjectError creates a new Error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return NewError(op, err).WithBucket(bucket).WithKey(key)
}

// New creates a coded error with a plain message.
func New(code ErrorCode, message string) *Error {
	return &Error{Op: "logsync", Code: code, Err: errors.New(message)}
}

// Wrap attaches a code and message to err. It returns nil if err is nil.
func Wrap(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Op: "logsync", Code: code, Err: fmt.Errorf("%s: %w", message, err)}
}

// Code returns a matcher usable with errors.Is for the given code.
func Code(code ErrorCode) error {
	return &Error{Code: code}
}

// Sentinel errors for common failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrObjectNotFound indicates that the requested object does not exist
	ErrObjectNotFound = errors.New("logsync: object not found")

	// ErrBucketNotFound indicates that the requested bucket does not exist
	ErrBucketNotFound = errors.New("logsync: bucket not found")

	// ErrAccessDenied indicates that access to the resource is denied
	ErrAccessDenied = errors.New("logsync: access denied")

	// ErrMissingBucket indicates that no bucket was configured
	ErrMissingBucket = errors.New("logsync: bucket name is required")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("logsync: invalid bucket name")

	// ErrFileExists indicates a sequence file is already present locally
	ErrFileExists = errors.New("logsync: file already exists")

	// ErrEmptyContent indicates a downloaded object is empty after trimming
	ErrEmptyContent = errors.New("logsync: empty content")
)

// CodeOf classifies err. Coded errors report their own code; known sentinels
// and context errors map to fixed codes; anything else is CodeUnknown.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrObjectNotFound), errors.Is(err, ErrBucketNotFound):
		return CodeNotFound
	case errors.Is(err, ErrAccessDenied):
		return CodeAccessDenied
	case errors.Is(err, ErrMissingBucket), errors.Is(err, ErrInvalidBucketName):
		return CodeInvalidConfig
	case errors.Is(err, ErrFileExists):
		return CodeAlreadyExists
	case errors.Is(err, ErrEmptyContent):
		return CodeEmptyContent
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	}
	return CodeUnknown
}

// IsObjectNotFound checks if an error indicates that an object was not found.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsFileExists checks if an error indicates a local file would have been overwritten.
func IsFileExists(err error) bool {
	return errors.Is(err, ErrFileExists)
}
