package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "bucket and key",
			err:  NewObjectError("download", "logs", "a.json", ErrObjectNotFound),
			want: "logsync.download logs/a.json: logsync: object not found",
		},
		{
			name: "bucket only",
			err:  NewError("list", ErrAccessDenied).WithBucket("logs"),
			want: "logsync.list bucket logs: logsync: access denied",
		},
		{
			name: "key only",
			err:  NewError("write", ErrFileExists).WithKey("07-03-2024-S1.json"),
			want: "logsync.write object 07-03-2024-S1.json: logsync: file already exists",
		},
		{
			name: "no context",
			err:  NewError("sync", errors.New("boom")),
			want: "logsync.sync: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	err := NewObjectError("download", "logs", "a.json", ErrObjectNotFound).WithMessage("fetching body")

	assert.True(t, IsObjectNotFound(err))
	assert.Contains(t, err.Error(), "fetching body")
	assert.Equal(t, CodeNotFound, err.Code)
}

func TestError_IsMatchesCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeInvalidConfig, "backend is required"))

	assert.True(t, errors.Is(err, Code(CodeInvalidConfig)))
	assert.False(t, errors.Is(err, Code(CodeNotFound)))
	assert.False(t, errors.Is(err, Code("")))
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{name: "nil", err: nil, want: ""},
		{name: "object not found", err: ErrObjectNotFound, want: CodeNotFound},
		{name: "bucket not found", err: fmt.Errorf("x: %w", ErrBucketNotFound), want: CodeNotFound},
		{name: "access denied", err: ErrAccessDenied, want: CodeAccessDenied},
		{name: "missing bucket", err: ErrMissingBucket, want: CodeInvalidConfig},
		{name: "invalid bucket", err: ErrInvalidBucketName, want: CodeInvalidConfig},
		{name: "file exists", err: ErrFileExists, want: CodeAlreadyExists},
		{name: "empty content", err: ErrEmptyContent, want: CodeEmptyContent},
		{name: "deadline", err: context.DeadlineExceeded, want: CodeTimeout},
		{name: "coded wins", err: New(CodeIO, "disk full"), want: CodeIO},
		{name: "unknown", err: errors.New("boom"), want: CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeIO, "ignored"))

	err := Wrap(ErrFileExists, CodeIO, "writing sequence file")
	require.Error(t, err)
	assert.True(t, IsFileExists(err))
	assert.Equal(t, CodeIO, CodeOf(err))
	assert.Equal(t, "logsync.logsync: writing sequence file: logsync: file already exists", err.Error())
}
