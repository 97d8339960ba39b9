// Package testutil provides test helper functions.
package testutil

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// StringPtr returns a pointer to the given string.
// This is useful for AWS SDK inputs that require string pointers.
func StringPtr(s string) *string {
	return aws.String(s)
}

// Int64Ptr returns a pointer to the given int64.
func Int64Ptr(i int64) *int64 {
	return aws.Int64(i)
}

// Int32Ptr returns a pointer to the given int32.
func Int32Ptr(i int32) *int32 {
	return aws.Int32(i)
}

// BoolPtr returns a pointer to the given bool.
func BoolPtr(b bool) *bool {
	return aws.Bool(b)
}

// TimePtr returns a pointer to the given time.
// This is useful for AWS SDK outputs that return time pointers.
func TimePtr(t time.Time) *time.Time {
	return &t
}

// CalculateETag calculates the ETag for the given data.
func CalculateETag(data []byte) string {
	h := md5.Sum(data)
	return fmt.Sprintf(`"%x"`, h)
}

// CreateTestObject creates a test S3 object structure.
// This is useful for mocking ListObjectsV2 responses.
func CreateTestObject(key string, size int64, lastModified time.Time) types.Object {
	return types.Object{
		Key:          StringPtr(key),
		Size:         Int64Ptr(size),
		LastModified: TimePtr(lastModified),
		ETag:         StringPtr(fmt.Sprintf(`"%x"`, md5.Sum([]byte(key)))),
		StorageClass: types.ObjectStorageClassStandard,
	}
}

// CreateListObjectsV2Output creates a test ListObjectsV2Output structure.
// This is useful for mocking S3 list operations.
func CreateListObjectsV2Output(
	objects []types.Object, prefix, delimiter string, truncated bool,
) *s3.ListObjectsV2Output {
	output := &s3.ListObjectsV2Output{
		Contents:    objects,
		KeyCount:    Int32Ptr(int32(len(objects))),
		MaxKeys:     Int32Ptr(1000),
		Name:        StringPtr("test-bucket"),
		Prefix:      StringPtr(prefix),
		Delimiter:   StringPtr(delimiter),
		IsTruncated: BoolPtr(truncated),
	}
	if truncated && len(objects) > 0 {
		output.NextContinuationToken = StringPtr("next-token")
	}
	return output
}

// CreateHeadObjectOutput creates a test HeadObjectOutput structure.
// This is useful for mocking HeadObject operations.
func CreateHeadObjectOutput(size int64, lastModified time.Time, contentType string) *s3.HeadObjectOutput {
	return &s3.HeadObjectOutput{
		ContentLength: Int64Ptr(size),
		LastModified:  TimePtr(lastModified),
		ContentType:   StringPtr(contentType),
		ETag:          StringPtr(fmt.Sprintf(`"%x"`, md5.Sum([]byte("test")))),
		Metadata:      map[string]string{},
	}
}

// CreateGetObjectOutput creates a test GetObjectOutput structure.
// An empty contentType leaves the header unset, as some producers do.
func CreateGetObjectOutput(data []byte, contentType string) *s3.GetObjectOutput {
	out := &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: Int64Ptr(int64(len(data))),
		ETag:          StringPtr(CalculateETag(data)),
		LastModified:  TimePtr(time.Now()),
	}
	if contentType != "" {
		out.ContentType = StringPtr(contentType)
	}
	return out
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// BufferLogger returns a logger writing JSON records into buf, for tests
// that assert on warnings.
func BufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
