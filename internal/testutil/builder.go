// Package testutil provides a builder for creating mock S3 clients.
package testutil

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// BucketObject is a fixture object served by a mock built with WithObjects.
type BucketObject struct {
	Key       string
	Body      string
	CreatedAt time.Time
}

// MockBuilder provides a fluent interface for building MockS3Client instances.
type MockBuilder struct {
	client *MockS3Client
}

// NewMockBuilder creates a new MockBuilder.
func NewMockBuilder() *MockBuilder {
	return &MockBuilder{
		client: &MockS3Client{},
	}
}

// Build returns the configured MockS3Client.
func (b *MockBuilder) Build() *MockS3Client {
	return b.client
}

// WithGetObject configures the GetObject behavior.
func (b *MockBuilder) WithGetObject(
	fn func(context.Context, *s3.GetObjectInput) (*s3.GetObjectOutput, error),
) *MockBuilder {
	b.client.GetObjectFunc = func(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		return fn(ctx, params)
	}
	return b
}

// WithListObjectsV2 configures the ListObjectsV2 behavior.
func (b *MockBuilder) WithListObjectsV2(
	fn func(context.Context, *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error),
) *MockBuilder {
	b.client.ListObjectsV2Func = func(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		return fn(ctx, params)
	}
	return b
}

// WithHeadObject configures the HeadObject behavior.
func (b *MockBuilder) WithHeadObject(
	fn func(context.Context, *s3.HeadObjectInput) (*s3.HeadObjectOutput, error),
) *MockBuilder {
	b.client.HeadObjectFunc = func(ctx context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
		return fn(ctx, params)
	}
	return b
}

// WithObjects serves the given objects from all three operations. Listing
// honours Prefix and returns at most pageSize keys per page, in key order,
// using the index of the next key as continuation token.
func (b *MockBuilder) WithObjects(pageSize int, objects ...BucketObject) *MockBuilder {
	byKey := make(map[string]BucketObject, len(objects))
	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		byKey[obj.Key] = obj
		keys = append(keys, obj.Key)
	}
	sort.Strings(keys)
	if pageSize <= 0 {
		pageSize = 1000
	}

	b.client.ListObjectsV2Func = func(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		prefix := aws.ToString(params.Prefix)
		var matched []string
		for _, k := range keys {
			if strings.HasPrefix(k, prefix) {
				matched = append(matched, k)
			}
		}

		start := 0
		if token := aws.ToString(params.ContinuationToken); token != "" {
			n, err := strconv.Atoi(token)
			if err != nil {
				return nil, &smithy.GenericAPIError{Code: "InvalidArgument", Message: "bad continuation token"}
			}
			start = n
		}
		end := start + pageSize
		if end > len(matched) {
			end = len(matched)
		}

		contents := make([]types.Object, 0, end-start)
		for _, k := range matched[start:end] {
			obj := byKey[k]
			contents = append(contents, CreateTestObject(obj.Key, int64(len(obj.Body)), obj.CreatedAt))
		}
		out := CreateListObjectsV2Output(contents, prefix, "", end < len(matched))
		if end < len(matched) {
			out.NextContinuationToken = StringPtr(strconv.Itoa(end))
		}
		return out, nil
	}

	b.client.GetObjectFunc = func(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		obj, ok := byKey[aws.ToString(params.Key)]
		if !ok {
			return nil, &types.NoSuchKey{Message: StringPtr("The specified key does not exist.")}
		}
		return CreateGetObjectOutput([]byte(obj.Body), ""), nil
	}

	b.client.HeadObjectFunc = func(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
		obj, ok := byKey[aws.ToString(params.Key)]
		if !ok {
			return nil, &types.NotFound{Message: StringPtr("Not Found")}
		}
		return CreateHeadObjectOutput(int64(len(obj.Body)), obj.CreatedAt, "application/json"), nil
	}
	return b
}

// WithObjectNotFound configures the mock to return object not found errors.
func (b *MockBuilder) WithObjectNotFound() *MockBuilder {
	notFoundErr := &types.NoSuchKey{
		Message: StringPtr("The specified key does not exist."),
	}

	b.client.GetObjectFunc = func(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		return nil, notFoundErr
	}
	b.client.HeadObjectFunc = func(ctx context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
		return nil, &types.NotFound{Message: StringPtr("Not Found")}
	}
	return b
}

// WithEmptyBucket configures the mock to return an empty bucket listing.
func (b *MockBuilder) WithEmptyBucket() *MockBuilder {
	b.client.ListObjectsV2Func = func(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		return &s3.ListObjectsV2Output{
			Name:        params.Bucket,
			Prefix:      params.Prefix,
			MaxKeys:     params.MaxKeys,
			IsTruncated: BoolPtr(false),
			KeyCount:    Int32Ptr(0),
		}, nil
	}
	return b
}

// WithAccessDenied configures the mock to return access denied errors.
func (b *MockBuilder) WithAccessDenied() *MockBuilder {
	accessDeniedErr := &smithy.GenericAPIError{Code: "AccessDenied", Message: "Access Denied"}

	b.client.GetObjectFunc = func(ctx context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
		return nil, accessDeniedErr
	}
	b.client.ListObjectsV2Func = func(ctx context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
		return nil, accessDeniedErr
	}
	b.client.HeadObjectFunc = func(ctx context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
		return nil, accessDeniedErr
	}
	return b
}
