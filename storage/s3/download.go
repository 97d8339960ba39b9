package s3

import (
	"bytes"
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/logsync/errors"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/internal/s3api"
)

// Downloader handles S3 download operations.
type Downloader struct {
	s3Client s3api.S3API
}

// NewDownloader creates a new Downloader instance.
func NewDownloader(s3Client s3api.S3API) *Downloader {
	return &Downloader{
		s3Client: s3Client,
	}
}

// Download streams an object from S3 into writer and returns the
// server-reported content type.
func (d *Downloader) Download(ctx context.Context, bucket, key string, writer io.Writer) (string, error) {
	output, err := d.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", errors.NewError("download", translateError(err)).WithBucket(bucket).WithKey(key)
	}
	defer output.Body.Close()

	if _, err := io.Copy(writer, output.Body); err != nil {
		return "", errors.NewError("download", err).WithBucket(bucket).WithKey(key).WithCode(errors.CodeNetwork)
	}

	return aws.ToString(output.ContentType), nil
}

// Get downloads an entire object from S3 and returns it as a byte slice.
// Log objects are small enough to hold in memory.
func (d *Downloader) Get(ctx context.Context, bucket, key string) ([]byte, string, error) {
	var buf bytes.Buffer
	contentType, err := d.Download(ctx, bucket, key, &buf)
	if err != nil {
		return nil, "", err
	}
	return buf.Bytes(), contentType, nil
}
