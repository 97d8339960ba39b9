// Package s3 implements the logsync storage capability on Amazon S3 and
// S3-compatible services using the AWS SDK for Go v2.
package s3

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/logsync/errors"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/logtypes"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/storage"
)

// Config holds the settings needed to reach a bucket.
type Config struct {
	Bucket string
	Prefix string

	// Region defaults to the credential chain's region, then us-east-1.
	Region string

	// Endpoint overrides the S3 endpoint for S3-compatible services.
	Endpoint string

	// ForcePathStyle is required by most S3-compatible services.
	ForcePathStyle bool

	// AccessKey and SecretKey select static credentials. When empty the
	// default AWS credential chain is used.
	AccessKey    string
	SecretKey    string
	SessionToken string

	// MaxRetries is handed to the SDK retryer. Zero keeps the SDK default.
	MaxRetries int

	// Timeout bounds each HTTP request. Zero means no client timeout.
	Timeout time.Duration

	// PageSize is the ListObjectsV2 page size (1-1000).
	PageSize int32
}

// Store lists and reads log objects from one bucket and prefix.
type Store struct {
	client     s3api.S3API
	bucket     string
	prefix     string
	pageSize   int32
	logger     *slog.Logger
	lister     *Lister
	downloader *Downloader
}

var _ storage.Store = (*Store)(nil)

// New creates a Store, loading AWS configuration from the default chain.
//
// Example:
//
//	store, err := s3.New(ctx, s3.Config{Bucket: "my-logs", Region: "eu-west-1"}, logger)
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.NewError("client initialization", errors.ErrMissingBucket)
	}

	var loadOpts []func(*config.LoadOptions) error
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.NewError("client initialization", err).WithBucket(cfg.Bucket)
	}

	if cfg.Region != "" {
		awsCfg.Region = cfg.Region
	} else if awsCfg.Region == "" {
		awsCfg.Region = "us-east-1"
	}

	if cfg.MaxRetries > 0 {
		awsCfg.RetryMaxAttempts = cfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)
	if cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}
	if cfg.Timeout > 0 {
		httpClient := &http.Client{
			Timeout: cfg.Timeout,
		}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	return NewWithClient(s3.NewFromConfig(awsCfg, s3Opts...), cfg, logger), nil
}

// NewWithClient creates a Store around a custom S3API implementation.
// This is primarily used for testing with mocked clients.
func NewWithClient(client s3api.S3API, cfg Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		client:     client,
		bucket:     cfg.Bucket,
		prefix:     cfg.Prefix,
		pageSize:   cfg.PageSize,
		logger:     logger.With("backend", "s3", "bucket", cfg.Bucket),
		lister:     NewLister(client),
		downloader: NewDownloader(client),
	}
}

// List returns every object under the bucket and prefix, following
// continuation tokens until the listing is exhausted.
func (s *Store) List(ctx context.Context) ([]logtypes.Object, error) {
	startTime := time.Now()
	paginator := s.lister.ListWithPaginator(&ListConfig{
		Bucket:   s.bucket,
		Prefix:   s.prefix,
		PageSize: s.pageSize,
	})

	var objects []logtypes.Object
	pages := 0
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.NewError("list", translateError(err)).WithBucket(s.bucket)
		}
		pages++
		objects = append(objects, page.Objects...)
	}

	s.logger.Debug("listed objects",
		"prefix", s.prefix,
		"objects", len(objects),
		"pages", pages,
		"duration", time.Since(startTime))
	return objects, nil
}

// Download fetches the full body of key.
func (s *Store) Download(ctx context.Context, key string) (logtypes.Content, error) {
	data, contentType, err := s.downloader.Get(ctx, s.bucket, key)
	if err != nil {
		return logtypes.Content{}, err
	}
	return logtypes.Content{
		Key:         key,
		Data:        data,
		ContentType: storage.DetectContentType(contentType, data),
	}, nil
}

// Stat fetches object metadata with HeadObject.
func (s *Store) Stat(ctx context.Context, key string) (logtypes.ObjectMetadata, error) {
	result, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return logtypes.ObjectMetadata{}, errors.NewError("stat", translateError(err)).
			WithBucket(s.bucket).
			WithKey(key)
	}

	return logtypes.ObjectMetadata{
		Size:        aws.ToInt64(result.ContentLength),
		CreatedAt:   aws.ToTime(result.LastModified).UTC(),
		ContentType: aws.ToString(result.ContentType),
		ETag:        aws.ToString(result.ETag),
	}, nil
}
