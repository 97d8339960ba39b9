// Package minio implements the logsync storage capability on MinIO and other
// S3-compatible servers using minio-go.
package minio

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/input-output-hk/catalyst-forge-libs/logsync/errors"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/logtypes"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/storage"
)

// Config holds the settings needed to reach a bucket.
type Config struct {
	Endpoint     string
	Bucket       string
	Prefix       string
	Region       string
	AccessKey    string
	SecretKey    string
	SessionToken string
	UseSSL       bool
}

// API is the subset of minio-go the store relies on.
type API interface {
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	GetObjectReader(ctx context.Context, bucket, key string) (io.ReadCloser, minio.ObjectInfo, error)
}

// clientAPI adapts *minio.Client to API.
type clientAPI struct {
	*minio.Client
}

// GetObjectReader opens key and stats it. minio-go defers request errors
// until first use, so the stat surfaces missing objects here.
func (c clientAPI) GetObjectReader(ctx context.Context, bucket, key string) (io.ReadCloser, minio.ObjectInfo, error) {
	obj, err := c.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, minio.ObjectInfo{}, err
	}
	info, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, minio.ObjectInfo{}, err
	}
	return obj, info, nil
}

// Store lists and reads log objects from one MinIO bucket and prefix.
type Store struct {
	api    API
	bucket string
	prefix string
	logger *slog.Logger
}

var _ storage.Store = (*Store)(nil)

// New connects to the MinIO endpoint with static credentials.
func New(cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.NewError("client initialization", errors.ErrMissingBucket)
	}
	if cfg.Endpoint == "" {
		return nil, errors.New(errors.CodeInvalidConfig, "minio backend requires an endpoint")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.NewError("client initialization", err).WithBucket(cfg.Bucket)
	}

	return NewWithAPI(clientAPI{client}, cfg, logger), nil
}

// NewWithAPI creates a Store around a custom API implementation.
func NewWithAPI(api API, cfg Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		api:    api,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
		logger: logger.With("backend", "minio", "bucket", cfg.Bucket),
	}
}

// List returns every object under the bucket and prefix. minio-go pages
// internally and streams results on a channel; the channel is drained fully
// so its producer goroutine always exits.
func (s *Store) List(ctx context.Context) ([]logtypes.Object, error) {
	startTime := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var objects []logtypes.Object
	var listErr error
	for info := range s.api.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix,
		Recursive: true,
	}) {
		if info.Err != nil {
			if listErr == nil {
				listErr = info.Err
				cancel()
			}
			continue
		}
		objects = append(objects, logtypes.Object{
			Key:       info.Key,
			Size:      info.Size,
			CreatedAt: info.LastModified.UTC(),
			ETag:      info.ETag,
		})
	}
	if listErr != nil {
		return nil, errors.NewError("list", translateError(listErr)).WithBucket(s.bucket)
	}

	s.logger.Debug("listed objects",
		"prefix", s.prefix,
		"objects", len(objects),
		"duration", time.Since(startTime))
	return objects, nil
}

// Download fetches the full body of key.
func (s *Store) Download(ctx context.Context, key string) (logtypes.Content, error) {
	reader, info, err := s.api.GetObjectReader(ctx, s.bucket, key)
	if err != nil {
		return logtypes.Content{}, errors.NewError("download", translateError(err)).WithBucket(s.bucket).WithKey(key)
	}
	defer func() {
		_ = reader.Close()
	}()

	data, err := io.ReadAll(reader)
	if err != nil {
		return logtypes.Content{}, errors.NewError("download", translateError(err)).WithBucket(s.bucket).WithKey(key)
	}

	return logtypes.Content{
		Key:         key,
		Data:        data,
		ContentType: storage.DetectContentType(info.ContentType, data),
	}, nil
}

// Stat fetches object metadata.
func (s *Store) Stat(ctx context.Context, key string) (logtypes.ObjectMetadata, error) {
	info, err := s.api.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return logtypes.ObjectMetadata{}, errors.NewError("stat", translateError(err)).WithBucket(s.bucket).WithKey(key)
	}
	return logtypes.ObjectMetadata{
		Size:        info.Size,
		CreatedAt:   info.LastModified.UTC(),
		ContentType: info.ContentType,
		ETag:        info.ETag,
	}, nil
}
