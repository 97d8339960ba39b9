package logsync

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/logsync/credentials"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/errors"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/fs"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/fs/billy"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/internal/datepath"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/internal/pipeline/aggregate"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/internal/pipeline/incremental"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/storage"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/storage/memory"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/storage/minio"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/storage/s3"
)

// Client runs the sync and aggregation pipelines against one bucket and one
// output directory. It is safe for concurrent use, though the pipelines
// themselves process objects sequentially.
type Client struct {
	// mu serializes runs and guards closed
	mu sync.Mutex

	store      storage.Store
	fs         fs.Filesystem
	cfg        ClientConfig
	logger     *slog.Logger
	syncer     *incremental.Syncer
	aggregator *aggregate.Aggregator
	closed     bool
}

// New creates a Client with the provided options.
//
// Errors:
//   - ErrMissingBucket: if no bucket is configured and no store is injected
//   - ErrInvalidBucketName: if the bucket name is not DNS-compliant
//   - Backend construction errors (AWS configuration, MinIO endpoint)
//
// Example:
//
//	client, err := logsync.New(ctx,
//	    logsync.WithBucket("my-logs"),
//	    logsync.WithBackend(logsync.BackendMinIO),
//	    logsync.WithEndpoint("localhost:9000"),
//	    logsync.WithCredentials("minio", "minio123"),
//	)
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := ClientConfig{
		Backend:          BackendS3,
		UseSSL:           true,
		OutputDir:        DefaultOutputDir,
		CombinedFileName: DefaultCombinedFileName,
		Location:         time.Local,
		Clock:            time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	if err := validation.ValidatePrefix(cfg.Prefix); err != nil {
		return nil, err
	}

	store := cfg.Store
	if store == nil {
		if err := validation.ValidateBucketName(cfg.Bucket); err != nil {
			return nil, err
		}
		if err := resolveCredentials(ctx, &cfg); err != nil {
			return nil, err
		}
		var err error
		store, err = newStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	filesystem := cfg.Filesystem
	if filesystem == nil {
		dir, err := filepath.Abs(cfg.OutputDir)
		if err != nil {
			return nil, errors.NewError("client initialization", fmt.Errorf("resolve output dir: %w", err)).
				WithCode(errors.CodeInvalidConfig)
		}
		cfg.OutputDir = dir
		filesystem = billy.NewOSFS("/")
	}

	logger := cfg.Logger.With("bucket", cfg.Bucket)
	return &Client{
		store:  store,
		fs:     filesystem,
		cfg:    cfg,
		logger: logger,
		syncer: incremental.New(store, filesystem, incremental.Config{
			OutputDir: cfg.OutputDir,
			Location:  cfg.Location,
			DryRun:    cfg.DryRun,
			Logger:    logger,
		}),
		aggregator: aggregate.New(store, filesystem, aggregate.Config{
			OutputDir: cfg.OutputDir,
			FileName:  cfg.CombinedFileName,
			Matcher:   datepath.Matcher{Strict: cfg.StrictPathMatch},
			Now:       cfg.Clock,
			Logger:    logger,
		}),
	}, nil
}

// resolveCredentials fills static credentials from Secrets Manager when a
// secret is configured and no explicit keys were given.
func resolveCredentials(ctx context.Context, cfg *ClientConfig) error {
	if cfg.CredentialsSecret == "" || cfg.AccessKey != "" || cfg.SecretKey != "" {
		return nil
	}

	var resolver *credentials.Resolver
	if cfg.SecretsManager != nil {
		resolver = credentials.NewResolver(cfg.SecretsManager, cfg.Logger)
	} else {
		var err error
		resolver, err = credentials.New(ctx, cfg.Region, cfg.Logger)
		if err != nil {
			return err
		}
	}

	creds, err := resolver.Resolve(ctx, cfg.CredentialsSecret)
	if err != nil {
		return err
	}
	cfg.AccessKey = creds.AccessKey
	cfg.SecretKey = creds.SecretKey
	cfg.SessionToken = creds.SessionToken
	return nil
}

func newStore(ctx context.Context, cfg ClientConfig) (storage.Store, error) {
	switch cfg.Backend {
	case BackendS3, "":
		return s3.New(ctx, s3.Config{
			Bucket:         cfg.Bucket,
			Prefix:         cfg.Prefix,
			Region:         cfg.Region,
			Endpoint:       cfg.Endpoint,
			ForcePathStyle: cfg.ForcePathStyle,
			AccessKey:      cfg.AccessKey,
			SecretKey:      cfg.SecretKey,
			SessionToken:   cfg.SessionToken,
			MaxRetries:     cfg.MaxRetries,
			Timeout:        cfg.Timeout,
		}, cfg.Logger)
	case BackendMinIO:
		return minio.New(minio.Config{
			Endpoint:  cfg.Endpoint,
			Bucket:    cfg.Bucket,
			Prefix:    cfg.Prefix,
			Region:    cfg.Region,
			AccessKey:    cfg.AccessKey,
			SecretKey:    cfg.SecretKey,
			SessionToken: cfg.SessionToken,
			UseSSL:       cfg.UseSSL,
		}, cfg.Logger)
	case BackendMemory:
		return memory.New(cfg.Bucket, cfg.Prefix), nil
	}
	return nil, errors.NewError("client initialization",
		errors.New(errors.CodeInvalidConfig, fmt.Sprintf("unknown backend %q", cfg.Backend)))
}

// OutputDir returns the directory the pipelines write to.
func (c *Client) OutputDir() string {
	return c.cfg.OutputDir
}

// Close releases any resources held by the client. Runs after Close fail.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
