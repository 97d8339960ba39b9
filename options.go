package logsync

import (
	"log/slog"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/logsync/credentials"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/fs"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/storage"
)

// Backend names a storage implementation.
type Backend string

const (
	// BackendS3 uses the AWS SDK against S3 or an S3-compatible endpoint
	BackendS3 Backend = "s3"

	// BackendMinIO uses the MinIO client against an S3-compatible endpoint
	BackendMinIO Backend = "minio"

	// BackendMemory uses an empty in-process store
	BackendMemory Backend = "memory"
)

const (
	// DefaultOutputDir is the default local output directory.
	DefaultOutputDir = "logs"

	// DefaultCombinedFileName is the default name of the aggregation output.
	DefaultCombinedFileName = "today.json"
)

// Option configures a Client.
type Option func(*ClientConfig)

// ClientConfig holds the configuration assembled from Options.
type ClientConfig struct {
	Bucket         string
	Prefix         string
	Region         string
	Endpoint       string
	ForcePathStyle bool
	UseSSL         bool
	Backend        Backend
	AccessKey      string
	SecretKey      string
	SessionToken   string
	MaxRetries     int
	Timeout        time.Duration

	CredentialsSecret string
	SecretsManager    credentials.ManagerAPI

	OutputDir        string
	CombinedFileName string
	Location         *time.Location
	StrictPathMatch  bool
	DryRun           bool

	Logger     *slog.Logger
	Clock      func() time.Time
	Store      storage.Store
	Filesystem fs.Filesystem
}

// WithBucket sets the bucket to read from. Required unless WithStore is used.
func WithBucket(bucket string) Option {
	return func(c *ClientConfig) {
		c.Bucket = bucket
	}
}

// WithPrefix restricts listing to keys under prefix.
func WithPrefix(prefix string) Option {
	return func(c *ClientConfig) {
		c.Prefix = prefix
	}
}

// WithRegion sets the storage region.
// If not specified, the AWS credential chain's region is used.
func WithRegion(region string) Option {
	return func(c *ClientConfig) {
		c.Region = region
	}
}

// WithEndpoint sets a custom endpoint for S3-compatible services.
// The MinIO backend requires it.
func WithEndpoint(endpoint string) Option {
	return func(c *ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithForcePathStyle forces path-style URLs on the S3 backend.
// This is required for S3-compatible services that don't support virtual hosting.
func WithForcePathStyle(forcePathStyle bool) Option {
	return func(c *ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithUseSSL selects TLS for the MinIO backend. Default is true.
func WithUseSSL(useSSL bool) Option {
	return func(c *ClientConfig) {
		c.UseSSL = useSSL
	}
}

// WithBackend selects the storage implementation. Default is BackendS3.
func WithBackend(backend Backend) Option {
	return func(c *ClientConfig) {
		c.Backend = backend
	}
}

// WithCredentials sets static credentials. Without them the S3 backend uses
// the default AWS credential chain.
func WithCredentials(accessKey, secretKey string) Option {
	return func(c *ClientConfig) {
		c.AccessKey = accessKey
		c.SecretKey = secretKey
	}
}

// WithCredentialsSecret reads static credentials from the named AWS Secrets
// Manager secret. Explicit WithCredentials take precedence.
func WithCredentialsSecret(secretID string) Option {
	return func(c *ClientConfig) {
		c.CredentialsSecret = secretID
	}
}

// WithSecretsManager sets the Secrets Manager client used by
// WithCredentialsSecret. If not specified, one is built from the default AWS
// configuration chain.
func WithSecretsManager(api credentials.ManagerAPI) Option {
	return func(c *ClientConfig) {
		c.SecretsManager = api
	}
}

// WithMaxRetries sets the SDK retry attempts of the S3 backend.
// Zero keeps the SDK default.
func WithMaxRetries(maxRetries int) Option {
	return func(c *ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout bounds each HTTP request of the S3 backend.
func WithTimeout(timeout time.Duration) Option {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// WithOutputDir sets the local directory for sequence and combined files.
// Default is "logs".
func WithOutputDir(dir string) Option {
	return func(c *ClientConfig) {
		if dir != "" {
			c.OutputDir = dir
		}
	}
}

// WithCombinedFileName sets the aggregation output file name.
// Default is "today.json".
func WithCombinedFileName(name string) Option {
	return func(c *ClientConfig) {
		if name != "" {
			c.CombinedFileName = name
		}
	}
}

// WithLocation sets the time zone used for compact dates in sequence file
// names. Default is time.Local. Key path fragments are always UTC.
func WithLocation(loc *time.Location) Option {
	return func(c *ClientConfig) {
		c.Location = loc
	}
}

// WithStrictPathMatch requires today's YYYY/MM/DD fragment to occupy whole
// key segments instead of appearing anywhere in the key.
func WithStrictPathMatch(strict bool) Option {
	return func(c *ClientConfig) {
		c.StrictPathMatch = strict
	}
}

// WithDryRun makes Sync plan without downloading or writing.
func WithDryRun(dryRun bool) Option {
	return func(c *ClientConfig) {
		c.DryRun = dryRun
	}
}

// WithLogger configures the client with a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *ClientConfig) {
		c.Logger = logger
	}
}

// WithClock overrides the source of "now" for AggregateToday.
func WithClock(now func() time.Time) Option {
	return func(c *ClientConfig) {
		c.Clock = now
	}
}

// WithStore sets the storage implementation directly, bypassing backend
// construction. This is primarily used for testing.
func WithStore(store storage.Store) Option {
	return func(c *ClientConfig) {
		c.Store = store
	}
}

// WithFilesystem sets the local filesystem implementation.
// If not specified, defaults to the OS filesystem.
func WithFilesystem(filesystem fs.Filesystem) Option {
	return func(c *ClientConfig) {
		c.Filesystem = filesystem
	}
}
