// Package config assembles logsync settings from defaults, an optional CUE or
// YAML file and LOGSYNC_* environment variables, in that order of precedence.
// Command-line flags are layered on top by the caller before Validate.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/logsync"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/errors"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/internal/validation"
)

// Environment variable names.
const (
	EnvBucket         = "LOGSYNC_BUCKET"
	EnvBucketFallback = "BUCKET_NAME"
	EnvPrefix         = "LOGSYNC_PREFIX"
	EnvOutputDir      = "LOGSYNC_OUTPUT_DIR"
	EnvCombinedFile   = "LOGSYNC_COMBINED_FILE"
	EnvBackend        = "LOGSYNC_BACKEND"
	EnvEndpoint       = "LOGSYNC_ENDPOINT"
	EnvRegion         = "LOGSYNC_REGION"
	EnvAccessKey      = "LOGSYNC_ACCESS_KEY"
	EnvSecretKey      = "LOGSYNC_SECRET_KEY"
	EnvUseSSL         = "LOGSYNC_USE_SSL"
	EnvForcePathStyle = "LOGSYNC_FORCE_PATH_STYLE"
	EnvTimezone       = "LOGSYNC_TIMEZONE"
	EnvStrictMatch    = "LOGSYNC_STRICT_MATCH"
	EnvCredentials    = "LOGSYNC_CREDENTIALS_SECRET"
)

// LookupFunc resolves an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Config is the resolved logsync configuration.
type Config struct {
	Bucket         string
	Prefix         string
	OutputDir      string
	CombinedFile   string
	Backend        string
	Endpoint       string
	Region         string
	AccessKey      string
	SecretKey      string
	UseSSL         bool
	ForcePathStyle bool
	Timezone       string
	StrictMatch    bool

	// CredentialsSecret names an AWS Secrets Manager secret holding keys
	CredentialsSecret string
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		OutputDir:    logsync.DefaultOutputDir,
		CombinedFile: logsync.DefaultCombinedFileName,
		Backend:      string(logsync.BackendS3),
		UseSSL:       true,
	}
}

// ApplyEnv overrides cfg with any variables lookup reports as set.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	strs := []struct {
		name string
		dst  *string
	}{
		{EnvBucketFallback, &c.Bucket},
		{EnvBucket, &c.Bucket},
		{EnvPrefix, &c.Prefix},
		{EnvOutputDir, &c.OutputDir},
		{EnvCombinedFile, &c.CombinedFile},
		{EnvBackend, &c.Backend},
		{EnvEndpoint, &c.Endpoint},
		{EnvRegion, &c.Region},
		{EnvAccessKey, &c.AccessKey},
		{EnvSecretKey, &c.SecretKey},
		{EnvTimezone, &c.Timezone},
		{EnvCredentials, &c.CredentialsSecret},
	}
	for _, s := range strs {
		if raw, ok := lookup(s.name); ok && strings.TrimSpace(raw) != "" {
			*s.dst = strings.TrimSpace(raw)
		}
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{EnvUseSSL, &c.UseSSL},
		{EnvForcePathStyle, &c.ForcePathStyle},
		{EnvStrictMatch, &c.StrictMatch},
	}
	for _, b := range bools {
		raw, ok := lookup(b.name)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		value, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return errors.Wrap(err, errors.CodeInvalidConfig, fmt.Sprintf("invalid %s=%q", b.name, raw))
		}
		*b.dst = value
	}
	return nil
}

// Location loads the configured time zone. An empty name means time.Local.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, fmt.Sprintf("invalid timezone %q", c.Timezone))
	}
	return loc, nil
}

// Validate checks that c can build a client. A missing bucket reports
// errors.ErrMissingBucket.
func (c Config) Validate() error {
	if err := validation.ValidateBucketName(c.Bucket); err != nil {
		return err
	}
	if err := validation.ValidatePrefix(c.Prefix); err != nil {
		return err
	}
	switch logsync.Backend(c.Backend) {
	case logsync.BackendS3, logsync.BackendMemory:
	case logsync.BackendMinIO:
		if c.Endpoint == "" {
			return errors.New(errors.CodeInvalidConfig, "minio backend requires an endpoint")
		}
	default:
		return errors.New(errors.CodeInvalidConfig, fmt.Sprintf("unknown backend %q", c.Backend))
	}
	if c.OutputDir == "" {
		return errors.New(errors.CodeInvalidConfig, "output directory cannot be empty")
	}
	if c.CombinedFile == "" || strings.ContainsAny(c.CombinedFile, `/\`) {
		return errors.New(errors.CodeInvalidConfig, fmt.Sprintf("invalid combined file name %q", c.CombinedFile))
	}
	_, err := c.Location()
	return err
}

// Options converts c into client options. It validates c first.
func (c Config) Options() ([]logsync.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}

	opts := []logsync.Option{
		logsync.WithBucket(c.Bucket),
		logsync.WithPrefix(c.Prefix),
		logsync.WithBackend(logsync.Backend(c.Backend)),
		logsync.WithRegion(c.Region),
		logsync.WithEndpoint(c.Endpoint),
		logsync.WithForcePathStyle(c.ForcePathStyle),
		logsync.WithUseSSL(c.UseSSL),
		logsync.WithOutputDir(c.OutputDir),
		logsync.WithCombinedFileName(c.CombinedFile),
		logsync.WithLocation(loc),
		logsync.WithStrictPathMatch(c.StrictMatch),
	}
	if c.AccessKey != "" || c.SecretKey != "" {
		opts = append(opts, logsync.WithCredentials(c.AccessKey, c.SecretKey))
	}
	if c.CredentialsSecret != "" {
		opts = append(opts, logsync.WithCredentialsSecret(c.CredentialsSecret))
	}
	return opts, nil
}
