package config

import (
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/input-output-hk/catalyst-forge-libs/logsync/errors"
	"github.com/input-output-hk/catalyst-forge-libs/logsync/fs"
)

// fileConfig is the on-disk shape of a configuration file. Pointer fields
// distinguish "unset" from zero values so the file only overrides what it
// names.
type fileConfig struct {
	Bucket            *string `json:"bucket,omitempty" yaml:"bucket"`
	Prefix            *string `json:"prefix,omitempty" yaml:"prefix"`
	OutputDir         *string `json:"outputDir,omitempty" yaml:"outputDir"`
	CombinedFile      *string `json:"combinedFile,omitempty" yaml:"combinedFile"`
	Backend           *string `json:"backend,omitempty" yaml:"backend"`
	Endpoint          *string `json:"endpoint,omitempty" yaml:"endpoint"`
	Region            *string `json:"region,omitempty" yaml:"region"`
	AccessKey         *string `json:"accessKey,omitempty" yaml:"accessKey"`
	SecretKey         *string `json:"secretKey,omitempty" yaml:"secretKey"`
	CredentialsSecret *string `json:"credentialsSecret,omitempty" yaml:"credentialsSecret"`
	UseSSL            *bool   `json:"useSSL,omitempty" yaml:"useSSL"`
	ForcePathStyle    *bool   `json:"forcePathStyle,omitempty" yaml:"forcePathStyle"`
	Timezone          *string `json:"timezone,omitempty" yaml:"timezone"`
	StrictMatch       *bool   `json:"strictMatch,omitempty" yaml:"strictMatch"`
}

// Load builds a Config from defaults, the optional file at path and the
// environment. It does not validate; callers apply flags and then call
// Validate.
func Load(fsys fs.Filesystem, path string, lookup LookupFunc) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.ApplyFile(fsys, path); err != nil {
			return Config{}, err
		}
	}
	if lookup != nil {
		if err := cfg.ApplyEnv(lookup); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// ApplyFile overrides cfg with the settings in a .cue, .yaml or .yml file.
func (c *Config) ApplyFile(fsys fs.Filesystem, path string) error {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidConfig, "failed to read configuration file")
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		err = decodeCUE(path, data, &fc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		return errors.New(errors.CodeInvalidConfig, "unsupported configuration file type "+filepath.Ext(path))
	}
	if err != nil {
		return errors.Wrap(err, errors.CodeParseFailed, "failed to decode configuration file "+path)
	}

	fc.apply(c)
	return nil
}

func decodeCUE(path string, data []byte, dst *fileConfig) error {
	value := cuecontext.New().CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return err
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return err
	}
	return value.Decode(dst)
}

func (fc fileConfig) apply(c *Config) {
	setString(&c.Bucket, fc.Bucket)
	setString(&c.Prefix, fc.Prefix)
	setString(&c.OutputDir, fc.OutputDir)
	setString(&c.CombinedFile, fc.CombinedFile)
	setString(&c.Backend, fc.Backend)
	setString(&c.Endpoint, fc.Endpoint)
	setString(&c.Region, fc.Region)
	setString(&c.AccessKey, fc.AccessKey)
	setString(&c.SecretKey, fc.SecretKey)
	setString(&c.Timezone, fc.Timezone)
	setString(&c.CredentialsSecret, fc.CredentialsSecret)
	setBool(&c.UseSSL, fc.UseSSL)
	setBool(&c.ForcePathStyle, fc.ForcePathStyle)
	setBool(&c.StrictMatch, fc.StrictMatch)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
