// Package config holds the settings of one cache save. Values come from
// defaults, an optional YAML file, the action inputs and the workflow
// environment, in increasing order of precedence. CLI flags are applied last
// by the command layer.
package config

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/glorpus-work/s3cache/pkg/compression"
	"github.com/glorpus-work/s3cache/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config represents the save configuration.
type Config struct {
	Cache    Cache    `yaml:"cache"`
	Storage  Storage  `yaml:"storage"`
	GitHub   GitHub   `yaml:"github"`
	Settings Settings `yaml:"settings"`
}

// Cache describes what is saved and under which key.
type Cache struct {
	Key   string   `yaml:"key"`
	Paths []string `yaml:"paths"`

	// SaveOnFailure has no default; nil means it was never supplied.
	SaveOnFailure *bool  `yaml:"save_on_failure,omitempty"`
	UseFallback   bool   `yaml:"use_fallback"`
	Compression   string `yaml:"compression"` // auto, zstd, zstd-without-long, gzip

	// FallbackSupported overrides platform detection when set.
	FallbackSupported *bool `yaml:"fallback_supported,omitempty"`
}

// Storage configures the S3 compatible object store.
type Storage struct {
	Bucket           string `yaml:"bucket"`
	Endpoint         string `yaml:"endpoint,omitempty"`
	Port             int    `yaml:"port,omitempty"`
	Insecure         bool   `yaml:"insecure,omitempty"`
	AccessKey        string `yaml:"access_key,omitempty"`
	SecretKey        string `yaml:"secret_key,omitempty"`
	SessionToken     string `yaml:"session_token,omitempty"`
	Region           string `yaml:"region"`
	RetryMaxAttempts int    `yaml:"retry_max_attempts"`
}

// GitHub configures the job status lookup.
type GitHub struct {
	Token   string `yaml:"token,omitempty"`
	JobName string `yaml:"job_name,omitempty"`
}

// Settings represents general execution settings.
type Settings struct {
	TempDir      string        `yaml:"temp_dir,omitempty"`
	HTTPTimeout  time.Duration `yaml:"http_timeout"`
	LogLevel     string        `yaml:"log_level"`     // debug, info, warn, error
	OutputFormat string        `yaml:"output_format"` // actions, text, json
}

// Default configuration values.
const (
	DefaultRegion           = "us-east-1"
	DefaultRetryMaxAttempts = 3
	MaxRetryAttempts        = 10
	DefaultHTTPTimeout      = 5 * time.Minute
)

// DefaultConfig returns a configuration with the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		Cache: Cache{
			UseFallback: true,
			Compression: compression.Auto,
		},
		Storage: Storage{
			Region:           DefaultRegion,
			RetryMaxAttempts: DefaultRetryMaxAttempts,
		},
		Settings: Settings{
			HTTPTimeout:  DefaultHTTPTimeout,
			LogLevel:     "info",
			OutputFormat: "actions",
		},
	}
}

// LoadConfig loads configuration from a file on top of the defaults. A file
// that does not exist yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader on top of the
// defaults. The result is not validated; call Validate once every source has
// been applied.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}
	return cfg, nil
}

// SaveOnFailure returns the configured policy, false when unset.
func (c *Config) SaveOnFailure() bool {
	return c.Cache.SaveOnFailure != nil && *c.Cache.SaveOnFailure
}

// Validate checks that the configuration is complete.
func (c *Config) Validate() error {
	if c.Cache.SaveOnFailure == nil {
		return errors.MissingInput(InputSaveOnFailure)
	}
	if !*c.Cache.SaveOnFailure && c.GitHub.Token == "" {
		return errors.MissingInput(InputGitHubToken)
	}
	if c.Storage.Bucket == "" {
		return errors.MissingInput(InputBucket)
	}
	if c.Cache.Key == "" {
		return errors.MissingInput(InputKey)
	}
	if len(c.Cache.Paths) == 0 {
		return errors.MissingInput(InputPath)
	}

	pref, err := compression.ParsePreference(c.Cache.Compression)
	if err != nil {
		return err
	}
	c.Cache.Compression = pref

	if c.Storage.Port < 0 || c.Storage.Port > 65535 {
		return errors.Wrapf(errors.ErrConfigValidation, "port %d out of range", c.Storage.Port)
	}
	if c.Storage.RetryMaxAttempts < 1 || c.Storage.RetryMaxAttempts > MaxRetryAttempts {
		return errors.Wrapf(errors.ErrConfigValidation, "retry max attempts must be between 1 and %d, got %d",
			MaxRetryAttempts, c.Storage.RetryMaxAttempts)
	}
	if c.Storage.Region == "" {
		c.Storage.Region = DefaultRegion
	}
	return nil
}

// ToYAML renders the configuration with secrets redacted.
func (c *Config) ToYAML() (string, error) {
	redacted := *c
	redact(&redacted.GitHub.Token)
	redact(&redacted.Storage.SecretKey)
	redact(&redacted.Storage.SessionToken)

	data, err := yaml.Marshal(&redacted)
	if err != nil {
		return "", errors.Wrap(err, "failed to render config")
	}
	return string(data), nil
}

func redact(s *string) {
	if *s != "" {
		*s = "***"
	}
}
