// Package errors defines the sentinel errors shared by the s3cache packages and
// small helpers for wrapping them with context.
package errors

import "fmt"

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath    = fmt.Errorf("config file path cannot be empty")
	ErrConfigParse        = fmt.Errorf("failed to parse config")
	ErrConfigValidation   = fmt.Errorf("invalid configuration")
	ErrMissingInput       = fmt.Errorf("input required and not supplied")
	ErrInvalidBoolInput   = fmt.Errorf("input does not meet YAML 1.2 \"Core Schema\" specification")
	ErrInvalidCompression = fmt.Errorf("invalid compression method")

	// Path and archive errors.
	ErrNoPathsResolved = fmt.Errorf("path validation error: no cache paths exist")
	ErrInvalidPattern  = fmt.Errorf("invalid path pattern")
	ErrArchiveCreate   = fmt.Errorf("failed to create archive")

	// Job status errors.
	ErrRunScopeUnknown = fmt.Errorf("workflow run scope is unknown")
	ErrJobNotFound     = fmt.Errorf("current job not found in workflow run")

	// Persistence errors.
	ErrUploadFailed            = fmt.Errorf("upload to object storage failed")
	ErrFallbackNotConfigured   = fmt.Errorf("fallback cache is not configured")
	ErrFallbackUnsupported     = fmt.Errorf("cache fallback is not supported on GitHub Enterprise Server")
	ErrInvalidCacheKey         = fmt.Errorf("invalid cache key")
	ErrCacheEntryConflict      = fmt.Errorf("unable to reserve cache entry, another job may be creating it")
	ErrCacheTooLarge           = fmt.Errorf("cache size exceeds the cache service limit")
	ErrCacheServiceUnavailable = fmt.Errorf("cache service is not available")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// MissingInput reports a required input that was not supplied.
func MissingInput(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingInput, name)
}

// InvalidBoolInput reports a boolean input with a value outside the accepted set.
func InvalidBoolInput(name, value string) error {
	return fmt.Errorf("%w: input %s has value %q, support boolean input list: true | True | TRUE | false | False | FALSE",
		ErrInvalidBoolInput, name, value)
}

// InvalidCompressionWithDetails reports an unknown compression value together with the accepted ones.
func InvalidCompressionWithDetails(value string, valid []string) error {
	return fmt.Errorf("%w: %q, must be one of: %v", ErrInvalidCompression, value, valid)
}
