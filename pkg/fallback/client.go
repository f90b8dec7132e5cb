// Package fallback saves caches to the GitHub Actions cache service when the
// object store cannot be used.
package fallback

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/glorpus-work/s3cache/internal/logger"
	"github.com/glorpus-work/s3cache/pkg/archive"
	"github.com/glorpus-work/s3cache/pkg/compression"
	"github.com/glorpus-work/s3cache/pkg/errors"
	"github.com/glorpus-work/s3cache/pkg/fsutil"
)

const (
	userAgent = "s3cache/1.0"

	// MaxKeyLength is the longest key the cache service accepts.
	MaxKeyLength = 512
	// MaxCacheSize is the largest archive the cache service accepts.
	MaxCacheSize int64 = 10 << 30

	versionSalt = "1.0"
)

// Options configure the cache service client.
type Options struct {
	ResultsURL      string // ACTIONS_RESULTS_URL
	RuntimeToken    string // ACTIONS_RUNTIME_TOKEN
	TempDir         string // base for the archive directory, empty for the OS default
	HTTPClient      *http.Client
	MaxRetries      int
	InitialInterval time.Duration
	GOOS            string // empty for runtime.GOOS
}

// PathResolver expands path patterns.
type PathResolver interface {
	Resolve(patterns []string) ([]string, error)
}

// CompressionNegotiator yields the compression method for the invocation.
type CompressionNegotiator interface {
	Negotiate(ctx context.Context) (compression.Method, error)
}

// ArchiveBuilder builds the archive uploaded to the cache service.
type ArchiveBuilder interface {
	Create(ctx context.Context, paths []string, method compression.Method, destDir string) (archive.Artifact, error)
}

// Client saves cache entries through the cache service API.
type Client struct {
	opts        Options
	http        *http.Client
	resolver    PathResolver
	compression CompressionNegotiator
	archiver    ArchiveBuilder
}

// New creates a Client.
func New(opts Options, resolver PathResolver, negotiator CompressionNegotiator, archiver ArchiveBuilder) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 10 * time.Minute}
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = time.Second
	}
	if opts.GOOS == "" {
		opts.GOOS = runtime.GOOS
	}
	return &Client{
		opts:        opts,
		http:        opts.HTTPClient,
		resolver:    resolver,
		compression: negotiator,
		archiver:    archiver,
	}
}

// Save archives the paths matched by patterns and stores them under key.
func (c *Client) Save(ctx context.Context, patterns []string, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if c.opts.ResultsURL == "" || c.opts.RuntimeToken == "" {
		return errors.Wrap(errors.ErrCacheServiceUnavailable, "ACTIONS_RESULTS_URL or ACTIONS_RUNTIME_TOKEN is not set")
	}

	method, err := c.compression.Negotiate(ctx)
	if err != nil {
		return err
	}
	paths, err := c.resolver.Resolve(patterns)
	if err != nil {
		return err
	}

	dir, cleanup, err := fsutil.CreateTempDir(c.opts.TempDir)
	if err != nil {
		return err
	}
	defer cleanup()

	artifact, err := c.archiver.Create(ctx, paths, method, dir)
	if err != nil {
		return err
	}
	if artifact.Size > MaxCacheSize {
		return errors.Wrapf(errors.ErrCacheTooLarge, "%d bytes, limit %d", artifact.Size, MaxCacheSize)
	}

	version := Version(patterns, method, c.opts.GOOS)
	logger.Debug("reserving cache entry", logger.Fields{"key": key, "version": version, "size": artifact.Size})

	var created createEntryResponse
	if err := c.call(ctx, "CreateCacheEntry", createEntryRequest{Key: key, Version: version}, &created); err != nil {
		return err
	}
	if !created.OK || created.SignedUploadURL == "" {
		return errors.Wrapf(errors.ErrCacheEntryConflict, "key %s", key)
	}

	if err := c.uploadBlob(ctx, created.SignedUploadURL, artifact.Path, artifact.Size); err != nil {
		return err
	}

	var finalized finalizeResponse
	req := finalizeRequest{Key: key, Version: version, SizeBytes: artifact.Size}
	if err := c.call(ctx, "FinalizeCacheEntryUpload", req, &finalized); err != nil {
		return err
	}
	if !finalized.OK {
		return errors.Wrapf(errors.ErrCacheServiceUnavailable, "finalize of key %s was rejected", key)
	}

	logger.Info("Cache saved with key: "+key, logger.Fields{"entry_id": finalized.EntryID.String(), "size": artifact.Size})
	return nil
}

// ValidateKey applies the cache service key rules.
func ValidateKey(key string) error {
	if key == "" {
		return errors.Wrap(errors.ErrInvalidCacheKey, "key is empty")
	}
	if len(key) > MaxKeyLength {
		return errors.Wrapf(errors.ErrInvalidCacheKey, "key %s cannot be larger than %d characters", key, MaxKeyLength)
	}
	if strings.Contains(key, ",") {
		return errors.Wrapf(errors.ErrInvalidCacheKey, "key %s cannot contain commas", key)
	}
	return nil
}

// Version identifies the cache content shape. Entries saved with different
// patterns, compression or OS family never collide.
func Version(patterns []string, method compression.Method, goos string) string {
	components := append([]string{}, patterns...)
	components = append(components, method.String())
	if goos == "windows" {
		components = append(components, "windows-only")
	}
	components = append(components, versionSalt)

	sum := sha256.Sum256([]byte(strings.Join(components, "|")))
	return hex.EncodeToString(sum[:])
}
