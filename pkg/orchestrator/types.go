//go:generate mockgen -destination=./mocks/orchestrator.go . JobOutcomeProbe,PathResolver,CompressionNegotiator,ArchiveBuilder,ObjectStore,FallbackCache

package orchestrator

import (
	"context"

	"github.com/glorpus-work/s3cache/pkg/archive"
	"github.com/glorpus-work/s3cache/pkg/compression"
	"github.com/glorpus-work/s3cache/pkg/jobstatus"
)

// JobOutcomeProbe reports whether the running job is failing.
type JobOutcomeProbe interface {
	Conclusion(ctx context.Context) (jobstatus.Conclusion, error)
}

// PathResolver expands cache path patterns into concrete paths.
type PathResolver interface {
	Resolve(patterns []string) ([]string, error)
}

// CompressionNegotiator picks the compression method for the invocation.
type CompressionNegotiator interface {
	Negotiate(ctx context.Context) (compression.Method, error)
}

// ArchiveBuilder is the subset of the archive manager used by the orchestrator.
type ArchiveBuilder interface {
	Create(ctx context.Context, paths []string, method compression.Method, destDir string) (archive.Artifact, error)
	List(ctx context.Context, artifactPath string, method compression.Method) ([]string, error)
}

// ObjectStore stores one file as one object.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, object, filePath string) error
}

// FallbackCache saves paths through the platform cache service.
type FallbackCache interface {
	Save(ctx context.Context, patterns []string, key string) error
}

// Outcome is the terminal state of one save invocation.
type Outcome string

const (
	SkippedJobFailed  Outcome = "skipped-job-failed"
	SkippedExactMatch Outcome = "skipped-exact-match"
	SavedPrimary      Outcome = "saved-primary"
	SavedFallback     Outcome = "saved-fallback"
	FailedContained   Outcome = "failed-contained"
)

func (o Outcome) String() string { return string(o) }

// Skipped reports whether the gate stopped the save.
func (o Outcome) Skipped() bool {
	return o == SkippedJobFailed || o == SkippedExactMatch
}

// Request describes one save.
type Request struct {
	Bucket           string
	Key              string
	Paths            []string // patterns as configured
	SaveOnFailure    bool
	RestoredKeyMatch bool
	UseFallback      bool
}

// Result is returned by Run. Err carries an error that escaped persistence;
// it is informational and never fails the job.
type Result struct {
	Outcome Outcome
	Err     error
}

// Event represents a simple progress notification.
type Event struct {
	Phase string // gating|resolving|building|uploading|fallback|done
	Msg   string
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}
