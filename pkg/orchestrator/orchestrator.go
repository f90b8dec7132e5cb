package orchestrator

import (
	"context"
	"fmt"
	"path"

	"github.com/glorpus-work/s3cache/internal/logger"
	"github.com/glorpus-work/s3cache/pkg/compression"
	"github.com/glorpus-work/s3cache/pkg/errors"
	"github.com/glorpus-work/s3cache/pkg/fsutil"
	"github.com/glorpus-work/s3cache/pkg/platform"
)

// Orchestrator ties the gate, archive builder and stores together for one save.
type Orchestrator struct {
	Gate         Gate
	Resolver     PathResolver
	Compression  CompressionNegotiator
	Archiver     ArchiveBuilder
	Store        ObjectStore
	Fallback     FallbackCache
	Capabilities platform.Capabilities
	TempDir      string // base for the archive directory, empty for the OS default
	Verbose      bool   // list archive entries after building
	Hooks        Hooks  // Hooks for progress and event notifications
}

// ObjectName is the object the archive for key is stored under. The same key
// and method always produce the same name, so a save replaces the previous one.
func ObjectName(key string, method compression.Method) string {
	return path.Join(key, method.CacheFileName())
}

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

// Run performs a complete save. It never returns an error: anything that
// escapes Persist, including a panic, is reported in Result.Err with outcome
// FailedContained.
func (o *Orchestrator) Run(ctx context.Context, req Request) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Outcome: FailedContained, Err: fmt.Errorf("unexpected failure: %v", r)}
		}
		emit(o.Hooks, Event{Phase: "done", Msg: res.Outcome.String()})
		logger.Debug("save finished", logger.Fields{"outcome": res.Outcome.String()})
	}()

	emit(o.Hooks, Event{Phase: "gating", Msg: req.Key})
	proceed, outcome := o.Gate.ShouldProceed(ctx, req.SaveOnFailure, req.RestoredKeyMatch)
	if !proceed {
		return Result{Outcome: outcome}
	}

	outcome, err := o.Persist(ctx, req)
	if err != nil {
		return Result{Outcome: FailedContained, Err: err}
	}
	return Result{Outcome: outcome}
}

// Persist saves to the object store and, when that fails and the request
// allows it, to the fallback cache. Primary failures are logged and contained.
// A fallback failure is returned.
func (o *Orchestrator) Persist(ctx context.Context, req Request) (Outcome, error) {
	err := o.savePrimary(ctx, req)
	if err == nil {
		return SavedPrimary, nil
	}
	logger.Warn("Save s3 cache failed", logger.Fields{"error": err.Error()})

	if !req.UseFallback {
		logger.Debug("skipped fallback cache")
		return FailedContained, nil
	}
	if !o.Capabilities.SupportsFallbackCache {
		logger.Warn(errors.ErrFallbackUnsupported.Error(), logger.Fields{"platform": o.Capabilities.String()})
		return FailedContained, nil
	}
	if o.Fallback == nil {
		return FailedContained, errors.ErrFallbackNotConfigured
	}

	emit(o.Hooks, Event{Phase: "fallback", Msg: req.Key})
	logger.Infof("Saving cache %s using fallback", req.Key)
	if err := o.Fallback.Save(ctx, req.Paths, req.Key); err != nil {
		return FailedContained, errors.Wrap(err, "fallback cache save failed")
	}
	logger.Success("Saved cache using fallback", logger.Fields{"key": req.Key})
	return SavedFallback, nil
}

// savePrimary builds one archive and uploads it. The archive directory is
// removed before returning.
func (o *Orchestrator) savePrimary(ctx context.Context, req Request) error {
	if o.Resolver == nil || o.Compression == nil || o.Archiver == nil || o.Store == nil {
		return fmt.Errorf("primary cache store is not configured")
	}

	emit(o.Hooks, Event{Phase: "resolving", Msg: req.Key})
	method, err := o.Compression.Negotiate(ctx)
	if err != nil {
		return err
	}
	paths, err := o.Resolver.Resolve(req.Paths)
	if err != nil {
		return err
	}
	logger.Debug("cache paths", logger.Fields{"paths": paths, "compression": method.String()})

	dir, cleanup, err := fsutil.CreateTempDir(o.TempDir)
	if err != nil {
		return err
	}
	defer cleanup()

	emit(o.Hooks, Event{Phase: "building", Msg: method.String()})
	artifact, err := o.Archiver.Create(ctx, paths, method, dir)
	if err != nil {
		return err
	}
	logger.Debug("archive created", logger.Fields{"path": artifact.Path, "size": artifact.Size})

	if o.Verbose {
		entries, err := o.Archiver.List(ctx, artifact.Path, method)
		if err != nil {
			logger.Debug("could not list archive", logger.Fields{"error": err.Error()})
		} else {
			for _, e := range entries {
				logger.Debugf("archive entry: %s", e)
			}
		}
	}

	object := ObjectName(req.Key, method)
	emit(o.Hooks, Event{Phase: "uploading", Msg: object})
	logger.Info("Uploading tar to s3", logger.Fields{"bucket": req.Bucket, "object": object})
	if err := o.Store.Upload(ctx, req.Bucket, object, artifact.Path); err != nil {
		return err
	}
	logger.Success("Cache saved to s3 successfully", logger.Fields{"bucket": req.Bucket, "object": object})
	return nil
}
