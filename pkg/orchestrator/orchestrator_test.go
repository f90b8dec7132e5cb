package orchestrator

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/glorpus-work/s3cache/internal/logger"
	"github.com/glorpus-work/s3cache/pkg/archive"
	"github.com/glorpus-work/s3cache/pkg/compression"
	"github.com/glorpus-work/s3cache/pkg/errors"
	"github.com/glorpus-work/s3cache/pkg/jobstatus"
	ocmocks "github.com/glorpus-work/s3cache/pkg/orchestrator/mocks"
	"github.com/glorpus-work/s3cache/pkg/platform"
)

type fixture struct {
	probe    *ocmocks.MockJobOutcomeProbe
	resolver *ocmocks.MockPathResolver
	negot    *ocmocks.MockCompressionNegotiator
	archiver *ocmocks.MockArchiveBuilder
	store    *ocmocks.MockObjectStore
	fallback *ocmocks.MockFallbackCache
	orch     *Orchestrator
}

func newFixture(t *testing.T, caps platform.Capabilities) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		probe:    ocmocks.NewMockJobOutcomeProbe(ctrl),
		resolver: ocmocks.NewMockPathResolver(ctrl),
		negot:    ocmocks.NewMockCompressionNegotiator(ctrl),
		archiver: ocmocks.NewMockArchiveBuilder(ctrl),
		store:    ocmocks.NewMockObjectStore(ctrl),
		fallback: ocmocks.NewMockFallbackCache(ctrl),
	}
	f.orch = &Orchestrator{
		Gate:         Gate{Probe: f.probe},
		Resolver:     f.resolver,
		Compression:  f.negot,
		Archiver:     f.archiver,
		Store:        f.store,
		Fallback:     f.fallback,
		Capabilities: caps,
		TempDir:      t.TempDir(),
	}
	return f
}

var (
	standard   = platform.Capabilities{Kind: platform.KindGitHub, SupportsFallbackCache: true}
	enterprise = platform.Capabilities{Kind: platform.KindEnterpriseServer}
)

// expectBuild sets up a successful resolve, negotiate and archive build.
func (f *fixture) expectBuild(patterns, paths []string) {
	f.negot.EXPECT().Negotiate(gomock.Any()).Return(compression.Zstd, nil)
	f.resolver.EXPECT().Resolve(patterns).Return(paths, nil)
	f.archiver.EXPECT().Create(gomock.Any(), paths, compression.Zstd, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ []string, m compression.Method, dir string) (archive.Artifact, error) {
			p := filepath.Join(dir, m.CacheFileName())
			if err := os.WriteFile(p, []byte("archive"), 0o600); err != nil {
				return archive.Artifact{}, err
			}
			return archive.Artifact{Path: p, Method: m, Size: 7}, nil
		})
}

// captureLog routes log output into a buffer for the rest of the test.
func captureLog(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	logger.SetTestOutput(buf)
	logger.InitLogger(level, logger.FormatText)
	t.Cleanup(func() {
		logger.UnsetTestOutput()
		logger.InitLogger("info", logger.FormatText)
	})
	return buf
}

func request() Request {
	return Request{Bucket: "ci-cache", Key: "linux-deps", Paths: []string{"node_modules"}, SaveOnFailure: true, UseFallback: true}
}

func TestRun_SaveOnFailureNeverProbes(t *testing.T) {
	f := newFixture(t, standard)
	f.expectBuild([]string{"node_modules"}, []string{"node_modules"})
	f.store.EXPECT().Upload(gomock.Any(), "ci-cache", "linux-deps/cache.tzst", gomock.Any()).Return(nil)

	res := f.orch.Run(context.Background(), request())

	assert.Equal(t, SavedPrimary, res.Outcome)
	assert.NoError(t, res.Err)
}

func TestRun_ExactMatchSkipsWithoutProbeOrBuild(t *testing.T) {
	f := newFixture(t, standard)
	req := request()
	req.RestoredKeyMatch = true

	res := f.orch.Run(context.Background(), req)

	assert.Equal(t, SkippedExactMatch, res.Outcome)
	assert.True(t, res.Outcome.Skipped())
	assert.NoError(t, res.Err)
}

func TestRun_ExactMatchCheckedAfterJobStatus(t *testing.T) {
	f := newFixture(t, standard)
	f.probe.EXPECT().Conclusion(gomock.Any()).Return(jobstatus.Success, nil)
	req := request()
	req.SaveOnFailure = false
	req.RestoredKeyMatch = true

	res := f.orch.Run(context.Background(), req)
	assert.Equal(t, SkippedExactMatch, res.Outcome)
}

func TestRun_JobFailedSkips(t *testing.T) {
	for _, c := range []jobstatus.Conclusion{jobstatus.Failure, jobstatus.Other} {
		t.Run(string(c), func(t *testing.T) {
			f := newFixture(t, standard)
			f.probe.EXPECT().Conclusion(gomock.Any()).Return(c, nil).Times(1)
			req := request()
			req.SaveOnFailure = false

			res := f.orch.Run(context.Background(), req)
			assert.Equal(t, SkippedJobFailed, res.Outcome)
		})
	}
}

func TestRun_ProbeErrorFailsOpen(t *testing.T) {
	f := newFixture(t, standard)
	f.probe.EXPECT().Conclusion(gomock.Any()).Return(jobstatus.Conclusion(""), errors.ErrJobNotFound)
	f.expectBuild([]string{"node_modules"}, []string{"node_modules"})
	f.store.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	req := request()
	req.SaveOnFailure = false

	logs := captureLog(t, "info")
	res := f.orch.Run(context.Background(), req)
	assert.Equal(t, SavedPrimary, res.Outcome)
	assert.Contains(t, logs.String(), "Could not determine job status, saving anyway: current job not found")
}

func TestRun_NilProbeFailsOpen(t *testing.T) {
	f := newFixture(t, standard)
	f.orch.Gate = Gate{}
	f.expectBuild([]string{"node_modules"}, []string{"node_modules"})
	f.store.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	req := request()
	req.SaveOnFailure = false

	assert.Equal(t, SavedPrimary, f.orch.Run(context.Background(), req).Outcome)
}

func TestRun_UploadFailsWithoutFallback(t *testing.T) {
	f := newFixture(t, standard)
	f.expectBuild([]string{"node_modules"}, []string{"node_modules"})
	f.store.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.ErrUploadFailed)
	req := request()
	req.UseFallback = false

	res := f.orch.Run(context.Background(), req)

	assert.Equal(t, FailedContained, res.Outcome)
	assert.NoError(t, res.Err)
}

func TestRun_FallbackOnStandardPlatform(t *testing.T) {
	f := newFixture(t, standard)
	f.expectBuild([]string{"node_modules"}, []string{"node_modules"})
	f.store.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("access denied"))
	f.fallback.EXPECT().Save(gomock.Any(), []string{"node_modules"}, "linux-deps").Return(nil).Times(1)

	res := f.orch.Run(context.Background(), request())

	assert.Equal(t, SavedFallback, res.Outcome)
	assert.NoError(t, res.Err)
}

func TestRun_FallbackUnsupportedOnEnterprise(t *testing.T) {
	f := newFixture(t, enterprise)
	f.expectBuild([]string{"node_modules"}, []string{"node_modules"})
	f.store.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(fmt.Errorf("access denied"))

	logs := captureLog(t, "info")
	res := f.orch.Run(context.Background(), request())

	assert.Equal(t, FailedContained, res.Outcome)
	assert.NoError(t, res.Err)
	assert.Contains(t, logs.String(), errors.ErrFallbackUnsupported.Error())
	assert.Contains(t, logs.String(), "platform=enterprise-server/no-fallback")
}

func TestRun_FallbackErrorIsReportedNotRaised(t *testing.T) {
	f := newFixture(t, standard)
	f.expectBuild([]string{"node_modules"}, []string{"node_modules"})
	f.store.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.ErrUploadFailed)
	f.fallback.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.ErrCacheEntryConflict)

	res := f.orch.Run(context.Background(), request())

	assert.Equal(t, FailedContained, res.Outcome)
	assert.ErrorIs(t, res.Err, errors.ErrCacheEntryConflict)
}

func TestPersist_FallbackErrorPropagates(t *testing.T) {
	f := newFixture(t, standard)
	f.expectBuild([]string{"node_modules"}, []string{"node_modules"})
	f.store.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.ErrUploadFailed)
	f.fallback.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.ErrCacheServiceUnavailable)

	_, err := f.orch.Persist(context.Background(), request())
	assert.ErrorIs(t, err, errors.ErrCacheServiceUnavailable)
}

func TestRun_BuildFailureTriggersFallbackWithoutUpload(t *testing.T) {
	f := newFixture(t, standard)
	f.negot.EXPECT().Negotiate(gomock.Any()).Return(compression.Gzip, nil)
	f.resolver.EXPECT().Resolve(gomock.Any()).Return([]string{"dist"}, nil)
	f.archiver.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(archive.Artifact{}, errors.ErrArchiveCreate)
	f.fallback.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	res := f.orch.Run(context.Background(), request())
	assert.Equal(t, SavedFallback, res.Outcome)
}

func TestRun_ResolveFailureIsContained(t *testing.T) {
	f := newFixture(t, standard)
	f.negot.EXPECT().Negotiate(gomock.Any()).Return(compression.Gzip, nil)
	f.resolver.EXPECT().Resolve(gomock.Any()).Return(nil, errors.ErrNoPathsResolved)
	req := request()
	req.UseFallback = false

	res := f.orch.Run(context.Background(), req)
	assert.Equal(t, FailedContained, res.Outcome)
	assert.NoError(t, res.Err)
}

func TestRun_FallbackNotConfigured(t *testing.T) {
	f := newFixture(t, standard)
	f.orch.Fallback = nil
	f.expectBuild([]string{"node_modules"}, []string{"node_modules"})
	f.store.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.ErrUploadFailed)

	res := f.orch.Run(context.Background(), request())
	assert.Equal(t, FailedContained, res.Outcome)
	assert.ErrorIs(t, res.Err, errors.ErrFallbackNotConfigured)
}

func TestRun_RecoversPanic(t *testing.T) {
	f := newFixture(t, standard)
	f.expectBuild([]string{"node_modules"}, []string{"node_modules"})
	f.store.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, string, string, string) error { panic("boom") })

	var res Result
	require.NotPanics(t, func() { res = f.orch.Run(context.Background(), request()) })
	assert.Equal(t, FailedContained, res.Outcome)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "boom")
}

func TestRun_SameKeyTargetsSameObject(t *testing.T) {
	f := newFixture(t, standard)
	var objects []string
	for i := 0; i < 2; i++ {
		f.expectBuild([]string{"node_modules"}, []string{"node_modules"})
	}
	f.store.EXPECT().Upload(gomock.Any(), "ci-cache", gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _, object, _ string) error {
			objects = append(objects, object)
			return nil
		}).Times(2)

	f.orch.Run(context.Background(), request())
	f.orch.Run(context.Background(), request())

	require.Len(t, objects, 2)
	assert.Equal(t, objects[0], objects[1])
	assert.Equal(t, "linux-deps/cache.tzst", objects[0])
}

func TestRun_RemovesArchiveDirectory(t *testing.T) {
	f := newFixture(t, standard)
	f.expectBuild([]string{"node_modules"}, []string{"node_modules"})
	var uploaded string
	f.store.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _, _, filePath string) error {
			uploaded = filePath
			_, err := os.Stat(filePath)
			return err
		})

	res := f.orch.Run(context.Background(), request())
	require.Equal(t, SavedPrimary, res.Outcome)

	_, err := os.Stat(filepath.Dir(uploaded))
	assert.True(t, os.IsNotExist(err), "archive directory should be removed")
}

func TestRun_VerboseListsArchive(t *testing.T) {
	f := newFixture(t, standard)
	f.orch.Verbose = true
	f.expectBuild([]string{"node_modules"}, []string{"node_modules"})
	f.archiver.EXPECT().List(gomock.Any(), gomock.Any(), compression.Zstd).Return([]string{"node_modules/a.js"}, nil)
	f.store.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	logs := captureLog(t, "debug")
	assert.Equal(t, SavedPrimary, f.orch.Run(context.Background(), request()).Outcome)
	assert.Contains(t, logs.String(), "archive entry: node_modules/a.js")
}

func TestRun_EmitsPhases(t *testing.T) {
	f := newFixture(t, standard)
	f.expectBuild([]string{"node_modules"}, []string{"node_modules"})
	f.store.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.ErrUploadFailed)
	f.fallback.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	var phases []string
	f.orch.Hooks = Hooks{OnEvent: func(e Event) { phases = append(phases, e.Phase) }}
	f.orch.Run(context.Background(), request())

	assert.Equal(t, []string{"gating", "resolving", "building", "uploading", "fallback", "done"}, phases)
}

func TestObjectName(t *testing.T) {
	assert.Equal(t, "key/cache.tgz", ObjectName("key", compression.Gzip))
	assert.Equal(t, "key/cache.tzst", ObjectName("key", compression.ZstdWithoutLong))
	assert.Equal(t, "a/b/cache.tzst", ObjectName("a/b", compression.Zstd))
}
