package cli

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/s3cache/internal/logger"
	"github.com/glorpus-work/s3cache/pkg/actions"
	"github.com/glorpus-work/s3cache/pkg/archive"
	"github.com/glorpus-work/s3cache/pkg/cachepath"
	"github.com/glorpus-work/s3cache/pkg/compression"
	"github.com/glorpus-work/s3cache/pkg/config"
	"github.com/glorpus-work/s3cache/pkg/fallback"
	"github.com/glorpus-work/s3cache/pkg/jobstatus"
	"github.com/glorpus-work/s3cache/pkg/objectstore"
	"github.com/glorpus-work/s3cache/pkg/orchestrator"
	"github.com/glorpus-work/s3cache/pkg/platform"
)

type saveFlags struct {
	bucket           string
	key              string
	paths            []string
	saveOnFailure    bool
	useFallback      bool
	endpoint         string
	port             int
	insecure         bool
	region           string
	compression      string
	jobName          string
	retryMaxAttempts int
}

// NewSaveCmd creates the save command.
func NewSaveCmd() *cobra.Command {
	f := &saveFlags{}
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save cache paths to object storage",
		Long: `Archive the configured paths and upload them to an S3 compatible bucket
under the cache key. When the upload fails the GitHub Actions cache service can
be used instead. Save failures are reported as warnings and never fail the job.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			runSave(cmd, f)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.bucket, "bucket", "", "bucket to upload the archive to")
	flags.StringVar(&f.key, "key", "", "cache key")
	flags.StringSliceVar(&f.paths, "path", nil, "path pattern to cache (repeatable)")
	flags.BoolVar(&f.saveOnFailure, "save-on-failure", false, "save even when the job is failing")
	flags.BoolVar(&f.useFallback, "use-fallback", true, "use the GitHub Actions cache when the upload fails")
	flags.StringVar(&f.endpoint, "endpoint", "", "object storage endpoint")
	flags.IntVar(&f.port, "port", 0, "object storage port")
	flags.BoolVar(&f.insecure, "insecure", false, "use plain HTTP for the endpoint")
	flags.StringVar(&f.region, "region", "", "object storage region")
	flags.StringVar(&f.compression, "compression", "", "compression: auto, zstd, zstd-without-long, gzip")
	flags.StringVar(&f.jobName, "job-name", "", "name of the running job (default $GITHUB_JOB)")
	flags.IntVar(&f.retryMaxAttempts, "retry-max-attempts", 0, "attempts per object storage request")

	return cmd
}

// apply copies the flags the user set onto cfg.
func (f *saveFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("bucket") {
		cfg.Storage.Bucket = f.bucket
	}
	if changed("key") {
		cfg.Cache.Key = f.key
	}
	if changed("path") {
		cfg.Cache.Paths = f.paths
	}
	if changed("save-on-failure") {
		v := f.saveOnFailure
		cfg.Cache.SaveOnFailure = &v
	}
	if changed("use-fallback") {
		cfg.Cache.UseFallback = f.useFallback
	}
	if changed("endpoint") {
		cfg.Storage.Endpoint = f.endpoint
	}
	if changed("port") {
		cfg.Storage.Port = f.port
	}
	if changed("insecure") {
		cfg.Storage.Insecure = f.insecure
	}
	if changed("region") {
		cfg.Storage.Region = f.region
	}
	if changed("compression") {
		cfg.Cache.Compression = f.compression
	}
	if changed("job-name") {
		cfg.GitHub.JobName = f.jobName
	}
	if changed("retry-max-attempts") {
		cfg.Storage.RetryMaxAttempts = f.retryMaxAttempts
	}
}

func runSave(cmd *cobra.Command, f *saveFlags) orchestrator.Result {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	env := actions.ReadEnvironment()
	cfg, err := loadConfig(env)
	if err == nil {
		f.apply(cmd, cfg)
		err = cfg.Validate()
	}
	initLogging(cfg)
	if err != nil {
		logger.Warn("warning: "+err.Error(), logger.Fields{"outcome": orchestrator.FailedContained.String()})
		return orchestrator.Result{Outcome: orchestrator.FailedContained, Err: err}
	}

	logger.Debug("workflow environment", snapshotFields())
	if rendered, err := cfg.ToYAML(); err == nil {
		logger.Debug("effective configuration\n" + rendered)
	}

	orch, err := buildOrchestrator(ctx, cfg, env)
	if err != nil {
		logger.Warn("warning: "+err.Error(), logger.Fields{"outcome": orchestrator.FailedContained.String()})
		return orchestrator.Result{Outcome: orchestrator.FailedContained, Err: err}
	}

	res := orch.Run(ctx, orchestrator.Request{
		Bucket:           cfg.Storage.Bucket,
		Key:              cfg.Cache.Key,
		Paths:            cfg.Cache.Paths,
		SaveOnFailure:    cfg.SaveOnFailure(),
		RestoredKeyMatch: actions.RestoredKeyMatch(cfg.Cache.Key),
		UseFallback:      cfg.Cache.UseFallback,
	})

	fields := logger.Fields{"outcome": res.Outcome.String(), "key": cfg.Cache.Key}
	if res.Err != nil {
		logger.Warn("warning: "+res.Err.Error(), fields)
	} else {
		logger.Info("cache save finished", fields)
	}
	return res
}

// buildOrchestrator wires the production components for cfg.
func buildOrchestrator(ctx context.Context, cfg *config.Config, env actions.Environment) (*orchestrator.Orchestrator, error) {
	resolver, err := cachepath.NewResolver(env.Workspace)
	if err != nil {
		return nil, err
	}
	negotiator := compression.NewNegotiator(compression.ExecProber{}, cfg.Cache.Compression)
	archiver := archive.NewManager(resolver.Workspace())
	httpClient := &http.Client{Timeout: cfg.Settings.HTTPTimeout}

	var store orchestrator.ObjectStore
	s3, err := objectstore.New(ctx, objectstore.Options{
		Endpoint:         cfg.Storage.Endpoint,
		Port:             cfg.Storage.Port,
		Insecure:         cfg.Storage.Insecure,
		AccessKey:        cfg.Storage.AccessKey,
		SecretKey:        cfg.Storage.SecretKey,
		SessionToken:     cfg.Storage.SessionToken,
		Region:           cfg.Storage.Region,
		RetryMaxAttempts: cfg.Storage.RetryMaxAttempts,
	})
	if err != nil {
		store = objectstore.Unavailable{Err: err}
	} else {
		store = s3
	}

	gate := orchestrator.Gate{}
	if !cfg.SaveOnFailure() {
		owner, repo := env.OwnerRepo()
		probe, err := jobstatus.New(jobstatus.Options{
			Token:      cfg.GitHub.Token,
			Owner:      owner,
			Repo:       repo,
			RunID:      env.RunID,
			RunAttempt: env.RunAttempt,
			JobName:    cfg.GitHub.JobName,
			RunnerName: env.RunnerName,
			APIURL:     env.APIURL,
			HTTPClient: httpClient,
		})
		if err != nil {
			logger.Warn("Job status cannot be checked", logger.Fields{"error": err.Error()})
		} else {
			gate.Probe = probe
		}
	}

	fb := fallback.New(fallback.Options{
		ResultsURL:   env.ResultsURL,
		RuntimeToken: env.RuntimeToken,
		TempDir:      cfg.Settings.TempDir,
	}, resolver, negotiator, archiver)

	return &orchestrator.Orchestrator{
		Gate:         gate,
		Resolver:     resolver,
		Compression:  negotiator,
		Archiver:     archiver,
		Store:        store,
		Fallback:     fb,
		Capabilities: platform.Detect(env.ServerURL).WithFallbackOverride(cfg.Cache.FallbackSupported),
		TempDir:      cfg.Settings.TempDir,
		Verbose:      debugEnabled(cfg),
	}, nil
}

func snapshotFields() logger.Fields {
	fields := logger.Fields{}
	for k, v := range actions.Snapshot() {
		fields[k] = v
	}
	return fields
}
