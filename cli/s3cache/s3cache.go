package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/glorpus-work/s3cache/internal/cli"
	"github.com/glorpus-work/s3cache/internal/logger"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	logFormat  string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("s3cache failed", logger.Fields{"error": err.Error()})
		cancel()
		os.Exit(1)
	}

	cancel()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "s3cache",
		Short: "Save CI caches to S3 compatible object storage",
		Long: `s3cache saves build caches at the end of a CI job:
- archives cache paths with zstd or gzip
- uploads them to an S3 compatible bucket under the cache key
- falls back to the GitHub Actions cache when the upload fails`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (actions, text, json)")

	// Set up CLI pkg variables
	cli.ConfigPath = &configPath
	cli.Verbose = &verbose
	cli.LogFormat = &logFormat

	cmd.AddCommand(
		cli.NewSaveCmd(),
		cli.NewVersionCmd(),
	)

	return cmd
}
