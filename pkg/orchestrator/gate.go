package orchestrator

import (
	"context"

	"github.com/glorpus-work/s3cache/internal/logger"
	"github.com/glorpus-work/s3cache/pkg/jobstatus"
)

// Gate decides whether a save should happen at all.
type Gate struct {
	Probe JobOutcomeProbe
}

// ShouldProceed applies the job outcome check and then the exact key match
// check. The probe is only consulted when saveOnFailure is false. A probe
// that cannot determine the outcome does not block the save.
func (g Gate) ShouldProceed(ctx context.Context, saveOnFailure, restoredKeyMatch bool) (bool, Outcome) {
	if !saveOnFailure {
		if g.jobFailing(ctx) {
			logger.Info("Job failed, not saving cache")
			return false, SkippedJobFailed
		}
	}

	if restoredKeyMatch {
		logger.Info("Cache was exact key match, not saving")
		return false, SkippedExactMatch
	}

	return true, ""
}

func (g Gate) jobFailing(ctx context.Context) bool {
	if g.Probe == nil {
		logger.Warn("Job status probe is not configured, assuming the job succeeded")
		return false
	}

	conclusion, err := g.Probe.Conclusion(ctx)
	if err != nil {
		logger.Warnf("Could not determine job status, saving anyway: %v", err)
		return false
	}
	return conclusion != jobstatus.Success
}
