package actions

import (
	"os"
	"strconv"
	"strings"
)

// snapshotKeys are the workflow variables safe to print in diagnostics.
// Tokens, credentials and INPUT_* values are never part of a snapshot.
var snapshotKeys = []string{
	"GITHUB_ACTIONS",
	"GITHUB_REPOSITORY",
	"GITHUB_RUN_ID",
	"GITHUB_RUN_ATTEMPT",
	"GITHUB_JOB",
	"GITHUB_WORKFLOW",
	"GITHUB_REF",
	"GITHUB_SHA",
	"GITHUB_SERVER_URL",
	"GITHUB_API_URL",
	"GITHUB_WORKSPACE",
	"RUNNER_NAME",
	"RUNNER_OS",
	"RUNNER_ARCH",
	"RUNNER_TEMP",
	"RUNNER_DEBUG",
}

// Environment is the subset of the workflow environment the save step consumes.
type Environment struct {
	Repository   string
	RunID        int64
	RunAttempt   int64
	Job          string
	RunnerName   string
	ServerURL    string
	APIURL       string
	Workspace    string
	RunnerTemp   string
	Debug        bool
	RuntimeToken string
	ResultsURL   string
}

// ReadEnvironment reads Environment from the process environment. Unparsable
// numeric values are left at zero.
func ReadEnvironment() Environment {
	runID, _ := strconv.ParseInt(os.Getenv("GITHUB_RUN_ID"), 10, 64)
	attempt, _ := strconv.ParseInt(os.Getenv("GITHUB_RUN_ATTEMPT"), 10, 64)
	return Environment{
		Repository:   os.Getenv("GITHUB_REPOSITORY"),
		RunID:        runID,
		RunAttempt:   attempt,
		Job:          os.Getenv("GITHUB_JOB"),
		RunnerName:   os.Getenv("RUNNER_NAME"),
		ServerURL:    os.Getenv("GITHUB_SERVER_URL"),
		APIURL:       os.Getenv("GITHUB_API_URL"),
		Workspace:    os.Getenv("GITHUB_WORKSPACE"),
		RunnerTemp:   os.Getenv("RUNNER_TEMP"),
		Debug:        os.Getenv("RUNNER_DEBUG") == "1",
		RuntimeToken: os.Getenv("ACTIONS_RUNTIME_TOKEN"),
		ResultsURL:   os.Getenv("ACTIONS_RESULTS_URL"),
	}
}

// OwnerRepo splits Repository into owner and name.
func (e Environment) OwnerRepo() (string, string) {
	owner, repo, ok := strings.Cut(e.Repository, "/")
	if !ok {
		return "", ""
	}
	return owner, repo
}

// Snapshot returns the allow-listed, non-secret workflow variables that are set.
func Snapshot() map[string]string {
	out := make(map[string]string, len(snapshotKeys))
	for _, k := range snapshotKeys {
		if v, ok := os.LookupEnv(k); ok {
			out[k] = v
		}
	}
	return out
}
