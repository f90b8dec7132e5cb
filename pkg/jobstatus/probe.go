// Package jobstatus determines whether the running workflow job is failing.
package jobstatus

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/glorpus-work/s3cache/internal/logger"
	"github.com/glorpus-work/s3cache/pkg/errors"
	"github.com/google/go-github/v66/github"
)

// Conclusion is the gating signal derived from the job.
type Conclusion string

const (
	Success Conclusion = "success"
	Failure Conclusion = "failure"
	Other   Conclusion = "other"
)

const defaultAPIURL = "https://api.github.com"

const jobsPerPage = 100

// Options scope the lookup to one job of one workflow run.
type Options struct {
	Token      string
	Owner      string
	Repo       string
	RunID      int64
	RunAttempt int64 // 0 means latest attempt
	JobName    string
	RunnerName string
	APIURL     string // empty means api.github.com
	HTTPClient *http.Client
}

// Probe queries the Actions REST API for the running job.
type Probe struct {
	client *github.Client
	opts   Options
}

// New creates a Probe.
func New(opts Options) (*Probe, error) {
	if opts.Owner == "" || opts.Repo == "" || opts.RunID <= 0 {
		return nil, errors.Wrapf(errors.ErrRunScopeUnknown, "repository %q run %d", opts.Owner+"/"+opts.Repo, opts.RunID)
	}

	client := github.NewClient(opts.HTTPClient)
	if opts.Token != "" {
		client = client.WithAuthToken(opts.Token)
	}
	if opts.APIURL != "" && strings.TrimSuffix(opts.APIURL, "/") != defaultAPIURL {
		base, err := url.Parse(strings.TrimSuffix(opts.APIURL, "/") + "/")
		if err != nil {
			return nil, errors.Wrapf(err, "invalid API URL %s", opts.APIURL)
		}
		client.BaseURL = base
	}

	return &Probe{client: client, opts: opts}, nil
}

// Conclusion looks up the running job and derives its conclusion.
func (p *Probe) Conclusion(ctx context.Context) (Conclusion, error) {
	jobs, err := p.listJobs(ctx)
	if err != nil {
		return "", err
	}

	job, err := p.currentJob(jobs)
	if err != nil {
		return "", err
	}

	c := conclusionOf(job)
	logger.Debug("job status", logger.Fields{
		"job_id":     job.GetID(),
		"name":       job.GetName(),
		"status":     job.GetStatus(),
		"conclusion": string(c),
	})
	return c, nil
}

func (p *Probe) listJobs(ctx context.Context) ([]*github.WorkflowJob, error) {
	var all []*github.WorkflowJob
	page := 1
	for page != 0 {
		var (
			jobs *github.Jobs
			resp *github.Response
			err  error
		)
		listOpts := github.ListOptions{PerPage: jobsPerPage, Page: page}
		if p.opts.RunAttempt > 0 {
			jobs, resp, err = p.client.Actions.ListWorkflowJobsAttempt(ctx, p.opts.Owner, p.opts.Repo, p.opts.RunID, p.opts.RunAttempt, &listOpts)
		} else {
			jobs, resp, err = p.client.Actions.ListWorkflowJobs(ctx, p.opts.Owner, p.opts.Repo, p.opts.RunID,
				&github.ListWorkflowJobsOptions{Filter: "latest", ListOptions: listOpts})
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list jobs for run %d", p.opts.RunID)
		}
		all = append(all, jobs.Jobs...)
		page = resp.NextPage
	}
	return all, nil
}

// currentJob selects the running job. The runner name identifies it uniquely
// among in-progress jobs; the job name is used when no runner matches. Zero or
// several candidates make the lookup inconclusive.
func (p *Probe) currentJob(jobs []*github.WorkflowJob) (*github.WorkflowJob, error) {
	if p.opts.RunnerName != "" {
		if job, n := pick(jobs, func(j *github.WorkflowJob) bool {
			return j.GetRunnerName() == p.opts.RunnerName && j.GetStatus() == "in_progress"
		}); n == 1 {
			return job, nil
		}
	}

	if p.opts.JobName != "" {
		job, n := pick(jobs, func(j *github.WorkflowJob) bool {
			return j.GetName() == p.opts.JobName
		})
		if n == 1 {
			return job, nil
		}
		if n > 1 {
			return nil, errors.Wrapf(errors.ErrJobNotFound, "%d jobs named %q", n, p.opts.JobName)
		}
	}

	return nil, errors.Wrapf(errors.ErrJobNotFound, "run %d job %q runner %q", p.opts.RunID, p.opts.JobName, p.opts.RunnerName)
}

func pick(jobs []*github.WorkflowJob, match func(*github.WorkflowJob) bool) (*github.WorkflowJob, int) {
	var found *github.WorkflowJob
	n := 0
	for _, j := range jobs {
		if match(j) {
			found = j
			n++
		}
	}
	return found, n
}

// conclusionOf maps a job to a Conclusion. A job that is still running (the
// normal case for a post step) is failing once any of its finished steps
// failed.
func conclusionOf(job *github.WorkflowJob) Conclusion {
	if c := job.GetConclusion(); c != "" {
		return mapConclusion(c)
	}
	for _, step := range job.Steps {
		if mapConclusion(step.GetConclusion()) == Failure {
			return Failure
		}
	}
	return Success
}

func mapConclusion(c string) Conclusion {
	switch c {
	case "success":
		return Success
	case "failure", "cancelled", "timed_out", "startup_failure":
		return Failure
	case "":
		return ""
	default:
		return Other
	}
}
