package config

import (
	"strconv"

	"github.com/glorpus-work/s3cache/pkg/actions"
	"github.com/glorpus-work/s3cache/pkg/errors"
)

// Action input names.
const (
	InputGitHubToken      = "githubToken"
	InputSaveOnFailure    = "saveOnFailure"
	InputBucket           = "bucket"
	InputKey              = "key"
	InputUseFallback      = "use-fallback"
	InputPath             = "path"
	InputEndpoint         = "endpoint"
	InputPort             = "port"
	InputInsecure         = "insecure"
	InputAccessKey        = "accessKey"
	InputSecretKey        = "secretKey"
	InputSessionToken     = "sessionToken"
	InputRegion           = "region"
	InputCompression      = "compression"
	InputJobName          = "job-name"
	InputRetryMaxAttempts = "retry-max-attempts"
)

// ApplyInputs overrides the configuration with every action input that is set.
func (c *Config) ApplyInputs() error {
	strs := map[string]*string{
		InputGitHubToken:  &c.GitHub.Token,
		InputBucket:       &c.Storage.Bucket,
		InputKey:          &c.Cache.Key,
		InputEndpoint:     &c.Storage.Endpoint,
		InputAccessKey:    &c.Storage.AccessKey,
		InputSecretKey:    &c.Storage.SecretKey,
		InputSessionToken: &c.Storage.SessionToken,
		InputRegion:       &c.Storage.Region,
		InputCompression:  &c.Cache.Compression,
		InputJobName:      &c.GitHub.JobName,
	}
	for name, dst := range strs {
		if v := actions.GetInput(name); v != "" {
			*dst = v
		}
	}

	if paths := actions.GetMultilineInput(InputPath); len(paths) > 0 {
		c.Cache.Paths = paths
	}

	v, set, err := actions.LookupBoolInput(InputSaveOnFailure)
	if err != nil {
		return err
	}
	if set {
		c.Cache.SaveOnFailure = &v
	}

	bools := map[string]*bool{
		InputUseFallback: &c.Cache.UseFallback,
		InputInsecure:    &c.Storage.Insecure,
	}
	for name, dst := range bools {
		v, set, err := actions.LookupBoolInput(name)
		if err != nil {
			return err
		}
		if set {
			*dst = v
		}
	}

	ints := map[string]*int{
		InputPort:             &c.Storage.Port,
		InputRetryMaxAttempts: &c.Storage.RetryMaxAttempts,
	}
	for name, dst := range ints {
		raw, ok := actions.LookupInput(name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return errors.Wrapf(errors.ErrConfigValidation, "input %s: %q is not a number", name, raw)
		}
		*dst = n
	}
	return nil
}

// ApplyEnvironment fills values derived from the workflow environment that
// were not configured explicitly.
func (c *Config) ApplyEnvironment(env actions.Environment) {
	if c.GitHub.JobName == "" {
		c.GitHub.JobName = env.Job
	}
	if c.Settings.TempDir == "" {
		c.Settings.TempDir = env.RunnerTemp
	}
	if env.Debug {
		c.Settings.LogLevel = "debug"
	}
}
