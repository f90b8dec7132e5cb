// Package cachepath expands configured cache path patterns into concrete paths.
package cachepath

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/glorpus-work/s3cache/pkg/errors"
	"github.com/glorpus-work/s3cache/pkg/fsutil"
)

// Resolver expands patterns relative to a workspace directory.
type Resolver struct {
	workspace string
}

// NewResolver creates a Resolver rooted at workspace. An empty workspace means
// the current working directory.
func NewResolver(workspace string) (*Resolver, error) {
	if workspace == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "failed to determine working directory")
		}
		workspace = wd
	}
	abs, err := filepath.Abs(workspace)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid workspace %s", workspace)
	}
	return &Resolver{workspace: abs}, nil
}

// Workspace returns the absolute root patterns are resolved against.
func (r *Resolver) Workspace() string {
	return r.workspace
}

// Resolve expands patterns in order. Each pattern contributes its matches in
// lexical order; a path already contributed by an earlier pattern is not
// repeated. A pattern prefixed with "!" removes matching paths collected so
// far. Results inside the workspace are relative to it with forward slashes,
// anything else stays absolute.
func (r *Resolver) Resolve(patterns []string) ([]string, error) {
	var collected []string
	seen := make(map[string]bool)

	for _, raw := range patterns {
		pattern := strings.TrimSpace(raw)
		if pattern == "" || strings.HasPrefix(pattern, "#") {
			continue
		}

		exclude := strings.HasPrefix(pattern, "!")
		if exclude {
			pattern = strings.TrimSpace(pattern[1:])
		}

		abs, err := r.absPattern(pattern)
		if err != nil {
			return nil, err
		}

		if exclude {
			collected = r.exclude(collected, seen, abs)
			continue
		}

		matches, err := doublestar.FilepathGlob(abs)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidPattern, "%s: %v", raw, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				collected = append(collected, m)
			}
		}
	}

	if len(collected) == 0 {
		return nil, errors.ErrNoPathsResolved
	}

	out := make([]string, len(collected))
	for i, p := range collected {
		out[i] = fsutil.RelativeTo(r.workspace, p)
	}
	return out, nil
}

func (r *Resolver) absPattern(pattern string) (string, error) {
	expanded, err := fsutil.ExpandHome(pattern)
	if err != nil {
		return "", errors.Wrapf(err, "failed to expand %s", pattern)
	}
	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(r.workspace, expanded)
	}
	if !doublestar.ValidatePathPattern(expanded) {
		return "", errors.Wrapf(errors.ErrInvalidPattern, "%s", pattern)
	}
	return expanded, nil
}

func (r *Resolver) exclude(paths []string, seen map[string]bool, pattern string) []string {
	kept := paths[:0]
	for _, p := range paths {
		if ok, _ := doublestar.PathMatch(pattern, p); ok {
			delete(seen, p)
			continue
		}
		kept = append(kept, p)
	}
	return kept
}
