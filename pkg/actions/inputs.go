// Package actions reads the GitHub Actions runtime surface: action inputs,
// state saved by the restore step, and the workflow environment.
package actions

import (
	"os"
	"strings"

	"github.com/glorpus-work/s3cache/pkg/errors"
)

// InputKey returns the environment variable the runner uses for input name.
func InputKey(name string) string {
	return "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
}

// LookupInput returns the trimmed value of input name and whether it was set
// to a non-empty value.
func LookupInput(name string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(InputKey(name)))
	return v, v != ""
}

// GetInput returns the trimmed value of input name, or "" when unset.
func GetInput(name string) string {
	v, _ := LookupInput(name)
	return v
}

// LookupBoolInput parses a boolean input using the YAML 1.2 core schema
// spellings accepted by the runner. The second result reports whether the
// input was set at all.
func LookupBoolInput(name string) (bool, bool, error) {
	v, ok := LookupInput(name)
	if !ok {
		return false, false, nil
	}
	switch v {
	case "true", "True", "TRUE":
		return true, true, nil
	case "false", "False", "FALSE":
		return false, true, nil
	default:
		return false, true, errors.InvalidBoolInput(name, v)
	}
}

// GetMultilineInput splits input name on newlines, trimming each entry and
// dropping empty ones.
func GetMultilineInput(name string) []string {
	return SplitLines(os.Getenv(InputKey(name)))
}

// SplitLines splits s on newlines, trimming entries and dropping empty ones.
func SplitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
