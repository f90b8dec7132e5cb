// Package compression negotiates the archive codec once per invocation.
package compression

import (
	"context"
	"os/exec"
	"strings"
	"sync"

	"github.com/glorpus-work/s3cache/internal/logger"
	"github.com/glorpus-work/s3cache/pkg/errors"
	"github.com/hashicorp/go-version"
)

// Method is the negotiated archive compression.
type Method string

const (
	Gzip Method = "gzip"
	// ZstdWithoutLong is zstd with the encoder's default window, for hosts whose
	// zstd cannot decode long-distance matching archives.
	ZstdWithoutLong Method = "zstd-without-long"
	Zstd            Method = "zstd"
)

// Auto asks Negotiate to probe the host.
const Auto = "auto"

// Cache file names, one per codec family.
const (
	GzipFileName = "cache.tgz"
	ZstdFileName = "cache.tzst"
)

// CacheFileName returns the fixed object file name for m.
func (m Method) CacheFileName() string {
	if m == Gzip {
		return GzipFileName
	}
	return ZstdFileName
}

// IsZstd reports whether m is one of the zstd variants.
func (m Method) IsZstd() bool {
	return m == Zstd || m == ZstdWithoutLong
}

func (m Method) String() string {
	return string(m)
}

// ValidPreferences lists the accepted compression configuration values.
func ValidPreferences() []string {
	return []string{Auto, string(Zstd), string(ZstdWithoutLong), string(Gzip)}
}

// ParsePreference validates a configured compression value.
func ParsePreference(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Auto, nil
	}
	for _, v := range ValidPreferences() {
		if s == v {
			return s, nil
		}
	}
	return "", errors.InvalidCompressionWithDetails(s, ValidPreferences())
}

// Prober reports the version output of a host tool.
type Prober interface {
	ToolVersion(ctx context.Context, tool string, args ...string) (string, error)
}

// ExecProber runs tools from PATH.
type ExecProber struct{}

// ToolVersion runs tool with args and returns its trimmed combined output.
func (ExecProber) ToolVersion(ctx context.Context, tool string, args ...string) (string, error) {
	path, err := exec.LookPath(tool)
	if err != nil {
		return "", err
	}
	out, err := exec.CommandContext(ctx, path, args...).CombinedOutput()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Negotiator picks the Method once and returns the same answer afterwards.
type Negotiator struct {
	prober    Prober
	preferred string
	once      sync.Once
	method    Method
}

// NewNegotiator creates a Negotiator. preferred is a value accepted by
// ParsePreference; anything unknown behaves like Auto.
func NewNegotiator(prober Prober, preferred string) *Negotiator {
	if prober == nil {
		prober = ExecProber{}
	}
	return &Negotiator{prober: prober, preferred: preferred}
}

// Negotiate returns the method for this invocation.
func (n *Negotiator) Negotiate(ctx context.Context) (Method, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	n.once.Do(func() {
		n.method = n.negotiate(ctx)
	})
	return n.method, nil
}

func (n *Negotiator) negotiate(ctx context.Context) Method {
	switch Method(n.preferred) {
	case Zstd, ZstdWithoutLong, Gzip:
		return Method(n.preferred)
	}

	out, err := n.prober.ToolVersion(ctx, "zstd", "--quiet", "--version")
	if err != nil || strings.TrimSpace(out) == "" {
		logger.Debug("zstd not available, using gzip")
		return Gzip
	}
	return fromVersionOutput(out)
}

// fromVersionOutput maps `zstd --quiet --version` output to a Method. Any
// installed zstd gets ZstdWithoutLong, which is what the restore side looks
// entries up with; Zstd is only used when configured explicitly.
func fromVersionOutput(out string) Method {
	raw := strings.TrimPrefix(strings.Fields(out)[0], "v")
	if v, err := version.NewVersion(raw); err == nil {
		logger.Debug("zstd detected", logger.Fields{"version": v.String()})
	} else {
		logger.Debug("unrecognized zstd version output", logger.Fields{"output": out})
	}
	return ZstdWithoutLong
}
