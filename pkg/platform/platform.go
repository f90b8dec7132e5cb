// Package platform describes what the CI host the step runs on is able to do.
package platform

import (
	"net/url"
	"strings"
)

// DefaultServerURL is the server URL of github.com hosted workflows.
const DefaultServerURL = "https://github.com"

// Kind classifies the CI host.
type Kind string

const (
	// KindGitHub is github.com or a GitHub Enterprise Cloud data residency host (*.ghe.com).
	KindGitHub Kind = "github"
	// KindEnterpriseServer is a self-hosted GitHub Enterprise Server installation.
	KindEnterpriseServer Kind = "enterprise-server"
	// KindLocal is a local runner emulation (e.g. act) on localhost.
	KindLocal Kind = "local"
)

// Capabilities are the explicit platform features the orchestrator relies on.
type Capabilities struct {
	Kind                  Kind
	SupportsFallbackCache bool
}

// Detect classifies serverURL (usually GITHUB_SERVER_URL). An empty URL is
// treated as github.com.
func Detect(serverURL string) Capabilities {
	kind := classify(serverURL)
	return Capabilities{
		Kind:                  kind,
		SupportsFallbackCache: kind != KindEnterpriseServer,
	}
}

// WithFallbackOverride returns c with SupportsFallbackCache replaced when
// override is non-nil.
func (c Capabilities) WithFallbackOverride(override *bool) Capabilities {
	if override != nil {
		c.SupportsFallbackCache = *override
	}
	return c
}

// String returns a string representation of the capabilities
func (c Capabilities) String() string {
	if c.SupportsFallbackCache {
		return string(c.Kind) + "/fallback"
	}
	return string(c.Kind) + "/no-fallback"
}

func classify(serverURL string) Kind {
	if strings.TrimSpace(serverURL) == "" {
		serverURL = DefaultServerURL
	}
	u, err := url.Parse(serverURL)
	if err != nil || u.Hostname() == "" {
		return KindEnterpriseServer
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case host == "github.com":
		return KindGitHub
	case strings.HasSuffix(host, ".ghe.com"):
		return KindGitHub
	case host == "localhost" || host == "127.0.0.1":
		return KindLocal
	default:
		return KindEnterpriseServer
	}
}
