// Package auth resolves credentials for git remotes.
//
// Providers hand go-git transport.AuthMethod values to the git facade. A
// provider that has nothing for a remote returns a nil method and no error,
// which lets callers fall back to anonymous access.
package auth

import (
	"path"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
)

// Provider resolves the authentication method for a remote URL.
type Provider interface {
	Method(remoteURL string) (transport.AuthMethod, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(remoteURL string) (transport.AuthMethod, error)

// Method calls f.
//
//nolint:ireturn // go-git requires returning transport.AuthMethod interface
func (f ProviderFunc) Method(remoteURL string) (transport.AuthMethod, error) {
	return f(remoteURL)
}

// Anonymous never supplies credentials.
var Anonymous Provider = ProviderFunc(func(string) (transport.AuthMethod, error) { return nil, nil })

// endpoint parses remoteURL the way go-git does, which also accepts
// scp-like addresses (git@github.com:org/repo.git) and local paths.
func endpoint(remoteURL string) (*transport.Endpoint, error) {
	if strings.TrimSpace(remoteURL) == "" {
		return nil, errors.New(errors.CodeInvalidInput, "remote URL cannot be empty")
	}
	ep, err := transport.NewEndpoint(remoteURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "invalid remote URL")
	}
	return ep, nil
}

// hostAllowed reports whether host matches one of patterns. An empty list
// allows every host. Patterns use path.Match syntax, and "*.example.com"
// also matches the bare "example.com".
func hostAllowed(host string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	host = strings.ToLower(host)
	for _, p := range patterns {
		p = strings.ToLower(p)
		if ok, _ := path.Match(p, host); ok {
			return true
		}
		if strings.HasPrefix(p, "*.") && host == p[2:] {
			return true
		}
	}
	return false
}
