package auth

import (
	"os"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
)

// HTTPS supplies basic credentials to https:// remotes.
type HTTPS struct {
	auth         *http.BasicAuth
	allowedHosts []string
}

// NewHTTPS returns a provider for username and password. A lone token may be
// passed as the password with an empty username.
func NewHTTPS(username, password string) *HTTPS {
	if username == "" && password != "" {
		username = "x-access-token"
	}
	return &HTTPS{auth: &http.BasicAuth{Username: username, Password: password}}
}

// NewHTTPSToken returns a provider for a personal access token.
func NewHTTPSToken(token string) *HTTPS {
	return NewHTTPS("token", token)
}

// NewHTTPSFromEnv reads the token from the environment variable env. It
// returns nil when the variable is unset or empty.
func NewHTTPSFromEnv(username, env string) *HTTPS {
	token := os.Getenv(env)
	if env == "" || token == "" {
		return nil
	}
	if username == "" {
		return NewHTTPSToken(token)
	}
	return NewHTTPS(username, token)
}

// WithAllowedHosts restricts the provider to hosts matching patterns.
func (p *HTTPS) WithAllowedHosts(patterns ...string) *HTTPS {
	p.allowedHosts = patterns
	return p
}

// Method returns the basic credentials for https remotes on an allowed host.
//
//nolint:ireturn // go-git requires returning transport.AuthMethod interface
func (p *HTTPS) Method(remoteURL string) (transport.AuthMethod, error) {
	ep, err := endpoint(remoteURL)
	if err != nil {
		return nil, err
	}
	if ep.Protocol != "https" {
		return nil, errors.Newf(errors.CodeInvalidInput, "https provider cannot serve %s remotes", ep.Protocol)
	}
	if !hostAllowed(ep.Host, p.allowedHosts) {
		return nil, nil
	}
	return p.auth, nil
}
