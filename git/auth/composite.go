package auth

import (
	"fmt"
	"path"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
)

type route struct {
	provider Provider
	patterns []string
}

// Composite tries providers in order and returns the first method found.
type Composite struct {
	routes          []route
	continueOnError bool
}

// NewComposite returns an empty composite that skips failing providers.
func NewComposite() *Composite {
	return &Composite{continueOnError: true}
}

// Add appends p. When patterns are given, p is only asked for remotes whose
// "protocol://host" form matches one of them, e.g. "https://*.github.com".
// A nil provider is ignored.
func (c *Composite) Add(p Provider, patterns ...string) *Composite {
	if p == nil {
		return c
	}
	c.routes = append(c.routes, route{provider: p, patterns: patterns})
	return c
}

// StopOnError makes the first provider error fatal.
func (c *Composite) StopOnError() *Composite {
	c.continueOnError = false
	return c
}

// Len returns the number of providers.
func (c *Composite) Len() int { return len(c.routes) }

// Method asks each matching provider in turn. With no providers, or when
// none has credentials, it returns a nil method.
//
//nolint:ireturn // go-git requires returning transport.AuthMethod interface
func (c *Composite) Method(remoteURL string) (transport.AuthMethod, error) {
	ep, err := endpoint(remoteURL)
	if err != nil {
		return nil, err
	}
	target := ep.Protocol + "://" + strings.ToLower(ep.Host)

	var errs []error
	for i, r := range c.routes {
		if !routeMatches(target, r.patterns) {
			continue
		}
		method, err := r.provider.Method(remoteURL)
		if err != nil {
			err = fmt.Errorf("provider %d: %w", i, err)
			if !c.continueOnError {
				return nil, err
			}
			errs = append(errs, err)
			continue
		}
		if method != nil {
			return method, nil
		}
	}

	if len(errs) > 0 {
		return nil, errors.Wrap(errors.Join(errs...), errors.CodeUnauthorized, "no provider could authenticate "+remoteURL)
	}
	return nil, nil
}

func routeMatches(target string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		p = strings.ToLower(p)
		if ok, _ := path.Match(p, target); ok {
			return true
		}
		if !strings.Contains(p, "://") {
			if _, host, found := strings.Cut(target, "://"); found && hostAllowed(host, []string{p}) {
				return true
			}
		}
	}
	return false
}
