package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	fsb "github.com/input-output-hk/catalyst-forge-libs/fs/billy"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/git"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/git/auth"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/model"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/repository"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/timeline"
)

// Transports.
const (
	TransportGoGit = "gogit"
	TransportCLI   = "cli"
)

// DefaultWorkspace returns the XDG cache location of the mirrors.
func DefaultWorkspace() string {
	return filepath.Join(xdg.CacheHome, "catalyst-forge", "release-trains")
}

// Settings holds the resolved synchronization settings.
type Settings struct {
	RemoteBase   string
	Remotes      map[string]string
	Workspace    string
	Concurrency  int
	FetchTimeout time.Duration
	Retry        repository.RetryPolicy
	Transport    string
	Auth         AuthSection
}

func newSettings(g GitSection) (Settings, error) {
	s := Settings{
		RemoteBase:   g.RemoteBase,
		Remotes:      g.Remotes,
		Workspace:    g.Workspace,
		Concurrency:  g.Concurrency,
		Transport:    g.Transport,
		FetchTimeout: repository.DefaultFetchTimeout,
		Retry:        repository.DefaultRetryPolicy(),
		Auth:         g.Auth,
	}
	if s.Workspace == "" {
		s.Workspace = DefaultWorkspace()
	}
	if s.Concurrency == 0 {
		s.Concurrency = repository.DefaultConcurrency
	}
	if s.Transport == "" {
		s.Transport = TransportGoGit
	}

	var err error
	if s.FetchTimeout, err = duration("git.fetchTimeout", g.FetchTimeout, s.FetchTimeout); err != nil {
		return Settings{}, err
	}
	if g.Retry.MaxAttempts > 0 {
		s.Retry.MaxAttempts = g.Retry.MaxAttempts
	}
	if s.Retry.BaseDelay, err = duration("git.retry.baseDelay", g.Retry.BaseDelay, s.Retry.BaseDelay); err != nil {
		return Settings{}, err
	}
	if s.Retry.MaxDelay, err = duration("git.retry.maxDelay", g.Retry.MaxDelay, s.Retry.MaxDelay); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func duration(field, raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err == nil && d < 0 {
		err = errors.New(errors.CodeInvalidInput, "duration cannot be negative")
	}
	if err != nil {
		return 0, errors.WrapWithContext(err, errors.CodeInvalidConfig, "invalid duration",
			map[string]interface{}{"field": field, "value": raw})
	}
	return d, nil
}

// RemoteResolver returns the resolver of project remote URLs: per-project
// overrides first, then RemoteBase.
func (s Settings) RemoteResolver() repository.RemoteResolver {
	var fallback repository.RemoteResolver
	if s.RemoteBase != "" {
		fallback = repository.RemoteBase(s.RemoteBase)
	}
	return repository.RemoteMap(s.Remotes, fallback)
}

// RemoteURL returns the remote URL of p.
func (s Settings) RemoteURL(p *model.Project) (string, error) {
	return s.RemoteResolver()(p)
}

// AuthProvider returns the credential providers described by the auth
// section. HTTPS tokens are tried before SSH credentials.
func (s Settings) AuthProvider() (git.AuthProvider, error) {
	c := auth.NewComposite()
	if s.Auth.TokenEnv != "" {
		if p := auth.NewHTTPSFromEnv(s.Auth.Username, s.Auth.TokenEnv); p != nil {
			c.Add(p, "https://*")
		}
	}

	var ssh *auth.SSH
	switch {
	case s.Auth.SSHKeyFile != "":
		ssh = auth.NewSSHKeyFile(os.ExpandEnv(s.Auth.SSHKeyFile), "")
	case s.Auth.SSHAgent:
		ssh = auth.NewSSHAgent()
	}
	if ssh != nil {
		if len(s.Auth.KnownHosts) > 0 {
			withHosts, err := ssh.WithKnownHosts(s.Auth.KnownHosts...)
			if err != nil {
				return nil, err
			}
			ssh = withHosts
		}
		c.Add(ssh, "ssh://*")
	}
	return c, nil
}

// Filesystem returns the workspace filesystem.
func (s Settings) Filesystem() fs.Filesystem {
	return fsb.NewOSFS(s.Workspace)
}

// NewTransport returns the configured transport storing mirrors on fsys.
func (s Settings) NewTransport(fsys fs.Filesystem) (repository.Transport, error) {
	switch s.Transport {
	case TransportGoGit:
		provider, err := s.AuthProvider()
		if err != nil {
			return nil, err
		}
		return repository.NewGoGitTransport(fsys, repository.WithAuth(provider)), nil
	case TransportCLI:
		return repository.NewCLITransport(s.Workspace, nil), nil
	default:
		return nil, errors.Newf(errors.CodeInvalidConfig, "unknown transport %q", s.Transport)
	}
}

// Options returns the synchronizer options derived from the settings.
func (s Settings) Options() []repository.Option {
	return []repository.Option{
		repository.WithConcurrency(s.Concurrency),
		repository.WithFetchTimeout(s.FetchTimeout),
		repository.WithRetry(s.Retry),
	}
}

// Synchronizer wires a repository.Synchronizer for the configuration. The
// extra options are applied after the configured ones.
func (c *Config) Synchronizer(opts ...repository.Option) (*repository.Synchronizer, error) {
	resolver, err := timeline.NewResolver(c.Registry)
	if err != nil {
		return nil, err
	}
	fs := c.Settings.Filesystem()
	transport, err := c.Settings.NewTransport(fs)
	if err != nil {
		return nil, err
	}
	return repository.New(fs, transport, c.Settings.RemoteResolver(), resolver,
		append(c.Settings.Options(), opts...)...)
}
