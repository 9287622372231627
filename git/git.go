package git

import (
	"context"
	"sort"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/internal/fsbridge"
)

const (
	// DefaultStorerCacheSize is the default size for the LRU object cache.
	DefaultStorerCacheSize = 1000

	// DefaultWorkdir is the default repository directory within FS.
	DefaultWorkdir = "."

	// DefaultRemoteName is the default remote name used for operations.
	DefaultRemoteName = "origin"
)

// Options configures where a repository lives and how it talks to remotes.
type Options struct {
	// FS is the REQUIRED native filesystem holding the repository. It must be
	// backed by go-billy (fs/billy).
	FS fs.Filesystem

	// Workdir is the repository directory within FS. Defaults to ".".
	Workdir string

	// Bare stores the repository without a worktree.
	Bare bool

	// Mirror clones every ref of the remote one to one. Implies Bare.
	Mirror bool

	// StorerCacheSize sets the LRU object cache entries.
	// Defaults to DefaultStorerCacheSize.
	StorerCacheSize int

	// Auth resolves per-URL credentials. Nil means anonymous access.
	Auth AuthProvider

	// ShallowDepth limits clone and fetch history when > 0.
	ShallowDepth int
}

// Validate checks that the Options are properly configured.
func (o *Options) Validate() error {
	if o.FS == nil {
		return WrapError(ErrInvalidRef, "FS is required")
	}
	if o.StorerCacheSize < 0 {
		return WrapError(ErrInvalidRef, "StorerCacheSize cannot be negative")
	}
	if o.ShallowDepth < 0 {
		return WrapError(ErrInvalidRef, "ShallowDepth cannot be negative")
	}
	return nil
}

func (o *Options) applyDefaults() {
	if o.Workdir == "" {
		o.Workdir = DefaultWorkdir
	}
	if o.StorerCacheSize == 0 {
		o.StorerCacheSize = DefaultStorerCacheSize
	}
	if o.Mirror {
		o.Bare = true
	}
}

func prepare(opts *Options) (fsbridge.Layout, error) {
	if opts == nil {
		return fsbridge.Layout{}, WrapError(ErrInvalidRef, "options are required")
	}
	if err := opts.Validate(); err != nil {
		return fsbridge.Layout{}, WrapError(err, "invalid options")
	}
	opts.applyDefaults()

	raw, err := fsbridge.ToBillyFilesystem(opts.FS)
	if err != nil {
		return fsbridge.Layout{}, WrapError(err, "unsupported filesystem")
	}
	layout, err := fsbridge.Scope(raw, opts.Workdir, opts.Bare, opts.StorerCacheSize)
	if err != nil {
		return fsbridge.Layout{}, WrapErrorf(err, "failed to prepare %q", opts.Workdir)
	}
	return layout, nil
}

func newRepo(repo *git.Repository, opts *Options) *Repo {
	return &Repo{repo: repo, options: *opts}
}

// Init creates a new repository.
func Init(ctx context.Context, opts *Options) (*Repo, error) {
	layout, err := prepare(opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, mapError(err)
	}

	repo, err := git.Init(layout.Storage, layout.Worktree)
	if err != nil {
		return nil, WrapError(mapError(err), "failed to initialize repository")
	}
	return newRepo(repo, opts), nil
}

// Open opens an existing repository. It returns ErrRepositoryMissing when
// nothing is stored at the configured location.
func Open(ctx context.Context, opts *Options) (*Repo, error) {
	layout, err := prepare(opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, mapError(err)
	}

	repo, err := git.Open(layout.Storage, layout.Worktree)
	if err != nil {
		return nil, WrapErrorf(mapError(err), "failed to open repository at %q", opts.Workdir)
	}
	return newRepo(repo, opts), nil
}

// Clone clones remoteURL with all of its tags.
//
// Context timeout/cancellation is honored during the clone operation.
func Clone(ctx context.Context, remoteURL string, opts *Options) (*Repo, error) {
	if remoteURL == "" {
		return nil, WrapError(ErrInvalidRef, "remote URL cannot be empty")
	}
	layout, err := prepare(opts)
	if err != nil {
		return nil, err
	}

	cloneOpts := &git.CloneOptions{
		URL:          remoteURL,
		RemoteName:   DefaultRemoteName,
		Depth:        opts.ShallowDepth,
		SingleBranch: opts.ShallowDepth > 0,
		Mirror:       opts.Mirror,
		Tags:         git.AllTags,
		NoCheckout:   opts.Bare,
	}
	if cloneOpts.Auth, err = resolveAuth(opts.Auth, remoteURL); err != nil {
		return nil, err
	}

	repo, err := git.CloneContext(ctx, layout.Storage, layout.Worktree, cloneOpts)
	if err != nil {
		return nil, WrapErrorf(mapError(err), "failed to clone %s", remoteURL)
	}
	return newRepo(repo, opts), nil
}

//nolint:ireturn // go-git requires the transport.AuthMethod interface
func resolveAuth(p AuthProvider, remoteURL string) (transport.AuthMethod, error) {
	if p == nil {
		return nil, nil
	}
	method, err := p.Method(remoteURL)
	if err != nil {
		return nil, WrapError(ErrAuthRequired, err.Error())
	}
	return method, nil
}

// AuthProvider resolves authentication methods for git operations.
// git/auth providers satisfy it.
type AuthProvider interface {
	// Method returns the transport.AuthMethod for remoteURL, or nil for
	// anonymous access.
	Method(remoteURL string) (transport.AuthMethod, error)
}

// Remote is a configured remote of a repository.
type Remote struct {
	Name string
	URLs []string
}

// Repo is an opened repository.
type Repo struct {
	repo    *git.Repository
	options Options
}

// IsBare reports whether the repository has no worktree.
func (r *Repo) IsBare() bool { return r.options.Bare }

// Remotes returns the configured remotes sorted by name.
func (r *Repo) Remotes(ctx context.Context) ([]Remote, error) {
	if err := ctx.Err(); err != nil {
		return nil, mapError(err)
	}
	cfg, err := r.repo.Config()
	if err != nil {
		return nil, WrapError(err, "failed to read repository config")
	}
	out := make([]Remote, 0, len(cfg.Remotes))
	for _, name := range sortedKeys(cfg.Remotes) {
		rc := cfg.Remotes[name]
		out = append(out, Remote{Name: rc.Name, URLs: append([]string(nil), rc.URLs...)})
	}
	return out, nil
}

// SetRemote points remote name at url, creating the remote when it is
// missing. An existing remote keeps its fetch refspecs, so a mirror stays a
// mirror. Only the local repository config is written.
func (r *Repo) SetRemote(ctx context.Context, name, url string) error {
	if name == "" || url == "" {
		return WrapError(ErrInvalidRef, "remote name and URL are required")
	}
	if err := ctx.Err(); err != nil {
		return mapError(err)
	}

	cfg, err := r.repo.Config()
	if err != nil {
		return WrapError(err, "failed to read repository config")
	}
	if rc, ok := cfg.Remotes[name]; ok {
		rc.URLs = []string{url}
	} else {
		cfg.Remotes[name] = &gitconfig.RemoteConfig{Name: name, URLs: []string{url}}
	}
	if err := cfg.Validate(); err != nil {
		return WrapErrorf(err, "invalid remote %s", name)
	}
	return WrapErrorf(r.repo.Storer.SetConfig(cfg), "failed to update remote %s", name)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
