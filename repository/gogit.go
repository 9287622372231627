package repository

import (
	"context"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/git"
)

// GoGitTransport implements Transport with go-git, keeping bare mirrors on a
// billy-backed native filesystem.
type GoGitTransport struct {
	fs        fs.Filesystem
	auth      git.AuthProvider
	cacheSize int
}

// GoGitOption configures a GoGitTransport.
type GoGitOption func(*GoGitTransport)

// WithAuth sets the credential provider used for clone and fetch.
func WithAuth(p git.AuthProvider) GoGitOption {
	return func(t *GoGitTransport) { t.auth = p }
}

// WithStorerCacheSize sets the object cache size of opened mirrors.
func WithStorerCacheSize(n int) GoGitOption {
	return func(t *GoGitTransport) { t.cacheSize = n }
}

// NewGoGitTransport returns a transport storing mirrors on fs.
func NewGoGitTransport(fsys fs.Filesystem, opts ...GoGitOption) *GoGitTransport {
	t := &GoGitTransport{fs: fsys}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *GoGitTransport) options(localPath string) *git.Options {
	return &git.Options{
		FS:              t.fs,
		Workdir:         localPath,
		Mirror:          true,
		Auth:            t.auth,
		StorerCacheSize: t.cacheSize,
	}
}

func (t *GoGitTransport) open(ctx context.Context, localPath string) (*git.Repo, error) {
	repo, err := git.Open(ctx, t.options(localPath))
	if err != nil {
		return nil, classify(err, "open mirror "+localPath)
	}
	return repo, nil
}

// Clone implements Transport.
func (t *GoGitTransport) Clone(ctx context.Context, remoteURL, localPath string) error {
	_, err := git.Clone(ctx, remoteURL, t.options(localPath))
	return classify(err, "clone "+remoteURL)
}

// Fetch implements Transport.
func (t *GoGitTransport) Fetch(ctx context.Context, remoteURL, localPath string) error {
	repo, err := t.open(ctx, localPath)
	if err != nil {
		return err
	}
	if err := repointOrigin(ctx, repo, remoteURL); err != nil {
		return classify(err, "repoint origin of "+localPath)
	}
	err = repo.Fetch(ctx, git.DefaultRemoteName, true, 0)
	if errors.Is(err, git.ErrAlreadyUpToDate) {
		return nil
	}
	return classify(err, "fetch "+localPath)
}

// ListTags implements Transport.
func (t *GoGitTransport) ListTags(ctx context.Context, localPath string) ([]string, error) {
	repo, err := t.open(ctx, localPath)
	if err != nil {
		return nil, err
	}
	tags, err := repo.Tags(ctx)
	return tags, classify(err, "list tags of "+localPath)
}

// ListBranches implements Transport.
func (t *GoGitTransport) ListBranches(ctx context.Context, localPath string) ([]string, error) {
	repo, err := t.open(ctx, localPath)
	if err != nil {
		return nil, err
	}
	branches, err := repo.Refs(ctx, git.RefBranch, "")
	return branches, classify(err, "list branches of "+localPath)
}

// repointOrigin makes origin fetch from remoteURL. An empty remoteURL keeps
// whatever the mirror was cloned from.
func repointOrigin(ctx context.Context, repo *git.Repo, remoteURL string) error {
	if remoteURL == "" {
		return nil
	}
	remotes, err := repo.Remotes(ctx)
	if err != nil {
		return err
	}
	for _, r := range remotes {
		if r.Name == git.DefaultRemoteName && len(r.URLs) > 0 && r.URLs[0] == remoteURL {
			return nil
		}
	}
	return repo.SetRemote(ctx, git.DefaultRemoteName, remoteURL)
}

// classify attaches an error code to a git facade error so the
// Synchronizer can decide whether to retry.
func classify(err error, op string) error {
	if err == nil {
		return nil
	}

	code := errors.CodeNetwork
	switch {
	case errors.Is(err, context.Canceled):
		code = errors.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		code = errors.CodeTimeout
	case errors.Is(err, git.ErrAuthRequired), errors.Is(err, git.ErrAuthFailed):
		code = errors.CodeUnauthorized
	case errors.Is(err, git.ErrRepositoryMissing), errors.Is(err, git.ErrResolveFailed):
		code = errors.CodeNotFound
	case errors.Is(err, git.ErrInvalidRef):
		code = errors.CodeInvalidInput
	}
	return errors.Wrap(err, code, op)
}
