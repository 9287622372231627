package git

import (
	"context"
	"errors"

	"github.com/go-git/go-git/v5"
)

// Fetch updates refs and tags from remote. It supports pruning stale refs and
// shallow fetching when depth > 0. Returns ErrAlreadyUpToDate if there was
// nothing to fetch.
//
// Context timeout/cancellation is honored during the fetch operation.
func (r *Repo) Fetch(ctx context.Context, remote string, prune bool, depth int) error {
	if remote == "" {
		remote = DefaultRemoteName
	}
	if depth == 0 {
		depth = r.options.ShallowDepth
	}

	rem, err := r.repo.Remote(remote)
	if err != nil {
		return WrapErrorf(mapError(err), "remote %s", remote)
	}

	fetchOpts := &git.FetchOptions{
		RemoteName: remote,
		Prune:      prune,
		Depth:      depth,
		Tags:       git.AllTags,
	}
	if urls := rem.Config().URLs; len(urls) > 0 {
		if fetchOpts.Auth, err = resolveAuth(r.options.Auth, urls[0]); err != nil {
			return err
		}
	}

	err = mapError(r.repo.FetchContext(ctx, fetchOpts))
	if errors.Is(err, ErrAlreadyUpToDate) {
		return ErrAlreadyUpToDate
	}
	return WrapErrorf(err, "failed to fetch from %s", remote)
}
