// Package git keeps local mirrors of release repositories in sync.
//
// The facade covers the read side of git only: cloning, fetching, and
// listing tags, branches and remotes. Besides fetched refs, the only state it
// writes is a remote's URL (Repo.SetRemote). It never commits, tags or pushes.
//
// # Basic Usage
//
// Clone a bare mirror onto an on-disk native filesystem:
//
//	import (
//	    "context"
//
//	    fsb "github.com/input-output-hk/catalyst-forge-libs/fs/billy"
//	    "github.com/input-output-hk/catalyst-forge-libs/releasetrain/git"
//	)
//
//	repo, err := git.Clone(ctx, "https://github.com/spring-projects/spring-data-commons.git", &git.Options{
//	    FS:      fsb.NewOSFS("/var/cache/release-trains"),
//	    Workdir: "spring-data-commons",
//	    Mirror:  true,
//	})
//
// Reopen and refresh it later:
//
//	repo, err := git.Open(ctx, &git.Options{FS: fs, Workdir: "spring-data-commons", Bare: true})
//	if err := repo.Fetch(ctx, "", true, 0); err != nil && !errors.Is(err, git.ErrAlreadyUpToDate) {
//	    return err
//	}
//
// # Tags and Branches
//
//	tags, err := repo.Tags(ctx, git.TagPatternFilter("3.2.*"))
//	branches, err := repo.Branches(ctx)
//
// # Authentication
//
// Options.Auth accepts any AuthProvider; the git/auth package supplies HTTPS
// token, SSH key and agent providers and a composite that routes by URL.
//
// # Errors
//
// Failures map onto sentinel errors (ErrAuthRequired, ErrAuthFailed,
// ErrRepositoryMissing, ErrResolveFailed, ErrAlreadyUpToDate) that can be
// tested with errors.Is. Context cancellation errors are returned unchanged.
package git
