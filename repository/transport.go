package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/model"
)

// Transport performs the git work behind a mirror. Paths are relative to the
// Synchronizer's workspace filesystem.
type Transport interface {
	// Clone creates a mirror of remoteURL at localPath.
	Clone(ctx context.Context, remoteURL, localPath string) error

	// Fetch updates every ref and tag of the mirror at localPath from
	// remoteURL. When the mirror's origin points elsewhere it is repointed
	// first. A mirror that is already current is not an error.
	Fetch(ctx context.Context, remoteURL, localPath string) error

	// ListTags returns the tag names of the mirror at localPath.
	ListTags(ctx context.Context, localPath string) ([]string, error)

	// ListBranches returns the local branch names of the mirror at localPath.
	ListBranches(ctx context.Context, localPath string) ([]string, error)
}

// RemoteResolver returns the remote URL of a project's repository.
type RemoteResolver func(p *model.Project) (string, error)

// RemoteBase resolves every project to <base>/<repository>.git.
func RemoteBase(base string) RemoteResolver {
	base = strings.TrimRight(base, "/")
	return func(p *model.Project) (string, error) {
		if base == "" {
			return "", errors.New(errors.CodeInvalidConfig, "remote base URL is not configured")
		}
		return fmt.Sprintf("%s/%s.git", base, p.Repository()), nil
	}
}

// RemoteMap resolves projects by key, falling back to fallback when set.
func RemoteMap(urls map[string]string, fallback RemoteResolver) RemoteResolver {
	return func(p *model.Project) (string, error) {
		if u, ok := urls[p.Key()]; ok && u != "" {
			return u, nil
		}
		if fallback != nil {
			return fallback(p)
		}
		return "", errors.Newf(errors.CodeNotFound, "no remote configured for project %s", p.Key())
	}
}
