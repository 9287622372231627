package git

import (
	"context"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
)

// RefKind represents the type of git reference.
type RefKind int

const (
	// RefBranch indicates a local branch reference (refs/heads/*).
	RefBranch RefKind = iota

	// RefRemoteBranch indicates a remote branch reference (refs/remotes/*/*).
	RefRemoteBranch

	// RefTag indicates a tag reference (refs/tags/*).
	RefTag

	// RefOther indicates any other type of reference.
	RefOther
)

// String returns a human-readable string representation of the RefKind.
func (k RefKind) String() string {
	switch k {
	case RefBranch:
		return "branch"
	case RefRemoteBranch:
		return "remote-branch"
	case RefTag:
		return "tag"
	case RefOther:
		return "other"
	default:
		return "unknown"
	}
}

func kindOf(name plumbing.ReferenceName) RefKind {
	switch {
	case name.IsBranch():
		return RefBranch
	case name.IsRemote():
		return RefRemoteBranch
	case name.IsTag():
		return RefTag
	default:
		return RefOther
	}
}

// Refs returns the short names of references of the given kind whose short
// name matches pattern (path.Match syntax, empty matches all), sorted.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) Refs(ctx context.Context, kind RefKind, pattern string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	iter, err := r.repo.References()
	if err != nil {
		return nil, WrapError(err, "failed to get references")
	}

	var out []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Name() == plumbing.HEAD || kindOf(ref.Name()) != kind {
			return nil
		}
		short := ref.Name().Short()
		if matchesPattern(short, pattern) {
			out = append(out, short)
		}
		return nil
	})
	if err != nil {
		return nil, WrapError(err, "failed to iterate references")
	}

	sort.Strings(out)
	return out, nil
}
