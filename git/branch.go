package git

import (
	"context"
	"strings"
)

// Branches returns local branch names followed by remote branch names
// (origin/main), each group sorted. Symbolic remote HEADs are skipped.
func (r *Repo) Branches(ctx context.Context) ([]string, error) {
	local, err := r.Refs(ctx, RefBranch, "")
	if err != nil {
		return nil, err
	}
	remote, err := r.Refs(ctx, RefRemoteBranch, "")
	if err != nil {
		return nil, err
	}

	out := append([]string(nil), local...)
	for _, name := range remote {
		if !strings.HasSuffix(name, "/HEAD") {
			out = append(out, name)
		}
	}
	return out, nil
}
