// Package branch derives source-control branch names from points on the
// release timeline.
package branch

import (
	"fmt"
	"sort"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/model"
)

// Branch is an immutable branch name.
type Branch struct {
	name string
}

// Main is the trunk branch.
var Main = Branch{name: "main"}

// IterationVersion is a timeline position that carries a version and a
// branch policy. Both model.TrainIteration and model.ModuleIteration satisfy it.
type IterationVersion interface {
	Version() model.Version
	IsBranchVersion() bool
}

// FromModuleIteration returns the branch a module is developed on at mi.
// Branch-version modules and commercial trains use the version branch.
func FromModuleIteration(mi model.ModuleIteration) Branch {
	if mi.IsBranchVersion() || mi.IsCommercial() {
		return FromVersion(mi.Version())
	}
	return Main
}

// FromIterationVersion returns the branch for v without project context.
func FromIterationVersion(v IterationVersion) Branch {
	if v.IsBranchVersion() {
		return FromVersion(v.Version())
	}
	return Main
}

// FromVersion returns the maintenance branch of v, e.g. 2.3.x.
func FromVersion(v model.Version) Branch {
	return Branch{name: v.MajorMinor() + ".x"}
}

// FromRawName returns the local branch named by raw, dropping everything up
// to and including the last slash ("origin/release/2.3.x" becomes "2.3.x").
func FromRawName(raw string) (Branch, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Branch{}, errors.New(errors.CodeAmbiguousBranch, "branch name cannot be empty")
	}
	local := trimmed[strings.LastIndex(trimmed, "/")+1:]
	if local == "" {
		return Branch{}, &errors.ForgeError{
			Code:    errors.CodeAmbiguousBranch,
			Message: fmt.Sprintf("branch name %q has no local part", raw),
			Context: map[string]interface{}{"raw": raw},
		}
	}
	return Branch{name: local}, nil
}

// Name returns the branch name.
func (b Branch) Name() string { return b.name }

// String returns the branch name.
func (b Branch) String() string { return b.name }

// IsZero reports whether b is the zero value.
func (b Branch) IsZero() bool { return b.name == "" }

// IsMain reports whether b is the trunk.
func (b Branch) IsMain() bool { return b == Main }

// WithRemote qualifies b with remote. Already qualified names are returned
// unchanged.
func (b Branch) WithRemote(remote string) Branch {
	if remote == "" || strings.HasPrefix(b.name, remote+"/") {
		return b
	}
	return Branch{name: remote + "/" + b.name}
}

// Local removes the remote qualification added by WithRemote.
func (b Branch) Local(remote string) Branch {
	if remote == "" {
		return b
	}
	return Branch{name: strings.TrimPrefix(b.name, remote+"/")}
}

// IsIssueBranch reports whether b is named after a ticket of tracker.
func (b Branch) IsIssueBranch(tracker model.Tracker) bool {
	return tracker.Matches(b.name)
}

// Compare orders branches by name, ignoring case.
func (b Branch) Compare(o Branch) int {
	return strings.Compare(strings.ToLower(b.name), strings.ToLower(o.name))
}

// Sort orders branches in place using Compare.
func Sort(branches []Branch) {
	sort.SliceStable(branches, func(i, j int) bool {
		return branches[i].Compare(branches[j]) < 0
	})
}
