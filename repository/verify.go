package repository

import (
	"context"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/branch"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/model"
)

// ModuleCheck is the repository evidence for one module of a train iteration.
type ModuleCheck struct {
	Module model.ModuleIteration

	// Tag is the tag the module is expected to be published under, and
	// TagFound whether the mirror has it in any accepted spelling.
	Tag      string
	TagFound bool

	// Branch is the branch the module is expected to be developed on.
	Branch      branch.Branch
	BranchFound bool

	// Err is set when the mirror could not be read.
	Err error
}

// OK reports whether the mirror has both the tag and the branch.
func (c ModuleCheck) OK() bool {
	return c.Err == nil && c.TagFound && c.BranchFound
}

// Verification compares a train iteration against the mirrors.
type Verification struct {
	Iteration model.TrainIteration
	Modules   []ModuleCheck
}

// OK reports whether every module check passed.
func (v *Verification) OK() bool {
	for _, c := range v.Modules {
		if !c.OK() {
			return false
		}
	}
	return true
}

// Problems returns the failed checks in canonical project order.
func (v *Verification) Problems() []ModuleCheck {
	var out []ModuleCheck
	for _, c := range v.Modules {
		if !c.OK() {
			out = append(out, c)
		}
	}
	return out
}

// Verify checks that every module of ti has its tag and branch in the local
// mirror. Mirror read failures are recorded per module; only an invalid ti
// or a canceled ctx fail the call.
func (s *Synchronizer) Verify(ctx context.Context, ti model.TrainIteration) (*Verification, error) {
	if ti.IsZero() || !s.resolver.Registry().Contains(ti.Train()) {
		return nil, errors.Newf(errors.CodeInvalidTimelinePosition, "%s is not a point of this timeline", ti)
	}

	v := &Verification{Iteration: ti}
	for _, mi := range ti.Modules() {
		if err := ctx.Err(); err != nil {
			return v, errors.Wrap(err, errors.CodeCanceled, "verification of "+ti.String()+" interrupted")
		}
		v.Modules = append(v.Modules, s.check(ctx, mi))
	}
	return v, nil
}

// VerifyPrevious verifies the predecessor of ti, which is the published
// state a new release of ti builds on.
func (s *Synchronizer) VerifyPrevious(ctx context.Context, ti model.TrainIteration) (*Verification, error) {
	prev, err := s.GetPreviousIteration(ti)
	if err != nil {
		return nil, err
	}
	return s.Verify(ctx, prev)
}

func (s *Synchronizer) check(ctx context.Context, mi model.ModuleIteration) ModuleCheck {
	c := ModuleCheck{
		Module: mi,
		Tag:    mi.TagName(),
		Branch: branch.FromModuleIteration(mi),
	}

	tags, err := s.GetTags(ctx, mi.Project())
	if err != nil {
		c.Err = err
		return c
	}
	_, c.TagFound = tags.Find(mi.ArtifactVersion())

	branches, err := s.GetBranches(ctx, mi.Project())
	if err != nil {
		c.Err = err
		return c
	}
	for _, b := range branches {
		if b == c.Branch {
			c.BranchFound = true
			break
		}
	}
	return c
}
