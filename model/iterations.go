package model

import (
	"fmt"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
)

// TrainIteration is a point on the release timeline: a train and one of its iterations.
// The zero value is not a valid point.
type TrainIteration struct {
	train     *Train
	iteration Iteration
}

// NewTrainIteration pairs t with it. It fails with INVALID_TIMELINE_POSITION
// when it is not part of t's iteration sequence.
func NewTrainIteration(t *Train, it Iteration) (TrainIteration, error) {
	if t == nil {
		return TrainIteration{}, errors.New(errors.CodeInvalidTimelinePosition, "train cannot be nil")
	}
	if !t.Contains(it) {
		return TrainIteration{}, &errors.ForgeError{
			Code:    errors.CodeInvalidTimelinePosition,
			Message: fmt.Sprintf("iteration %s is not part of train %s", it, t.name),
			Context: map[string]interface{}{"train": t.name, "iteration": it.String()},
		}
	}
	return TrainIteration{train: t, iteration: it}, nil
}

// Train returns the train.
func (ti TrainIteration) Train() *Train { return ti.train }

// Iteration returns the iteration.
func (ti TrainIteration) Iteration() Iteration { return ti.iteration }

// IsZero reports whether ti is the zero value.
func (ti TrainIteration) IsZero() bool { return ti.train == nil }

// Version returns the train's calendar version, or the version of its first
// module when the train has none.
func (ti TrainIteration) Version() Version {
	if ti.train == nil {
		return Version{}
	}
	if v, ok := ti.train.Calver(); ok {
		return v
	}
	return ti.train.modules[0].version
}

// IsBranchVersion reports whether the train is developed on per-version
// branches at this point, which is the case for service releases.
func (ti TrainIteration) IsBranchVersion() bool {
	return ti.iteration.IsServiceRelease()
}

// IsCommercial reports whether the train is a commercial line.
func (ti TrainIteration) IsCommercial() bool {
	return ti.train != nil && ti.train.commercial
}

// Module returns the ModuleIteration of p at this point.
func (ti TrainIteration) Module(p *Project) (ModuleIteration, error) {
	if ti.train == nil {
		return ModuleIteration{}, errors.New(errors.CodeInvalidTimelinePosition, "train iteration is not set")
	}
	m, err := ti.train.Module(p)
	if err != nil {
		return ModuleIteration{}, err
	}
	return ModuleIteration{module: m, ti: ti}, nil
}

// Modules returns the ModuleIterations of every supported project in canonical order.
func (ti TrainIteration) Modules() []ModuleIteration {
	if ti.train == nil {
		return nil
	}
	out := make([]ModuleIteration, len(ti.train.modules))
	for i, m := range ti.train.modules {
		out[i] = ModuleIteration{module: m, ti: ti}
	}
	return out
}

// String renders "Hopper SR10".
func (ti TrainIteration) String() string {
	if ti.train == nil {
		return "<none>"
	}
	return fmt.Sprintf("%s %s", ti.train.name, ti.iteration)
}

// ModuleIteration is the view of one project at a TrainIteration.
type ModuleIteration struct {
	module Module
	ti     TrainIteration
}

// Project returns the project.
func (mi ModuleIteration) Project() *Project { return mi.module.project }

// Module returns the train module.
func (mi ModuleIteration) Module() Module { return mi.module }

// TrainIteration returns the point on the timeline.
func (mi ModuleIteration) TrainIteration() TrainIteration { return mi.ti }

// Train returns the train.
func (mi ModuleIteration) Train() *Train { return mi.ti.train }

// Iteration returns the iteration.
func (mi ModuleIteration) Iteration() Iteration { return mi.ti.iteration }

// Version returns the module's base version in the train.
func (mi ModuleIteration) Version() Version { return mi.module.version }

// ArtifactVersion returns the concrete version published at this iteration.
func (mi ModuleIteration) ArtifactVersion() ArtifactVersion {
	base := mi.module.version
	it := mi.ti.iteration

	switch it.kind {
	case Milestone:
		return NewArtifactVersion(base, Qualifier{Kind: QualifierMilestone, Number: it.ordinal})
	case ReleaseCandidate:
		return NewArtifactVersion(base, Qualifier{Kind: QualifierReleaseCandidate, Number: it.ordinal})
	case ServiceRelease:
		return NewArtifactVersion(base.WithPatch(base.patch+it.ordinal), Release)
	default:
		return NewArtifactVersion(base, Release)
	}
}

// IsBranchVersion reports whether the module is developed on its
// per-version branch during this iteration.
func (mi ModuleIteration) IsBranchVersion() bool {
	return mi.module.branchVersion || mi.ti.IsBranchVersion()
}

// IsCommercial reports whether the train is a commercial line.
func (mi ModuleIteration) IsCommercial() bool {
	return mi.ti.IsCommercial()
}

// TagName returns the tag the release is published under, e.g. 2.3.0-RC1.
func (mi ModuleIteration) TagName() string {
	return mi.ArtifactVersion().String()
}

// ReleaseName returns the version as shown in release notes and trackers:
// 2.3.0-RC1 for projects using short version milestones, 2.3 RC1 otherwise.
func (mi ModuleIteration) ReleaseName() string {
	if mi.module.project.shortVersionMilestones {
		return mi.ArtifactVersion().String()
	}
	return mi.ArtifactVersion().DisplayString()
}

// String renders "Commons 2.3 RC1 (Hopper RC1)".
func (mi ModuleIteration) String() string {
	return fmt.Sprintf("%s %s (%s)", mi.module.project.name, mi.ArtifactVersion().DisplayString(), mi.ti)
}
