package model

import (
	"sort"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
)

// ModuleSpec declares the version a project ships with in a train.
type ModuleSpec struct {
	// Project is the project key.
	Project string

	// Version is the module's base version in the train, e.g. 2.3.0.
	Version Version

	// BranchVersion forces development on the per-version branch for
	// every iteration of the train, not only for service releases.
	BranchVersion bool
}

// TrainSpec declares a train before it is placed into a Registry.
type TrainSpec struct {
	// Name is the train's code name, e.g. "Hopper".
	Name string

	// Calver is the optional calendar version of the train, e.g. 2023.1.0.
	Calver *Version

	// Commercial marks a support-only train that is always released from
	// per-version branches.
	Commercial bool

	// Iterations is the train's iteration sequence in canonical order.
	Iterations []Iteration

	// Modules lists the supported projects.
	Modules []ModuleSpec
}

// Module is a project supported by a train together with its base version.
type Module struct {
	project       *Project
	version       Version
	branchVersion bool
}

// Project returns the module's project.
func (m Module) Project() *Project { return m.project }

// Version returns the module's base version in the train.
func (m Module) Version() Version { return m.version }

// BranchVersion reports whether the module is always developed on its per-version branch.
func (m Module) BranchVersion() bool { return m.branchVersion }

// Train is a named release line. Trains are created by NewRegistry, which
// assigns their global order, and never change afterwards.
type Train struct {
	name       string
	calver     *Version
	commercial bool
	index      int

	iterations []Iteration
	position   map[Iteration]int

	modules   []Module
	byProject map[*Project]int
}

func newTrain(spec TrainSpec, index int, projects *Projects) (*Train, error) {
	if spec.Name == "" {
		return nil, errors.Newf(errors.CodeInvalidConfig, "train at position %d has no name", index)
	}
	if err := ValidateSequence(spec.Iterations); err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig,
			"invalid iteration sequence", map[string]interface{}{"train": spec.Name})
	}
	if len(spec.Modules) == 0 {
		return nil, errors.Newf(errors.CodeInvalidConfig, "train %s supports no projects", spec.Name)
	}

	t := &Train{
		name:       spec.Name,
		commercial: spec.Commercial,
		index:      index,
		iterations: append([]Iteration(nil), spec.Iterations...),
		position:   make(map[Iteration]int, len(spec.Iterations)),
		byProject:  make(map[*Project]int, len(spec.Modules)),
	}
	if spec.Calver != nil {
		v := *spec.Calver
		t.calver = &v
	}
	for i, it := range t.iterations {
		t.position[it] = i
	}

	for _, ms := range spec.Modules {
		p, err := projects.Get(ms.Project)
		if err != nil {
			return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig,
				"train references unknown project", map[string]interface{}{"train": spec.Name, "project": ms.Project})
		}
		if _, dup := t.byProject[p]; dup {
			return nil, errors.Newf(errors.CodeInvalidConfig, "train %s declares project %s more than once", spec.Name, p.Key())
		}
		t.byProject[p] = -1
		t.modules = append(t.modules, Module{project: p, version: ms.Version, branchVersion: ms.BranchVersion})
	}

	sort.Slice(t.modules, func(i, j int) bool {
		return t.modules[i].project.Compare(t.modules[j].project) < 0
	})
	for i, m := range t.modules {
		t.byProject[m.project] = i
	}
	return t, nil
}

// Name returns the train name.
func (t *Train) Name() string { return t.name }

// Index returns the train's position in the global release order.
func (t *Train) Index() int { return t.index }

// Calver returns the train's calendar version, if it has one.
func (t *Train) Calver() (Version, bool) {
	if t.calver == nil {
		return Version{}, false
	}
	return *t.calver, true
}

// IsCommercial reports whether the train is a support-only line.
func (t *Train) IsCommercial() bool { return t.commercial }

// Iterations returns the iteration sequence in canonical order.
func (t *Train) Iterations() []Iteration {
	return append([]Iteration(nil), t.iterations...)
}

// Contains reports whether it belongs to the train's sequence.
func (t *Train) Contains(it Iteration) bool {
	_, ok := t.position[it]
	return ok
}

// Iteration returns the TrainIteration for it.
func (t *Train) Iteration(it Iteration) (TrainIteration, error) {
	return NewTrainIteration(t, it)
}

// MustIteration is like Iteration but panics when it is not part of the train.
func (t *Train) MustIteration(it Iteration) TrainIteration {
	ti, err := t.Iteration(it)
	if err != nil {
		panic(err)
	}
	return ti
}

// Milestones returns the train's milestones in order.
func (t *Train) Milestones() []Iteration {
	return t.ofKind(Milestone)
}

// ReleaseCandidates returns the train's release candidates in order.
func (t *Train) ReleaseCandidates() []Iteration {
	return t.ofKind(ReleaseCandidate)
}

// ServiceReleases returns the train's service releases in order.
func (t *Train) ServiceReleases() []Iteration {
	return t.ofKind(ServiceRelease)
}

func (t *Train) ofKind(kind IterationKind) []Iteration {
	var out []Iteration
	for _, it := range t.iterations {
		if it.kind == kind {
			out = append(out, it)
		}
	}
	return out
}

// LastMilestone returns the highest milestone of the train.
func (t *Train) LastMilestone() (Iteration, bool) {
	ms := t.Milestones()
	if len(ms) == 0 {
		return Iteration{}, false
	}
	return ms[len(ms)-1], true
}

// Supports reports whether p is released as part of the train.
func (t *Train) Supports(p *Project) bool {
	_, ok := t.byProject[p]
	return ok
}

// Module returns the train's module for p.
func (t *Train) Module(p *Project) (Module, error) {
	i, ok := t.byProject[p]
	if !ok {
		return Module{}, errors.Newf(errors.CodeNotFound, "project %s is not part of train %s", p, t.name)
	}
	return t.modules[i], nil
}

// Modules returns the train's modules in canonical project order.
func (t *Train) Modules() []Module {
	return append([]Module(nil), t.modules...)
}

// Projects returns the supported projects in canonical order.
func (t *Train) Projects() []*Project {
	out := make([]*Project, len(t.modules))
	for i, m := range t.modules {
		out[i] = m.project
	}
	return out
}

// String returns the train name.
func (t *Train) String() string { return t.name }
