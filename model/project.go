package model

import (
	"strings"
)

// Maintainer classifies who maintains a project.
type Maintainer string

const (
	// MaintainerCore marks projects maintained by the core team.
	MaintainerCore Maintainer = "core"

	// MaintainerCommunity marks community-maintained projects.
	MaintainerCommunity Maintainer = "community"
)

// ArtifactCoordinate identifies an additional artifact a project publishes.
type ArtifactCoordinate struct {
	GroupID    string
	ArtifactID string
}

// String renders groupId:artifactId.
func (c ArtifactCoordinate) String() string {
	return c.GroupID + ":" + c.ArtifactID
}

// ProjectSpec describes a project before it is placed into a Projects registry.
type ProjectSpec struct {
	// Key uniquely identifies the project, e.g. "commons".
	Key string

	// Name is the short display name, e.g. "Commons".
	Name string

	// FullName defaults to Name.
	FullName string

	// Repository is the repository and local folder name. Defaults to the lower-cased Name.
	Repository string

	// DependencyProperty is the build property carrying the project's version.
	// Defaults to the lower-cased Name.
	DependencyProperty string

	// Tracker is where the project's tickets live.
	Tracker Tracker

	// Dependencies lists the keys of the projects this one directly depends on.
	Dependencies []string

	// AdditionalArtifacts lists artifacts published besides the main one.
	AdditionalArtifacts []ArtifactCoordinate

	// SkipTests disables tests during release builds.
	SkipTests bool

	// ShortVersionMilestones renders milestone names as 2.3.0-RC1 instead of 2.3 RC1.
	ShortVersionMilestones bool

	// Maintainer defaults to MaintainerCore.
	Maintainer Maintainer
}

// Project is a module released as part of trains. Projects are created by
// NewProjects and never change afterwards.
type Project struct {
	key                    string
	name                   string
	fullName               string
	repository             string
	dependencyProperty     string
	tracker                Tracker
	artifacts              []ArtifactCoordinate
	skipTests              bool
	shortVersionMilestones bool
	maintainer             Maintainer

	index      int
	direct     []*Project
	closure    []*Project
	closureSet map[*Project]struct{}
}

func newProject(spec ProjectSpec, index int) *Project {
	p := &Project{
		key:                    spec.Key,
		name:                   spec.Name,
		fullName:               spec.FullName,
		repository:             spec.Repository,
		dependencyProperty:     spec.DependencyProperty,
		tracker:                spec.Tracker,
		artifacts:              append([]ArtifactCoordinate(nil), spec.AdditionalArtifacts...),
		skipTests:              spec.SkipTests,
		shortVersionMilestones: spec.ShortVersionMilestones,
		maintainer:             spec.Maintainer,
		index:                  index,
	}
	if p.fullName == "" {
		p.fullName = p.name
	}
	if p.repository == "" {
		p.repository = strings.ToLower(p.name)
	}
	if p.dependencyProperty == "" {
		p.dependencyProperty = strings.ToLower(p.name)
	}
	if p.maintainer == "" {
		p.maintainer = MaintainerCore
	}
	return p
}

// Key returns the unique project key.
func (p *Project) Key() string { return p.key }

// Name returns the short display name.
func (p *Project) Name() string { return p.name }

// FullName returns the full display name.
func (p *Project) FullName() string { return p.fullName }

// Repository returns the repository and local folder name.
func (p *Project) Repository() string { return p.repository }

// DependencyProperty returns the build property carrying the project's version.
func (p *Project) DependencyProperty() string { return p.dependencyProperty }

// Tracker returns the project's issue tracker.
func (p *Project) Tracker() Tracker { return p.tracker }

// Uses reports whether the project files tickets in t.
func (p *Project) Uses(t Tracker) bool { return p.tracker.Equal(t) }

// AdditionalArtifacts returns the artifacts published besides the main one.
func (p *Project) AdditionalArtifacts() []ArtifactCoordinate {
	return append([]ArtifactCoordinate(nil), p.artifacts...)
}

// SkipTests reports whether release builds skip tests.
func (p *Project) SkipTests() bool { return p.skipTests }

// UseShortVersionMilestones reports whether milestone names use the 2.3.0-RC1 form.
func (p *Project) UseShortVersionMilestones() bool { return p.shortVersionMilestones }

// Maintainer returns the maintainer class.
func (p *Project) Maintainer() Maintainer { return p.maintainer }

// DirectDependencies returns the declared dependencies in canonical order.
func (p *Project) DirectDependencies() []*Project {
	return append([]*Project(nil), p.direct...)
}

// Dependencies returns all transitive dependencies in canonical order.
func (p *Project) Dependencies() []*Project {
	return append([]*Project(nil), p.closure...)
}

// DependsOn reports whether p depends on o, directly or transitively.
func (p *Project) DependsOn(o *Project) bool {
	_, ok := p.closureSet[o]
	return ok
}

// Compare orders projects by their position in the registry.
func (p *Project) Compare(o *Project) int {
	return p.index - o.index
}

// String returns the project name.
func (p *Project) String() string { return p.name }
