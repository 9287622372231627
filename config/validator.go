package config

import (
	"fmt"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/model"
)

// FromDocument builds the registry and settings described by doc.
//
// Schema-level checks (types, required fields, formats) are done by CUE
// when the document is decoded. This function checks what CUE cannot
// express: tracker references, the project graph and iteration sequences.
func FromDocument(doc *Document) (*Config, error) {
	if doc == nil {
		return nil, errors.New(errors.CodeInvalidInput, "configuration document is nil")
	}

	trackers, err := buildTrackers(doc.Trackers)
	if err != nil {
		return nil, err
	}

	var problems []string
	projectSpecs := make([]model.ProjectSpec, 0, len(doc.Projects))
	for _, p := range doc.Projects {
		spec, err := projectSpec(p, doc.Naming, trackers)
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		projectSpecs = append(projectSpecs, spec)
	}

	trainSpecs := make([]model.TrainSpec, 0, len(doc.Trains))
	for _, t := range doc.Trains {
		spec, err := trainSpec(t)
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		trainSpecs = append(trainSpecs, spec)
	}

	if len(problems) > 0 {
		return nil, errors.New(
			errors.CodeInvalidConfig,
			fmt.Sprintf("configuration validation failed: %s", strings.Join(problems, "; ")),
		)
	}

	projects, err := model.NewProjects(projectSpecs)
	if err != nil {
		return nil, err
	}
	registry, err := model.NewRegistry(projects, trainSpecs)
	if err != nil {
		return nil, err
	}

	settings, err := newSettings(doc.Git)
	if err != nil {
		return nil, err
	}
	return &Config{Registry: registry, Settings: settings}, nil
}

// buildTrackers returns the built-in trackers plus the declared ones, keyed
// by lower-cased name.
func buildTrackers(declared []Tracker) (map[string]model.Tracker, error) {
	trackers := map[string]model.Tracker{
		strings.ToLower(model.GitHub.Name()): model.GitHub,
		strings.ToLower(model.Jira.Name()):   model.Jira,
	}
	for _, d := range declared {
		t, err := model.NewTracker(d.Name, d.Pattern)
		if err != nil {
			return nil, err
		}
		trackers[strings.ToLower(d.Name)] = t
	}
	return trackers, nil
}

func projectSpec(p Project, naming Naming, trackers map[string]model.Tracker) (model.ProjectSpec, error) {
	tracker, ok := trackers[strings.ToLower(p.Tracker)]
	if p.Tracker == "" {
		tracker, ok = model.GitHub, true
	}
	if !ok {
		return model.ProjectSpec{}, fmt.Errorf("project %s references unknown tracker %q", p.Key, p.Tracker)
	}

	spec := model.ProjectSpec{
		Key:                    p.Key,
		Name:                   p.Name,
		FullName:               p.FullName,
		Repository:             p.Repository,
		DependencyProperty:     p.DependencyProperty,
		Tracker:                tracker,
		Dependencies:           p.Dependencies,
		SkipTests:              p.SkipTests,
		ShortVersionMilestones: p.ShortVersionMilestones,
		Maintainer:             model.Maintainer(p.Maintainer),
	}
	if spec.FullName == "" {
		spec.FullName = naming.FullNamePrefix + p.Name
	}
	if spec.Repository == "" {
		spec.Repository = naming.FolderPrefix + strings.ToLower(p.Name)
	}
	if spec.DependencyProperty == "" {
		spec.DependencyProperty = naming.DependencyPropertyPrefix + strings.ToLower(p.Name)
	}
	for _, a := range p.AdditionalArtifacts {
		spec.AdditionalArtifacts = append(spec.AdditionalArtifacts,
			model.ArtifactCoordinate{GroupID: a.GroupID, ArtifactID: a.ArtifactID})
	}
	return spec, nil
}

func trainSpec(t Train) (model.TrainSpec, error) {
	spec := model.TrainSpec{Name: t.Name, Commercial: t.Commercial}

	if t.Calver != "" {
		v, err := model.ParseVersion(t.Calver)
		if err != nil {
			return model.TrainSpec{}, fmt.Errorf("train %s has invalid calver %q: %w", t.Name, t.Calver, err)
		}
		spec.Calver = &v
	}

	if len(t.Iterations) > 0 {
		if t.Milestones+t.ReleaseCandidates+t.ServiceReleases > 0 {
			return model.TrainSpec{}, fmt.Errorf("train %s mixes an explicit iteration list with iteration counts", t.Name)
		}
		for _, raw := range t.Iterations {
			it, err := model.ParseIteration(raw)
			if err != nil {
				return model.TrainSpec{}, fmt.Errorf("train %s: %w", t.Name, err)
			}
			spec.Iterations = append(spec.Iterations, it)
		}
	} else {
		spec.Iterations = model.Iterations(t.Milestones, t.ReleaseCandidates, t.ServiceReleases)
	}

	for _, m := range t.Modules {
		v, err := model.ParseVersion(m.Version)
		if err != nil {
			return model.TrainSpec{}, fmt.Errorf("train %s module %s has invalid version %q: %w", t.Name, m.Project, m.Version, err)
		}
		spec.Modules = append(spec.Modules, model.ModuleSpec{Project: m.Project, Version: v, BranchVersion: m.BranchVersion})
	}
	return spec, nil
}
