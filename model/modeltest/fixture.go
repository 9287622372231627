// Package modeltest provides a small release-train registry for tests.
package modeltest

import (
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/model"
)

// Project keys of the fixture registry, in canonical order.
const (
	Build   = "build"
	Commons = "commons"
	JPA     = "jpa"
	MongoDB = "mongodb"
	REST    = "rest"
)

// Train names of the fixture registry, in release order.
const (
	Gosling = "Gosling"
	Hopper  = "Hopper"
	Ingalls = "Ingalls"
	Turing  = "Turing"
	Vaughan = "Vaughan"
)

// ProjectSpecs returns the fixture projects. jpa and mongodb depend on
// commons, rest depends on both stores.
func ProjectSpecs() []model.ProjectSpec {
	return []model.ProjectSpec{
		{Key: Build, Name: "Build", FullName: "Spring Data Build", Tracker: model.GitHub},
		{Key: Commons, Name: "Commons", Tracker: model.GitHub, Dependencies: []string{Build}},
		{Key: JPA, Name: "JPA", Tracker: model.Jira, Dependencies: []string{Commons}},
		{Key: MongoDB, Name: "MongoDB", Tracker: model.GitHub, Dependencies: []string{Commons}},
		{
			Key:                    REST,
			Name:                   "REST",
			Tracker:                model.GitHub,
			Dependencies:           []string{JPA, MongoDB},
			ShortVersionMilestones: true,
			Maintainer:             model.MaintainerCommunity,
		},
	}
}

// TrainSpecs returns the fixture trains. Ingalls has no milestones, Turing and
// Vaughan are commercial, and Vaughan drops mongodb and rest and forces build
// onto its version branch.
func TrainSpecs() []model.TrainSpec {
	v := model.MustParseVersion
	turing := v("2022.0.0")
	vaughan := v("2023.1.0")

	return []model.TrainSpec{
		{
			Name:       Gosling,
			Iterations: model.Iterations(1, 1, 3),
			Modules: []model.ModuleSpec{
				{Project: Build, Version: v("1.7.0")},
				{Project: Commons, Version: v("1.11.0")},
				{Project: JPA, Version: v("1.9.0")},
				{Project: MongoDB, Version: v("1.8.0")},
				{Project: REST, Version: v("2.4.0")},
			},
		},
		{
			Name:       Hopper,
			Iterations: model.Iterations(1, 1, 12),
			Modules: []model.ModuleSpec{
				{Project: REST, Version: v("2.5.0")},
				{Project: Build, Version: v("1.8.0")},
				{Project: Commons, Version: v("1.12.0")},
				{Project: MongoDB, Version: v("1.9.0")},
				{Project: JPA, Version: v("1.10.0")},
			},
		},
		{
			Name:       Ingalls,
			Iterations: model.Iterations(0, 2, 2),
			Modules: []model.ModuleSpec{
				{Project: Build, Version: v("1.9.0")},
				{Project: Commons, Version: v("1.13.0")},
				{Project: JPA, Version: v("1.11.0")},
				{Project: MongoDB, Version: v("1.10.0")},
				{Project: REST, Version: v("2.6.0")},
			},
		},
		{
			Name:       Turing,
			Calver:     &turing,
			Commercial: true,
			Iterations: model.Iterations(2, 1, 3),
			Modules: []model.ModuleSpec{
				{Project: Build, Version: v("3.0.0")},
				{Project: Commons, Version: v("3.0.0")},
				{Project: JPA, Version: v("3.0.0")},
				{Project: MongoDB, Version: v("4.0.0")},
				{Project: REST, Version: v("4.0.0")},
			},
		},
		{
			Name:       Vaughan,
			Calver:     &vaughan,
			Commercial: true,
			Iterations: model.Iterations(2, 1, 2),
			Modules: []model.ModuleSpec{
				{Project: Build, Version: v("3.2.0"), BranchVersion: true},
				{Project: Commons, Version: v("3.2.0")},
				{Project: JPA, Version: v("3.2.0")},
			},
		},
	}
}

// Registry builds the fixture registry and panics on error.
func Registry() *model.Registry {
	projects, err := model.NewProjects(ProjectSpecs())
	if err != nil {
		panic(err)
	}
	reg, err := model.NewRegistry(projects, TrainSpecs())
	if err != nil {
		panic(err)
	}
	return reg
}

// Iteration returns the fixture TrainIteration of train at it and panics when
// it does not exist.
func Iteration(reg *model.Registry, train string, it model.Iteration) model.TrainIteration {
	return reg.MustTrain(train).MustIteration(it)
}
