// Package projectservice describes the release metadata a project service
// keeps for every module version, and the narrow interface used to read and
// publish it.
package projectservice

import (
	"context"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/branch"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/model"
)

// Status is the release status of a module version.
type Status string

const (
	// StatusPrerelease marks milestones and release candidates.
	StatusPrerelease Status = "PRERELEASE"

	// StatusGeneralAvailability marks GA and service releases.
	StatusGeneralAvailability Status = "GENERAL_AVAILABILITY"

	// StatusSnapshot marks development snapshots.
	StatusSnapshot Status = "SNAPSHOT"
)

// String returns the string representation of the Status.
func (s Status) String() string {
	return string(s)
}

// ModuleInfo is the metadata published for one module version.
type ModuleInfo struct {
	// Project is the project key.
	Project string `json:"project"`

	// Version is the artifact version, e.g. 2.5.0-RC1.
	Version string `json:"version"`

	Status Status `json:"status"`

	// ReleaseName is the name shown in release notes, e.g. 2.5 RC1.
	ReleaseName string `json:"releaseName"`

	// Branch is the branch the version is developed on.
	Branch string `json:"branch"`

	// Train is the iteration the version ships with, e.g. "Hopper RC1".
	Train string `json:"train"`

	Commercial bool `json:"commercial"`
}

// Reader reads published module metadata.
type Reader interface {
	// ModuleInfo returns the metadata of project at version. Unknown
	// versions yield a NOT_FOUND error.
	ModuleInfo(ctx context.Context, project *model.Project, version model.ArtifactVersion) (ModuleInfo, error)
}

// Publisher publishes module metadata.
type Publisher interface {
	Publish(ctx context.Context, mi model.ModuleIteration) error
}

// Service reads and publishes module metadata.
type Service interface {
	Reader
	Publisher
}

// InfoFor derives the metadata of mi.
func InfoFor(mi model.ModuleIteration) ModuleInfo {
	status := StatusGeneralAvailability
	if mi.Iteration().IsPreview() {
		status = StatusPrerelease
	}
	return ModuleInfo{
		Project:     mi.Project().Key(),
		Version:     mi.ArtifactVersion().String(),
		Status:      status,
		ReleaseName: mi.ReleaseName(),
		Branch:      branch.FromModuleIteration(mi).String(),
		Train:       mi.TrainIteration().String(),
		Commercial:  mi.IsCommercial(),
	}
}

// PublishAll publishes every module of ti in canonical project order and
// stops at the first failure.
func PublishAll(ctx context.Context, p Publisher, ti model.TrainIteration) error {
	for _, mi := range ti.Modules() {
		if err := p.Publish(ctx, mi); err != nil {
			return err
		}
	}
	return nil
}
