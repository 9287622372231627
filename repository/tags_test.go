package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/model"
)

func TestNewTags(t *testing.T) {
	tags := NewTags([]string{
		"2.5.0", "release-notes", "2.4.3", "2.5.0-RC1", "", "2.5.0-M1",
		"2.4.3", "1.12.0.RELEASE", "v2.5.0", "archive", "2.10.0",
	})

	assert.Equal(t, []string{
		"1.12.0.RELEASE", "2.4.3", "2.5.0-M1", "2.5.0-RC1", "2.5.0", "v2.5.0", "2.10.0",
		"archive", "release-notes",
	}, tags.Names())
	assert.Equal(t, 9, tags.Len())
}

func TestNewTags_PartialVersionsAreNotVersions(t *testing.T) {
	tags := NewTags([]string{"2023", "v1", "2.5", "2.5.0"})

	assert.Equal(t, []string{"2.5.0", "2.5", "2023", "v1"}, tags.Names())
	assert.Len(t, tags.Versions(), 1)
	latest, ok := tags.Latest()
	require.True(t, ok)
	assert.Equal(t, "2.5.0", latest.Name)
}

func TestTags_Lookups(t *testing.T) {
	tags := NewTags([]string{"1.12.0.M1", "1.12.0-RC1", "1.12.3.SR3", "v1.13.0", "nightly"})
	v := model.MustParseVersion

	tests := []struct {
		name  string
		want  model.ArtifactVersion
		found string
	}{
		{"legacy milestone", model.NewArtifactVersion(v("1.12.0"), model.Qualifier{Kind: model.QualifierMilestone, Number: 1}), "1.12.0.M1"},
		{"modern candidate", model.NewArtifactVersion(v("1.12.0"), model.Qualifier{Kind: model.QualifierReleaseCandidate, Number: 1}), "1.12.0-RC1"},
		{"legacy service release", model.NewArtifactVersion(v("1.12.3"), model.Release), "1.12.3.SR3"},
		{"prefixed release", model.NewArtifactVersion(v("1.13.0"), model.Release), "v1.13.0"},
		{"absent", model.NewArtifactVersion(v("1.12.0"), model.Release), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, ok := tags.Find(tt.want)
			assert.Equal(t, tt.found != "", ok)
			assert.Equal(t, tt.found, tag.Name)
		})
	}

	assert.True(t, tags.Contains("nightly"))
	assert.False(t, tags.Contains("1.12.0-M1"), "Contains matches names exactly")

	latest, ok := tags.Latest()
	require.True(t, ok)
	assert.Equal(t, "v1.13.0", latest.Name)
	assert.Len(t, tags.Versions(), 4)
}

func TestTags_Empty(t *testing.T) {
	var tags Tags
	assert.Zero(t, tags.Len())
	assert.False(t, tags.Contains("1.0.0"))
	_, ok := tags.Latest()
	assert.False(t, ok)
	_, ok = tags.Find(model.NewArtifactVersion(model.NewVersion(1, 0, 0), model.Release))
	assert.False(t, ok)
	assert.Empty(t, tags.Versions())

	onlyOther := NewTags([]string{"b", "a"})
	assert.Equal(t, []string{"a", "b"}, onlyOther.Names())
	_, ok = onlyOther.Latest()
	assert.False(t, ok)
}

func TestTags_VersionsDeduplicateSpellings(t *testing.T) {
	tags := NewTags([]string{"2.0.0", "v2.0.0", "2.0.0.RELEASE"})
	assert.Len(t, tags.Versions(), 1)
	assert.Equal(t, 3, tags.Len())
}
