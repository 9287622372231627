package repository

import (
	"sort"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/model"
)

// Tag is a tag name together with the version it spells, if any.
type Tag struct {
	Name    string
	Version model.ArtifactVersion

	// IsVersion reports whether Name parsed as a version tag.
	IsVersion bool
}

// Tags is an ordered, deduplicated set of tag names. Version tags come first
// in ArtifactVersion order, the remaining tags follow lexicographically.
// The zero value is an empty set.
type Tags struct {
	tags   []Tag
	byName map[string]int
}

// NewTags builds a tag set from raw names. Duplicates and empty names are dropped.
func NewTags(names []string) Tags {
	seen := make(map[string]struct{}, len(names))
	tags := make([]Tag, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		tag := Tag{Name: name}
		if v, err := model.ParseArtifactVersion(name); err == nil {
			tag.Version, tag.IsVersion = v, true
		}
		tags = append(tags, tag)
	}

	sort.SliceStable(tags, func(i, j int) bool {
		a, b := tags[i], tags[j]
		if a.IsVersion != b.IsVersion {
			return a.IsVersion
		}
		if a.IsVersion {
			if c := a.Version.Compare(b.Version); c != 0 {
				return c < 0
			}
		}
		return a.Name < b.Name
	})

	byName := make(map[string]int, len(tags))
	for i, t := range tags {
		byName[t.Name] = i
	}
	return Tags{tags: tags, byName: byName}
}

// Len returns the number of tags.
func (t Tags) Len() int { return len(t.tags) }

// All returns every tag in set order.
func (t Tags) All() []Tag {
	return append([]Tag(nil), t.tags...)
}

// Names returns the tag names in set order.
func (t Tags) Names() []string {
	out := make([]string, len(t.tags))
	for i, tag := range t.tags {
		out[i] = tag.Name
	}
	return out
}

// Contains reports whether a tag with exactly this name exists.
func (t Tags) Contains(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Find returns the first tag spelling v, accepting legacy and prefixed spellings.
func (t Tags) Find(v model.ArtifactVersion) (Tag, bool) {
	i := sort.Search(len(t.tags), func(i int) bool {
		tag := t.tags[i]
		return !tag.IsVersion || tag.Version.Compare(v) >= 0
	})
	if i < len(t.tags) && t.tags[i].IsVersion && t.tags[i].Version.Compare(v) == 0 {
		return t.tags[i], true
	}
	return Tag{}, false
}

// Versions returns the distinct versions spelled by the set, ascending.
func (t Tags) Versions() []model.ArtifactVersion {
	var out []model.ArtifactVersion
	for _, tag := range t.tags {
		if !tag.IsVersion {
			break
		}
		if n := len(out); n > 0 && out[n-1].Compare(tag.Version) == 0 {
			continue
		}
		out = append(out, tag.Version)
	}
	return out
}

// Latest returns the highest version tag.
func (t Tags) Latest() (Tag, bool) {
	latest, ok := Tag{}, false
	for _, tag := range t.tags {
		if !tag.IsVersion {
			break
		}
		latest, ok = tag, true
	}
	return latest, ok
}
