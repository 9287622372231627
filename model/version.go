package model

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	mm "github.com/Masterminds/semver/v3"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
)

// Version is an immutable major.minor.patch triple.
type Version struct {
	major, minor, patch int
}

// NewVersion creates a Version from its components.
func NewVersion(major, minor, patch int) Version {
	return Version{major: major, minor: minor, patch: patch}
}

// ParseVersion parses a plain version such as "2.3" or "2.3.1".
// Pre-release or build suffixes are rejected.
func ParseVersion(raw string) (Version, error) {
	v, err := mm.NewVersion(strings.TrimSpace(raw))
	if err != nil {
		return Version{}, errors.Wrap(err, errors.CodeInvalidInput, fmt.Sprintf("invalid version %q", raw))
	}
	if v.Prerelease() != "" || v.Metadata() != "" {
		return Version{}, errors.Newf(errors.CodeInvalidInput, "version %q must not carry a qualifier", raw)
	}
	return fromSemver(v), nil
}

// MustParseVersion is like ParseVersion but panics on error.
func MustParseVersion(raw string) Version {
	v, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}

func fromSemver(v *mm.Version) Version {
	return Version{major: int(v.Major()), minor: int(v.Minor()), patch: int(v.Patch())}
}

// Major returns the major component.
func (v Version) Major() int { return v.major }

// Minor returns the minor component.
func (v Version) Minor() int { return v.minor }

// Patch returns the patch component.
func (v Version) Patch() int { return v.patch }

// IsZero reports whether v is 0.0.0.
func (v Version) IsZero() bool { return v == Version{} }

// WithPatch returns a copy of v with the given patch component.
func (v Version) WithPatch(patch int) Version {
	return Version{major: v.major, minor: v.minor, patch: patch}
}

// MajorMinor renders "major.minor".
func (v Version) MajorMinor() string {
	return fmt.Sprintf("%d.%d", v.major, v.minor)
}

// String renders "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

// Compare returns -1, 0 or 1 when v is lower than, equal to or greater than o.
func (v Version) Compare(o Version) int {
	if c := cmp.Compare(v.major, o.major); c != 0 {
		return c
	}
	if c := cmp.Compare(v.minor, o.minor); c != 0 {
		return c
	}
	return cmp.Compare(v.patch, o.patch)
}

// QualifierKind ranks the qualifier of an ArtifactVersion.
type QualifierKind int

const (
	// QualifierMilestone marks a milestone build such as 2.3.0-M1.
	QualifierMilestone QualifierKind = iota

	// QualifierReleaseCandidate marks a release candidate such as 2.3.0-RC1.
	QualifierReleaseCandidate

	// QualifierRelease marks a general availability or service release.
	QualifierRelease
)

// String returns the tag spelling of the qualifier kind.
func (k QualifierKind) String() string {
	switch k {
	case QualifierMilestone:
		return "M"
	case QualifierReleaseCandidate:
		return "RC"
	case QualifierRelease:
		return "RELEASE"
	default:
		return "unknown"
	}
}

// Qualifier is the release qualifier of an ArtifactVersion.
type Qualifier struct {
	Kind   QualifierKind
	Number int
}

// Release is the qualifier of GA and service releases.
var Release = Qualifier{Kind: QualifierRelease}

// Compare orders qualifiers by kind, then number.
func (q Qualifier) Compare(o Qualifier) int {
	if c := cmp.Compare(q.Kind, o.Kind); c != 0 {
		return c
	}
	return cmp.Compare(q.Number, o.Number)
}

// ArtifactVersion is the concrete version a module is published with.
// Service release N of a module with base version x.y.z is the release x.y.(z+N),
// so service releases order by N through the patch component.
type ArtifactVersion struct {
	version   Version
	qualifier Qualifier
}

// NewArtifactVersion creates an ArtifactVersion.
func NewArtifactVersion(v Version, q Qualifier) ArtifactVersion {
	if q.Kind == QualifierRelease {
		q.Number = 0
	}
	return ArtifactVersion{version: v, qualifier: q}
}

var (
	legacyTag  = regexp.MustCompile(`^(\d+\.\d+\.\d+)\.([A-Za-z]+)(\d*)$`)
	preRelease = regexp.MustCompile(`^(M|RC)(\d+)$`)
)

// ParseArtifactVersion parses a version tag. Both the current spelling
// (2.3.0-M1, 2.3.0-RC1, 2.3.0, v2.3.0) and the legacy one
// (1.12.0.M1, 1.12.0.RELEASE, 1.12.3.SR3) are accepted. Tags must spell out
// major.minor.patch, so year or major-only tags such as 2023 or v1 are
// rejected.
//
// Legacy service release tags already carry the bumped patch: 1.12.3.SR3 is
// the release 1.12.3 and the SR number only has to be consistent with it.
func ParseArtifactVersion(raw string) (ArtifactVersion, error) {
	normalized := strings.TrimPrefix(strings.TrimSpace(raw), "v")
	serviceRelease := -1
	if m := legacyTag.FindStringSubmatch(normalized); m != nil {
		switch strings.ToUpper(m[2]) {
		case "RELEASE":
			if m[3] != "" {
				return ArtifactVersion{}, errors.Newf(errors.CodeInvalidInput, "release tag %q must not be numbered", raw)
			}
			normalized = m[1]
		case "SR":
			n, err := strconv.Atoi(m[3])
			if err != nil || n == 0 {
				return ArtifactVersion{}, errors.Newf(errors.CodeInvalidInput, "service release tag %q has no number", raw)
			}
			serviceRelease = n
			normalized = m[1]
		default:
			normalized = m[1] + "-" + strings.ToUpper(m[2]) + m[3]
		}
	}

	v, err := mm.StrictNewVersion(normalized)
	if err != nil {
		return ArtifactVersion{}, errors.Wrap(err, errors.CodeInvalidInput, fmt.Sprintf("invalid version tag %q", raw))
	}
	if v.Metadata() != "" {
		return ArtifactVersion{}, errors.Newf(errors.CodeInvalidInput, "version tag %q carries build metadata", raw)
	}
	if serviceRelease > int(v.Patch()) {
		return ArtifactVersion{}, errors.Newf(errors.CodeInvalidInput,
			"service release tag %q is ahead of its patch version", raw)
	}

	base := fromSemver(v)
	if v.Prerelease() == "" {
		return NewArtifactVersion(base, Release), nil
	}

	m := preRelease.FindStringSubmatch(strings.ToUpper(v.Prerelease()))
	if m == nil {
		return ArtifactVersion{}, errors.Newf(errors.CodeInvalidInput, "unsupported qualifier %q in %q", v.Prerelease(), raw)
	}
	number, _ := strconv.Atoi(m[2])
	kind := QualifierMilestone
	if m[1] == "RC" {
		kind = QualifierReleaseCandidate
	}
	return NewArtifactVersion(base, Qualifier{Kind: kind, Number: number}), nil
}

// Version returns the version triple.
func (a ArtifactVersion) Version() Version { return a.version }

// Qualifier returns the qualifier.
func (a ArtifactVersion) Qualifier() Qualifier { return a.qualifier }

// IsRelease reports whether a is a GA or service release.
func (a ArtifactVersion) IsRelease() bool { return a.qualifier.Kind == QualifierRelease }

// IsMilestone reports whether a is a milestone.
func (a ArtifactVersion) IsMilestone() bool { return a.qualifier.Kind == QualifierMilestone }

// IsReleaseCandidate reports whether a is a release candidate.
func (a ArtifactVersion) IsReleaseCandidate() bool {
	return a.qualifier.Kind == QualifierReleaseCandidate
}

// Compare orders by version, then qualifier rank (milestone < RC < release), then number.
func (a ArtifactVersion) Compare(o ArtifactVersion) int {
	if c := a.version.Compare(o.version); c != 0 {
		return c
	}
	return a.qualifier.Compare(o.qualifier)
}

// String renders the tag spelling: 2.3.0-M1, 2.3.0-RC1, 2.3.0, 2.3.4.
func (a ArtifactVersion) String() string {
	switch a.qualifier.Kind {
	case QualifierMilestone, QualifierReleaseCandidate:
		return fmt.Sprintf("%s-%s%d", a.version, a.qualifier.Kind, a.qualifier.Number)
	default:
		return a.version.String()
	}
}

// DisplayString renders the human spelling: 2.3 M1, 2.3 RC1, 2.3 GA, 2.3.4.
func (a ArtifactVersion) DisplayString() string {
	switch {
	case a.qualifier.Kind != QualifierRelease:
		return fmt.Sprintf("%s %s%d", a.version.MajorMinor(), a.qualifier.Kind, a.qualifier.Number)
	case a.version.patch == 0:
		return a.version.MajorMinor() + " GA"
	default:
		return a.version.String()
	}
}
