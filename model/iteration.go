package model

import (
	"cmp"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
)

// IterationKind is the class of an Iteration within a train's lifecycle.
// The numeric order is the canonical order of the classes.
type IterationKind int

const (
	// Milestone is a development preview (M1, M2, ...).
	Milestone IterationKind = iota

	// ReleaseCandidate is a stabilization preview (RC1, RC2, ...).
	ReleaseCandidate

	// GA is the general availability release of a train.
	GA

	// ServiceRelease is a maintenance release after GA (SR1, SR2, ...).
	ServiceRelease
)

// String returns the short prefix of the kind.
func (k IterationKind) String() string {
	switch k {
	case Milestone:
		return "M"
	case ReleaseCandidate:
		return "RC"
	case GA:
		return "GA"
	case ServiceRelease:
		return "SR"
	default:
		return "unknown"
	}
}

// Iteration is a phase of a train. GA has ordinal 0; all other kinds count from 1.
type Iteration struct {
	kind    IterationKind
	ordinal int
}

// IterationGA is the general availability iteration.
var IterationGA = Iteration{kind: GA}

// M returns milestone n.
func M(n int) Iteration { return Iteration{kind: Milestone, ordinal: n} }

// RC returns release candidate n.
func RC(n int) Iteration { return Iteration{kind: ReleaseCandidate, ordinal: n} }

// SR returns service release n.
func SR(n int) Iteration { return Iteration{kind: ServiceRelease, ordinal: n} }

var iterationPattern = regexp.MustCompile(`^(M|RC|SR)([1-9]\d*)$`)

// ParseIteration parses "M1", "RC2", "GA" or "SR10" (case-insensitive).
func ParseIteration(raw string) (Iteration, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "GA" {
		return IterationGA, nil
	}

	m := iterationPattern.FindStringSubmatch(s)
	if m == nil {
		return Iteration{}, errors.Newf(errors.CodeInvalidInput, "invalid iteration %q", raw)
	}

	n, err := strconv.Atoi(m[2])
	if err != nil {
		return Iteration{}, errors.Wrap(err, errors.CodeInvalidInput, fmt.Sprintf("invalid iteration %q", raw))
	}

	switch m[1] {
	case "M":
		return M(n), nil
	case "RC":
		return RC(n), nil
	default:
		return SR(n), nil
	}
}

// Kind returns the iteration class.
func (i Iteration) Kind() IterationKind { return i.kind }

// Ordinal returns the position within the class, 0 for GA.
func (i Iteration) Ordinal() int { return i.ordinal }

// IsMilestone reports whether i is a milestone.
func (i Iteration) IsMilestone() bool { return i.kind == Milestone }

// IsReleaseCandidate reports whether i is a release candidate.
func (i Iteration) IsReleaseCandidate() bool { return i.kind == ReleaseCandidate }

// IsGA reports whether i is the GA iteration.
func (i Iteration) IsGA() bool { return i.kind == GA }

// IsServiceRelease reports whether i is a service release.
func (i Iteration) IsServiceRelease() bool { return i.kind == ServiceRelease }

// IsPreview reports whether i is a milestone or release candidate.
func (i Iteration) IsPreview() bool { return i.kind < GA }

// IsValid reports whether i is a well-formed iteration.
func (i Iteration) IsValid() bool {
	switch i.kind {
	case GA:
		return i.ordinal == 0
	case Milestone, ReleaseCandidate, ServiceRelease:
		return i.ordinal > 0
	default:
		return false
	}
}

// Compare orders iterations canonically: M1…Mn, RC1…RCn, GA, SR1…SRn.
func (i Iteration) Compare(o Iteration) int {
	if c := cmp.Compare(i.kind, o.kind); c != 0 {
		return c
	}
	return cmp.Compare(i.ordinal, o.ordinal)
}

// String renders M1, RC1, GA or SR1.
func (i Iteration) String() string {
	if i.kind == GA {
		return "GA"
	}
	return fmt.Sprintf("%s%d", i.kind, i.ordinal)
}

// Iterations builds the canonical sequence with the given number of
// milestones, release candidates and service releases.
func Iterations(milestones, candidates, serviceReleases int) []Iteration {
	seq := make([]Iteration, 0, milestones+candidates+serviceReleases+1)
	for n := 1; n <= milestones; n++ {
		seq = append(seq, M(n))
	}
	for n := 1; n <= candidates; n++ {
		seq = append(seq, RC(n))
	}
	seq = append(seq, IterationGA)
	for n := 1; n <= serviceReleases; n++ {
		seq = append(seq, SR(n))
	}
	return seq
}

// ValidateSequence checks that seq is canonical: classes in order, ordinals
// contiguous from 1 within each class, and exactly one GA.
func ValidateSequence(seq []Iteration) error {
	hasGA := false
	var prev *Iteration

	for idx := range seq {
		it := seq[idx]
		if !it.IsValid() {
			return errors.Newf(errors.CodeInvalidConfig, "invalid iteration %s at position %d", it, idx)
		}

		if it.IsGA() {
			if hasGA {
				return errors.New(errors.CodeInvalidConfig, "iteration sequence declares GA more than once")
			}
			hasGA = true
		}

		expected := 1
		if prev != nil && prev.kind == it.kind {
			expected = prev.ordinal + 1
		}
		if prev != nil && prev.kind > it.kind {
			return errors.Newf(errors.CodeInvalidConfig, "iteration %s must not follow %s", it, *prev)
		}
		if !it.IsGA() && it.ordinal != expected {
			return errors.Newf(errors.CodeInvalidConfig, "iteration %s out of sequence, expected %s%d", it, it.kind, expected)
		}

		prev = &seq[idx]
	}

	if !hasGA {
		return errors.New(errors.CodeInvalidConfig, "iteration sequence has no GA")
	}
	return nil
}
