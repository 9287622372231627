// Package timeline resolves the chronological neighbours of a point on the
// release timeline.
//
// The timeline is a single transition table built once from a
// model.Registry. Every transition runs in one of three lanes:
//
//	development  prev.GA -> M1 (or RC1 without milestones), Mn -> Mn+1, Mk -> RC1, RCn -> RCn+1
//	release      prev.GA -> GA
//	service      GA -> SR1, SRn -> SRn+1
//
// A point has at most one incoming transition, in the lane implied by its
// iteration class, so predecessors and per-lane successors are both read from
// the same table.
package timeline

import (
	"fmt"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/model"
)

// Lane classifies a transition on the timeline.
type Lane int

const (
	// Development leads from the previous train's GA through milestones and
	// release candidates.
	Development Lane = iota

	// Release connects the GA of consecutive trains.
	Release

	// Service leads from a train's GA through its service releases.
	Service
)

// Lanes lists every lane in a stable order.
var Lanes = []Lane{Development, Release, Service}

// String returns the lane name.
func (l Lane) String() string {
	switch l {
	case Development:
		return "development"
	case Release:
		return "release"
	case Service:
		return "service"
	default:
		return fmt.Sprintf("lane(%d)", int(l))
	}
}

// LaneOf returns the lane of the transition leading into an iteration of the given class.
func LaneOf(it model.Iteration) Lane {
	switch {
	case it.IsGA():
		return Release
	case it.IsServiceRelease():
		return Service
	default:
		return Development
	}
}

// Transition is an edge of the timeline.
type Transition struct {
	From model.TrainIteration
	To   model.TrainIteration
	Lane Lane
}

// String renders "Gosling GA -> Hopper GA (release)".
func (t Transition) String() string {
	return fmt.Sprintf("%s -> %s (%s)", t.From, t.To, t.Lane)
}

type laneKey struct {
	from model.TrainIteration
	lane Lane
}

// Resolver answers predecessor and successor queries for one registry.
// It is immutable and safe for concurrent use.
type Resolver struct {
	registry    *model.Registry
	transitions []Transition
	incoming    map[model.TrainIteration]int
	outgoing    map[laneKey]int
}

// NewResolver builds the transition table of reg.
func NewResolver(reg *model.Registry) (*Resolver, error) {
	if reg == nil {
		return nil, errors.New(errors.CodeInvalidConfig, "registry cannot be nil")
	}

	r := &Resolver{
		registry: reg,
		incoming: make(map[model.TrainIteration]int),
		outgoing: make(map[laneKey]int),
	}

	trains := reg.Trains()
	for i, t := range trains {
		var prevGA *model.TrainIteration
		if i > 0 {
			ga := trains[i-1].MustIteration(model.IterationGA)
			prevGA = &ga
		}

		lastMilestone, hasMilestones := t.LastMilestone()
		for _, it := range t.Iterations() {
			to := t.MustIteration(it)
			from, ok := source(t, it, prevGA, lastMilestone, hasMilestones)
			if !ok {
				continue
			}
			if err := r.add(Transition{From: from, To: to, Lane: LaneOf(it)}); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// source returns the origin of the transition leading into it, if any.
func source(t *model.Train, it model.Iteration, prevGA *model.TrainIteration,
	lastMilestone model.Iteration, hasMilestones bool,
) (model.TrainIteration, bool) {
	fromPrevGA := func() (model.TrainIteration, bool) {
		if prevGA == nil {
			return model.TrainIteration{}, false
		}
		return *prevGA, true
	}

	n := it.Ordinal()
	switch it.Kind() {
	case model.Milestone:
		if n == 1 {
			return fromPrevGA()
		}
		return t.MustIteration(model.M(n - 1)), true
	case model.ReleaseCandidate:
		switch {
		case n > 1:
			return t.MustIteration(model.RC(n - 1)), true
		case hasMilestones:
			return t.MustIteration(lastMilestone), true
		default:
			return fromPrevGA()
		}
	case model.ServiceRelease:
		if n == 1 {
			return t.MustIteration(model.IterationGA), true
		}
		return t.MustIteration(model.SR(n - 1)), true
	default:
		return fromPrevGA()
	}
}

func (r *Resolver) add(tr Transition) error {
	if i, dup := r.incoming[tr.To]; dup {
		return errors.Newf(errors.CodeInternal, "conflicting transitions into %s: %s and %s", tr.To, r.transitions[i], tr)
	}
	key := laneKey{from: tr.From, lane: tr.Lane}
	if i, dup := r.outgoing[key]; dup {
		return errors.Newf(errors.CodeInternal, "conflicting transitions out of %s: %s and %s", tr.From, r.transitions[i], tr)
	}

	r.transitions = append(r.transitions, tr)
	r.incoming[tr.To] = len(r.transitions) - 1
	r.outgoing[key] = len(r.transitions) - 1
	return nil
}

// Registry returns the registry the resolver was built from.
func (r *Resolver) Registry() *model.Registry { return r.registry }

// Transitions returns every transition in build order.
func (r *Resolver) Transitions() []Transition {
	return append([]Transition(nil), r.transitions...)
}

func (r *Resolver) check(ti model.TrainIteration) error {
	if ti.IsZero() || !r.registry.Contains(ti.Train()) || !ti.Train().Contains(ti.Iteration()) {
		return &errors.ForgeError{
			Code:    errors.CodeInvalidTimelinePosition,
			Message: fmt.Sprintf("%s is not a point of this timeline", ti),
			Context: map[string]interface{}{"position": ti.String()},
		}
	}
	return nil
}

func noNeighbour(ti model.TrainIteration, what string) error {
	return &errors.ForgeError{
		Code:    errors.CodeInvalidTimelinePosition,
		Message: fmt.Sprintf("%s has no %s", ti, what),
		Context: map[string]interface{}{"position": ti.String()},
	}
}

// Predecessor returns the point chronologically preceding ti. The first
// train's opening iterations have none and yield INVALID_TIMELINE_POSITION.
func (r *Resolver) Predecessor(ti model.TrainIteration) (model.TrainIteration, error) {
	tr, err := r.Incoming(ti)
	if err != nil {
		return model.TrainIteration{}, err
	}
	return tr.From, nil
}

// Incoming returns the transition leading into ti.
func (r *Resolver) Incoming(ti model.TrainIteration) (Transition, error) {
	if err := r.check(ti); err != nil {
		return Transition{}, err
	}
	i, ok := r.incoming[ti]
	if !ok {
		return Transition{}, noNeighbour(ti, "predecessor")
	}
	return r.transitions[i], nil
}

// Successor returns the point following ti in lane.
func (r *Resolver) Successor(ti model.TrainIteration, lane Lane) (model.TrainIteration, error) {
	if err := r.check(ti); err != nil {
		return model.TrainIteration{}, err
	}
	i, ok := r.outgoing[laneKey{from: ti, lane: lane}]
	if !ok {
		return model.TrainIteration{}, noNeighbour(ti, lane.String()+" successor")
	}
	return r.transitions[i].To, nil
}

// Successors returns the transitions leaving ti in lane order.
func (r *Resolver) Successors(ti model.TrainIteration) ([]Transition, error) {
	if err := r.check(ti); err != nil {
		return nil, err
	}
	var out []Transition
	for _, lane := range Lanes {
		if i, ok := r.outgoing[laneKey{from: ti, lane: lane}]; ok {
			out = append(out, r.transitions[i])
		}
	}
	return out, nil
}

// History returns ti followed by its predecessors back to the origin of the timeline.
func (r *Resolver) History(ti model.TrainIteration) ([]model.TrainIteration, error) {
	if err := r.check(ti); err != nil {
		return nil, err
	}
	out := []model.TrainIteration{ti}
	for {
		i, ok := r.incoming[out[len(out)-1]]
		if !ok {
			return out, nil
		}
		out = append(out, r.transitions[i].From)
	}
}
