package model

import (
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
)

// Registry holds the projects and the globally ordered list of trains.
// Train order is the declaration order of the specs given to NewRegistry.
type Registry struct {
	projects *Projects
	trains   []*Train
	byName   map[string]*Train
}

// NewRegistry validates specs against projects and assigns every train its
// position in the release order.
func NewRegistry(projects *Projects, specs []TrainSpec) (*Registry, error) {
	if projects == nil {
		return nil, errors.New(errors.CodeInvalidConfig, "project registry cannot be nil")
	}

	r := &Registry{
		projects: projects,
		trains:   make([]*Train, 0, len(specs)),
		byName:   make(map[string]*Train, len(specs)),
	}
	for i, spec := range specs {
		t, err := newTrain(spec, i, projects)
		if err != nil {
			return nil, err
		}
		key := strings.ToLower(t.name)
		if _, dup := r.byName[key]; dup {
			return nil, errors.Newf(errors.CodeInvalidConfig, "train %s declared more than once", t.name)
		}
		r.byName[key] = t
		r.trains = append(r.trains, t)
	}
	return r, nil
}

// Projects returns the project registry.
func (r *Registry) Projects() *Projects { return r.projects }

// Trains returns all trains in release order.
func (r *Registry) Trains() []*Train {
	return append([]*Train(nil), r.trains...)
}

// Len returns the number of trains.
func (r *Registry) Len() int { return len(r.trains) }

// Train looks up a train by name, ignoring case.
func (r *Registry) Train(name string) (*Train, error) {
	t, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.Newf(errors.CodeNotFound, "train %q not found", name)
	}
	return t, nil
}

// MustTrain is like Train but panics when the train is unknown.
func (r *Registry) MustTrain(name string) *Train {
	t, err := r.Train(name)
	if err != nil {
		panic(err)
	}
	return t
}

// Contains reports whether t belongs to this registry.
func (r *Registry) Contains(t *Train) bool {
	return t != nil && t.index < len(r.trains) && r.trains[t.index] == t
}

// Previous returns the train released before t.
func (r *Registry) Previous(t *Train) (*Train, bool) {
	if !r.Contains(t) || t.index == 0 {
		return nil, false
	}
	return r.trains[t.index-1], true
}

// Next returns the train released after t.
func (r *Registry) Next(t *Train) (*Train, bool) {
	if !r.Contains(t) || t.index+1 >= len(r.trains) {
		return nil, false
	}
	return r.trains[t.index+1], true
}

// Latest returns the most recent train.
func (r *Registry) Latest() (*Train, bool) {
	if len(r.trains) == 0 {
		return nil, false
	}
	return r.trains[len(r.trains)-1], true
}

// Iteration resolves "Hopper SR10" style references.
func (r *Registry) Iteration(train, iteration string) (TrainIteration, error) {
	t, err := r.Train(train)
	if err != nil {
		return TrainIteration{}, err
	}
	it, err := ParseIteration(iteration)
	if err != nil {
		return TrainIteration{}, err
	}
	return t.Iteration(it)
}
