package repository

import (
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/model"
)

// Action is the work performed on a mirror.
type Action int

const (
	// ActionSkipped means the project was never scheduled.
	ActionSkipped Action = iota

	// ActionClone means the mirror was absent and had to be cloned.
	ActionClone

	// ActionFetch means an existing mirror was fetched.
	ActionFetch
)

// String returns the action name used in logs and metric labels.
func (a Action) String() string {
	switch a {
	case ActionClone:
		return "clone"
	case ActionFetch:
		return "fetch"
	default:
		return "skipped"
	}
}

// ProjectOutcome is the result of synchronizing one project.
type ProjectOutcome struct {
	Project  *model.Project
	Action   Action
	Attempts int
	Duration time.Duration

	// Err is nil on success. Failed syncs carry REPOSITORY_SYNC_FAILED,
	// projects that were never scheduled carry CANCELED.
	Err error
}

// OK reports whether the project was synchronized.
func (o ProjectOutcome) OK() bool { return o.Err == nil }

// UpdateResult aggregates the outcomes of Synchronizer.Update.
type UpdateResult struct {
	Train *model.Train

	// Outcomes follow the train's canonical project order.
	Outcomes []ProjectOutcome

	Duration time.Duration
}

// Succeeded returns the outcomes without error.
func (r *UpdateResult) Succeeded() []ProjectOutcome {
	return r.filter(true)
}

// Failed returns the outcomes with an error.
func (r *UpdateResult) Failed() []ProjectOutcome {
	return r.filter(false)
}

func (r *UpdateResult) filter(ok bool) []ProjectOutcome {
	var out []ProjectOutcome
	for _, o := range r.Outcomes {
		if o.OK() == ok {
			out = append(out, o)
		}
	}
	return out
}

// Outcome returns the outcome for p.
func (r *UpdateResult) Outcome(p *model.Project) (ProjectOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.Project == p {
			return o, true
		}
	}
	return ProjectOutcome{}, false
}

// Err joins every failure, or returns nil when all projects succeeded.
func (r *UpdateResult) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errors.Join(errs...)
}
