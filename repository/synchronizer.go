package repository

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/branch"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/internal/fsbridge"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/model"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/timeline"
)

const (
	// DefaultConcurrency is the number of mirrors synchronized in parallel.
	DefaultConcurrency = 4

	// DefaultFetchTimeout bounds a single clone or fetch attempt.
	DefaultFetchTimeout = 5 * time.Minute
)

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synchronizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithConcurrency sets the worker pool size.
func WithConcurrency(n int) Option {
	return func(s *Synchronizer) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithFetchTimeout bounds every clone or fetch attempt. Zero disables the bound.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d >= 0 {
			s.fetchTimeout = d
		}
	}
}

// WithRetry sets the retry policy for retryable failures.
func WithRetry(p RetryPolicy) Option {
	return func(s *Synchronizer) { s.retry = p }
}

// WithMetrics records outcomes in m.
func WithMetrics(m *Metrics) Option {
	return func(s *Synchronizer) { s.metrics = m }
}

// Synchronizer maintains one mirror per project below the root of its
// filesystem, named after the project's repository. It is safe for
// concurrent use. Writes to a mirror are serialized per project.
type Synchronizer struct {
	fs        fs.Filesystem
	raw       billy.Filesystem
	transport Transport
	remotes   RemoteResolver
	resolver  *timeline.Resolver

	logger       *slog.Logger
	concurrency  int
	fetchTimeout time.Duration
	retry        RetryPolicy
	metrics      *Metrics

	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

// New creates a Synchronizer keeping its mirrors on fsys, which must be
// backed by go-billy (fs/billy).
func New(fsys fs.Filesystem, transport Transport, remotes RemoteResolver,
	resolver *timeline.Resolver, opts ...Option,
) (*Synchronizer, error) {
	switch {
	case fsys == nil:
		return nil, errors.New(errors.CodeInvalidConfig, "filesystem cannot be nil")
	case transport == nil:
		return nil, errors.New(errors.CodeInvalidConfig, "transport cannot be nil")
	case remotes == nil:
		return nil, errors.New(errors.CodeInvalidConfig, "remote resolver cannot be nil")
	case resolver == nil:
		return nil, errors.New(errors.CodeInvalidConfig, "timeline resolver cannot be nil")
	}
	raw, err := fsbridge.ToBillyFilesystem(fsys)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "unsupported workspace filesystem")
	}

	s := &Synchronizer{
		fs:           fsys,
		raw:          raw,
		transport:    transport,
		remotes:      remotes,
		resolver:     resolver,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		concurrency:  DefaultConcurrency,
		fetchTimeout: DefaultFetchTimeout,
		retry:        DefaultRetryPolicy(),
		locks:        make(map[string]*sync.RWMutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Synchronizer) lock(p *model.Project) *sync.RWMutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[p.Repository()]
	if !ok {
		l = &sync.RWMutex{}
		s.locks[p.Repository()] = l
	}
	return l
}

func (s *Synchronizer) exists(path string) bool {
	ok, err := s.fs.Exists(path)
	return err == nil && ok
}

func (s *Synchronizer) checkProject(p *model.Project) error {
	if p == nil {
		return errors.New(errors.CodeInvalidInput, "project cannot be nil")
	}
	if !s.resolver.Registry().Projects().Contains(p) {
		return errors.Newf(errors.CodeNotFound, "project %s is not part of the registry", p.Key())
	}
	return nil
}

// Update clones or fetches the mirror of every project supported by train.
//
// A failing project does not stop the others; its outcome carries a
// REPOSITORY_SYNC_FAILED error. When ctx is canceled no further projects are
// scheduled, in-flight work is aborted, unscheduled projects are reported as
// CANCELED, and Update returns the partial result together with the
// context error. Outcomes always follow train.Projects() order.
func (s *Synchronizer) Update(ctx context.Context, train *model.Train) (*UpdateResult, error) {
	if train == nil {
		return nil, errors.New(errors.CodeInvalidInput, "train cannot be nil")
	}
	if !s.resolver.Registry().Contains(train) {
		return nil, errors.Newf(errors.CodeNotFound, "train %s is not part of the registry", train.Name())
	}

	start := time.Now()
	projects := train.Projects()
	result := &UpdateResult{Train: train, Outcomes: make([]ProjectOutcome, len(projects))}

	s.logger.InfoContext(ctx, "updating mirrors",
		"train", train.Name(), "projects", len(projects), "concurrency", s.concurrency)

	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	scheduled := 0
schedule:
	for i, p := range projects {
		if ctx.Err() != nil {
			break
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break schedule
		}

		scheduled++
		wg.Add(1)
		go func(i int, p *model.Project) {
			defer wg.Done()
			defer func() { <-sem }()
			result.Outcomes[i] = s.syncProject(ctx, p)
		}(i, p)
	}

	for i := scheduled; i < len(projects); i++ {
		o := ProjectOutcome{
			Project: projects[i],
			Action:  ActionSkipped,
			Err: errors.WrapWithContext(ctx.Err(), errors.CodeCanceled,
				"synchronization was not scheduled", map[string]interface{}{"project": projects[i].Key()}),
		}
		s.metrics.observe(o)
		result.Outcomes[i] = o
	}

	wg.Wait()
	result.Duration = time.Since(start)

	failed := len(result.Failed())
	s.logger.InfoContext(ctx, "mirrors updated",
		"train", train.Name(), "succeeded", len(projects)-failed, "failed", failed, "duration", result.Duration)

	if err := ctx.Err(); err != nil {
		return result, errors.Wrap(err, errors.CodeCanceled, "update of train "+train.Name()+" interrupted")
	}
	return result, nil
}

func (s *Synchronizer) syncProject(ctx context.Context, p *model.Project) ProjectOutcome {
	start := time.Now()
	path := p.Repository()
	outcome := ProjectOutcome{Project: p, Action: ActionFetch}

	l := s.lock(p)
	l.Lock()
	defer l.Unlock()

	remote, err := s.remotes(p)
	if err == nil && !s.exists(path) {
		outcome.Action = ActionClone
	}

	for err == nil {
		outcome.Attempts++
		err = s.attempt(ctx, outcome.Action, remote, path)
		if err == nil {
			break
		}
		if outcome.Attempts >= s.retry.attempts() || !errors.IsRetryable(err) || ctx.Err() != nil {
			break
		}

		delay := s.retry.Delay(outcome.Attempts)
		s.logger.WarnContext(ctx, "retrying mirror sync",
			"project", p.Key(), "action", outcome.Action.String(),
			"attempt", outcome.Attempts, "delay", delay, "error", err)
		if serr := sleep(ctx, delay); serr != nil {
			break
		}
		err = nil
	}
	outcome.Duration = time.Since(start)

	if err != nil {
		outcome.Err = &errors.ForgeError{
			Code:    errors.CodeRepositorySync,
			Message: fmt.Sprintf("%s of %s failed", outcome.Action, p.Key()),
			Context: map[string]interface{}{
				"project":  p.Key(),
				"remote":   remote,
				"attempts": outcome.Attempts,
			},
			Cause: err,
		}
		s.logger.ErrorContext(ctx, "mirror sync failed",
			"project", p.Key(), "action", outcome.Action.String(), "attempts", outcome.Attempts, "error", err)
	} else {
		s.logger.DebugContext(ctx, "mirror synchronized",
			"project", p.Key(), "action", outcome.Action.String(), "duration", outcome.Duration)
	}

	s.metrics.observe(outcome)
	return outcome
}

func (s *Synchronizer) attempt(ctx context.Context, action Action, remote, path string) error {
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	if action == ActionFetch {
		return s.transport.Fetch(ctx, remote, path)
	}

	err := s.transport.Clone(ctx, remote, path)
	if err != nil && s.exists(path) {
		if rmErr := util.RemoveAll(s.raw, path); rmErr != nil {
			return errors.Join(err, errors.Wrap(rmErr, errors.CodeInternal, "remove partial mirror "+path))
		}
	}
	return err
}

// Mirrored reports whether a local mirror of p exists.
func (s *Synchronizer) Mirrored(p *model.Project) bool {
	if p == nil {
		return false
	}
	l := s.lock(p)
	l.RLock()
	defer l.RUnlock()
	return s.exists(p.Repository())
}

func (s *Synchronizer) read(ctx context.Context, p *model.Project, list func(context.Context, string) ([]string, error)) ([]string, error) {
	if err := s.checkProject(p); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeCanceled, "read of "+p.Key()+" canceled")
	}

	l := s.lock(p)
	l.RLock()
	defer l.RUnlock()

	if !s.exists(p.Repository()) {
		return nil, errors.Newf(errors.CodeNotFound, "no mirror of %s; run Update first", p.Key())
	}
	return list(ctx, p.Repository())
}

// GetTags returns the tag set of p's mirror.
func (s *Synchronizer) GetTags(ctx context.Context, p *model.Project) (Tags, error) {
	names, err := s.read(ctx, p, s.transport.ListTags)
	if err != nil {
		return Tags{}, err
	}
	return NewTags(names), nil
}

// GetBranches returns the branches of p's mirror, deduplicated and sorted.
// Names that do not form a branch are skipped.
func (s *Synchronizer) GetBranches(ctx context.Context, p *model.Project) ([]branch.Branch, error) {
	names, err := s.read(ctx, p, s.transport.ListBranches)
	if err != nil {
		return nil, err
	}

	seen := make(map[branch.Branch]struct{}, len(names))
	out := make([]branch.Branch, 0, len(names))
	for _, name := range names {
		b, err := branch.FromRawName(name)
		if err != nil {
			continue
		}
		if _, dup := seen[b]; dup {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	branch.Sort(out)
	return out, nil
}

// GetPreviousIteration returns the point preceding ti on the timeline.
func (s *Synchronizer) GetPreviousIteration(ti model.TrainIteration) (model.TrainIteration, error) {
	return s.resolver.Predecessor(ti)
}
