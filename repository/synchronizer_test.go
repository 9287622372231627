package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	fsb "github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/branch"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/model"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/model/modeltest"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/timeline"
)

var allProjects = []string{modeltest.Build, modeltest.Commons, modeltest.JPA, modeltest.MongoDB, modeltest.REST}

func TestNew_Validation(t *testing.T) {
	reg := modeltest.Registry()
	resolver, err := timeline.NewResolver(reg)
	require.NoError(t, err)
	f := newFixture(t)

	tests := []struct {
		name string
		fn   func() (*Synchronizer, error)
	}{
		{"nil fs", func() (*Synchronizer, error) { return New(nil, f.transport, RemoteBase("x"), resolver) }},
		{"nil billy fs", func() (*Synchronizer, error) {
			var fsys *fsb.FS
			return New(fsys, f.transport, RemoteBase("x"), resolver)
		}},
		{"nil transport", func() (*Synchronizer, error) { return New(f.fs, nil, RemoteBase("x"), resolver) }},
		{"nil remotes", func() (*Synchronizer, error) { return New(f.fs, f.transport, nil, resolver) }},
		{"nil resolver", func() (*Synchronizer, error) { return New(f.fs, f.transport, RemoteBase("x"), nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn()
			assert.True(t, errors.HasCode(err, errors.CodeInvalidConfig))
		})
	}
}

func TestUpdate_ClonesThenFetches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hopper := f.reg.MustTrain(modeltest.Hopper)

	result, err := f.sync.Update(ctx, hopper)
	require.NoError(t, err)
	require.NoError(t, result.Err())
	assert.Equal(t, allProjects, keys(result.Outcomes))
	for _, o := range result.Outcomes {
		assert.Equal(t, ActionClone, o.Action, o.Project.Key())
		assert.Equal(t, 1, o.Attempts)
		assert.True(t, f.sync.Mirrored(o.Project))
	}

	result, err = f.sync.Update(ctx, hopper)
	require.NoError(t, err)
	assert.Len(t, result.Succeeded(), 5)
	for _, o := range result.Outcomes {
		assert.Equal(t, ActionFetch, o.Action)
	}
	assert.Len(t, f.transport.Calls(), 10)
}

func TestUpdate_FetchUsesCurrentRemote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vaughan := f.reg.MustTrain(modeltest.Vaughan)

	_, err := f.sync.Update(ctx, vaughan)
	require.NoError(t, err)

	resolver, err := timeline.NewResolver(f.reg)
	require.NoError(t, err)
	moved, err := New(f.fs, f.transport, RemoteBase("https://mirror.example.com/org/"), resolver)
	require.NoError(t, err)

	result, err := moved.Update(ctx, vaughan)
	require.NoError(t, err)
	require.NoError(t, result.Err())
	for _, o := range result.Outcomes {
		assert.Equal(t, ActionFetch, o.Action)
	}
	assert.Equal(t, "https://mirror.example.com/org/jpa.git", f.transport.FetchedFrom(modeltest.JPA))
}

func TestUpdate_OnlyTrainProjects(t *testing.T) {
	f := newFixture(t)

	result, err := f.sync.Update(context.Background(), f.reg.MustTrain(modeltest.Vaughan))
	require.NoError(t, err)
	assert.Equal(t, []string{modeltest.Build, modeltest.Commons, modeltest.JPA}, keys(result.Outcomes))
	assert.False(t, f.sync.Mirrored(f.project(modeltest.REST)))
}

func TestUpdate_PartialFailure(t *testing.T) {
	f := newFixture(t)
	f.transport.fail("mongodb", errors.New(errors.CodeNotFound, "repository not found"))

	result, err := f.sync.Update(context.Background(), f.reg.MustTrain(modeltest.Hopper))
	require.NoError(t, err)
	assert.Equal(t, allProjects, keys(result.Outcomes))
	assert.Equal(t, []string{modeltest.Build, modeltest.Commons, modeltest.JPA, modeltest.REST}, keys(result.Succeeded()))

	failed := result.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, modeltest.MongoDB, failed[0].Project.Key())
	assert.Equal(t, 1, failed[0].Attempts)
	assert.True(t, errors.HasCode(failed[0].Err, errors.CodeRepositorySync))
	assert.True(t, errors.HasCode(failed[0].Err, errors.CodeNotFound))
	assert.Equal(t, "https://example.com/org/mongodb.git", errors.ContextOf(failed[0].Err)["remote"])
	assert.True(t, errors.HasCode(result.Err(), errors.CodeRepositorySync))

	_, statErr := f.fs.Stat("mongodb")
	assert.Error(t, statErr, "failed clone must not leave a partial mirror")
	assert.False(t, f.sync.Mirrored(f.project(modeltest.MongoDB)))
}

func TestUpdate_RemoteResolutionFailure(t *testing.T) {
	f := newFixture(t)
	f.sync.remotes = RemoteMap(map[string]string{modeltest.Build: "https://example.com/build.git"}, nil)

	result, err := f.sync.Update(context.Background(), f.reg.MustTrain(modeltest.Gosling))
	require.NoError(t, err)
	assert.Equal(t, []string{modeltest.Build}, keys(result.Succeeded()))
	for _, o := range result.Failed() {
		assert.Equal(t, 0, o.Attempts)
		assert.True(t, errors.HasCode(o.Err, errors.CodeNotFound))
	}
}

func TestUpdate_Retry(t *testing.T) {
	transient := errors.New(errors.CodeNetwork, "connection reset")
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	tests := []struct {
		name     string
		errs     []error
		attempts int
		ok       bool
	}{
		{"recovers", []error{transient, transient}, 3, true},
		{"exhausted", []error{transient, transient, transient, transient}, 3, false},
		{"permanent", []error{errors.New(errors.CodeUnauthorized, "denied")}, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, WithRetry(policy))
			f.transport.fail("commons", tt.errs...)

			result, err := f.sync.Update(context.Background(), f.reg.MustTrain(modeltest.Gosling))
			require.NoError(t, err)

			o, ok := result.Outcome(f.project(modeltest.Commons))
			require.True(t, ok)
			assert.Equal(t, tt.attempts, o.Attempts)
			assert.Equal(t, tt.ok, o.OK())
			assert.Equal(t, tt.ok, f.sync.Mirrored(o.Project))
		})
	}
}

func TestUpdate_OrderIndependentOfCompletion(t *testing.T) {
	f := newFixture(t, WithConcurrency(5))
	delays := map[string]time.Duration{
		"build": 40 * time.Millisecond, "commons": 30 * time.Millisecond,
		"jpa": 20 * time.Millisecond, "mongodb": 10 * time.Millisecond,
	}
	var mu sync.Mutex
	var finished []string
	f.transport.hook = func(_ context.Context, _, path string) error {
		time.Sleep(delays[path])
		mu.Lock()
		finished = append(finished, path)
		mu.Unlock()
		return nil
	}

	result, err := f.sync.Update(context.Background(), f.reg.MustTrain(modeltest.Hopper))
	require.NoError(t, err)
	assert.Equal(t, allProjects, keys(result.Outcomes))
	assert.NotEqual(t, []string{"build", "commons", "jpa", "mongodb", "rest"}, finished)
}

func TestUpdate_CanceledBeforeStart(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.sync.Update(ctx, f.reg.MustTrain(modeltest.Hopper))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeCanceled))
	assert.ErrorIs(t, err, context.Canceled)

	require.NotNil(t, result)
	assert.Equal(t, allProjects, keys(result.Outcomes))
	for _, o := range result.Outcomes {
		assert.Equal(t, ActionSkipped, o.Action)
		assert.True(t, errors.HasCode(o.Err, errors.CodeCanceled))
	}
	assert.Empty(t, f.transport.Calls())
}

func TestUpdate_CancelStopsScheduling(t *testing.T) {
	f := newFixture(t, WithConcurrency(1))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	f.transport.hook = func(ctx context.Context, _, _ string) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}
	go func() {
		<-started
		cancel()
	}()

	result, err := f.sync.Update(ctx, f.reg.MustTrain(modeltest.Hopper))
	require.Error(t, err)
	assert.Equal(t, allProjects, keys(result.Outcomes))

	first := result.Outcomes[0]
	assert.Equal(t, ActionClone, first.Action)
	assert.True(t, errors.HasCode(first.Err, errors.CodeRepositorySync))
	assert.ErrorIs(t, first.Err, context.Canceled)
	assert.False(t, f.sync.Mirrored(first.Project))

	for _, o := range result.Outcomes[1:] {
		assert.Equal(t, ActionSkipped, o.Action, o.Project.Key())
		assert.True(t, errors.HasCode(o.Err, errors.CodeCanceled))
	}
}

func TestUpdate_FetchTimeout(t *testing.T) {
	f := newFixture(t, WithFetchTimeout(20*time.Millisecond))
	f.transport.hook = func(ctx context.Context, _, path string) error {
		if path != "jpa" {
			return nil
		}
		<-ctx.Done()
		return ctx.Err()
	}

	result, err := f.sync.Update(context.Background(), f.reg.MustTrain(modeltest.Hopper))
	require.NoError(t, err, "a per-project timeout is not fatal")
	assert.Len(t, result.Succeeded(), 4)

	o, _ := result.Outcome(f.project(modeltest.JPA))
	assert.ErrorIs(t, o.Err, context.DeadlineExceeded)
	assert.True(t, errors.HasCode(o.Err, errors.CodeRepositorySync))
}

func TestUpdate_InvalidTrain(t *testing.T) {
	f := newFixture(t)

	_, err := f.sync.Update(context.Background(), nil)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	other := modeltest.Registry()
	_, err = f.sync.Update(context.Background(), other.MustTrain(modeltest.Hopper))
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestUpdate_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	f := newFixture(t, WithMetrics(m))
	f.transport.fail("mongodb", errors.New(errors.CodeNotFound, "gone"))

	_, err = f.sync.Update(context.Background(), f.reg.MustTrain(modeltest.Hopper))
	require.NoError(t, err)

	assert.InDelta(t, 1, testutil.ToFloat64(m.SyncTotal().WithLabelValues("commons", "clone", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SyncTotal().WithLabelValues("mongodb", "clone", "failure")), 0)
	assert.Equal(t, 5, testutil.CollectAndCount(m.SyncTotal()))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SyncDuration()))

	_, err = NewMetrics(reg)
	assert.Error(t, err, "registering twice must fail")
}

func TestGetTags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	commons := f.project(modeltest.Commons)

	_, err := f.sync.GetTags(ctx, commons)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound), "no mirror yet")

	_, err = f.sync.Update(ctx, f.reg.MustTrain(modeltest.Hopper))
	require.NoError(t, err)
	f.transport.tags["commons"] = []string{"1.12.0", "1.12.0-RC1", "1.12.0-M1", "latest", "1.12.0"}

	tags, err := f.sync.GetTags(ctx, commons)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.12.0-M1", "1.12.0-RC1", "1.12.0", "latest"}, tags.Names())

	_, err = f.sync.GetTags(ctx, nil)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}

func TestGetBranches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.sync.Update(ctx, f.reg.MustTrain(modeltest.Hopper))
	require.NoError(t, err)
	f.transport.branches["build"] = []string{"main", "1.8.x", "issue/GH-12", "1.8.x", "main"}

	branches, err := f.sync.GetBranches(ctx, f.project(modeltest.Build))
	require.NoError(t, err)

	names := make([]string, len(branches))
	for i, b := range branches {
		names[i] = b.Name()
	}
	assert.Equal(t, []string{"1.8.x", "GH-12", "main"}, names)
}

func TestGetPreviousIteration(t *testing.T) {
	f := newFixture(t)

	prev, err := f.sync.GetPreviousIteration(modeltest.Iteration(f.reg, modeltest.Hopper, model.IterationGA))
	require.NoError(t, err)
	assert.Equal(t, modeltest.Iteration(f.reg, modeltest.Gosling, model.IterationGA), prev)

	_, err = f.sync.GetPreviousIteration(modeltest.Iteration(f.reg, modeltest.Gosling, model.IterationGA))
	assert.True(t, errors.HasCode(err, errors.CodeInvalidTimelinePosition))
}

func TestVerify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.sync.Update(ctx, f.reg.MustTrain(modeltest.Gosling))
	require.NoError(t, err)

	f.transport.tags["build"] = []string{"1.7.0.RELEASE"}
	f.transport.branches["build"] = []string{"main"}
	f.transport.tags["commons"] = []string{"1.11.0-RC1"}
	f.transport.branches["commons"] = []string{"main"}

	v, err := f.sync.VerifyPrevious(ctx, modeltest.Iteration(f.reg, modeltest.Hopper, model.IterationGA))
	require.NoError(t, err)
	assert.Equal(t, modeltest.Iteration(f.reg, modeltest.Gosling, model.IterationGA), v.Iteration)
	require.Len(t, v.Modules, 5)
	assert.False(t, v.OK())

	build := v.Modules[0]
	assert.True(t, build.OK())
	assert.Equal(t, "1.7.0", build.Tag)
	assert.Equal(t, branch.Main, build.Branch)

	commons := v.Modules[1]
	assert.False(t, commons.TagFound)
	assert.True(t, commons.BranchFound)

	assert.Len(t, v.Problems(), 4)

	_, err = f.sync.Verify(ctx, model.TrainIteration{})
	assert.True(t, errors.HasCode(err, errors.CodeInvalidTimelinePosition))
}

func TestRetryPolicy_Delay(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, BaseDelay: 100 * time.Millisecond, MaxDelay: 350 * time.Millisecond}
	assert.Equal(t, time.Duration(0), p.Delay(0))
	assert.Equal(t, 100*time.Millisecond, p.Delay(1))
	assert.Equal(t, 200*time.Millisecond, p.Delay(2))
	assert.Equal(t, 350*time.Millisecond, p.Delay(3))
	assert.Equal(t, 350*time.Millisecond, p.Delay(10))
	assert.Equal(t, 1, RetryPolicy{}.attempts())
}
