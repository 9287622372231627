package repository

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/fs"
	fsb "github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/model"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/model/modeltest"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/timeline"
)

// fakeTransport creates mirror directories on fs and replays scripted errors.
type fakeTransport struct {
	fs fs.Filesystem

	mu       sync.Mutex
	errs     map[string][]error
	tags     map[string][]string
	branches map[string][]string
	calls    []string
	fetched  map[string]string

	// hook runs before every clone or fetch, outside the lock.
	hook func(ctx context.Context, op, path string) error
}

func newFakeTransport(fsys fs.Filesystem) *fakeTransport {
	return &fakeTransport{
		fs:       fsys,
		fetched:  make(map[string]string),
		errs:     make(map[string][]error),
		tags:     make(map[string][]string),
		branches: make(map[string][]string),
	}
}

// fail queues errors returned by the next clone or fetch calls for path.
func (f *fakeTransport) fail(path string, errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[path] = append(f.errs[path], errs...)
}

func (f *fakeTransport) next(ctx context.Context, op, path string) error {
	if f.hook != nil {
		if err := f.hook(ctx, op, path); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op+" "+path)
	if q := f.errs[path]; len(q) > 0 {
		f.errs[path] = q[1:]
		return q[0]
	}
	return nil
}

func (f *fakeTransport) Clone(ctx context.Context, _, path string) error {
	if err := f.fs.MkdirAll(path, 0o755); err != nil {
		return err
	}
	return f.next(ctx, "clone", path)
}

func (f *fakeTransport) Fetch(ctx context.Context, remoteURL, path string) error {
	f.mu.Lock()
	f.fetched[path] = remoteURL
	f.mu.Unlock()
	return f.next(ctx, "fetch", path)
}

// FetchedFrom returns the remote URL of the last fetch of path.
func (f *fakeTransport) FetchedFrom(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetched[path]
}

func (f *fakeTransport) ListTags(_ context.Context, path string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tags[path]...), nil
}

func (f *fakeTransport) ListBranches(_ context.Context, path string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.branches[path]...), nil
}

func (f *fakeTransport) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.calls...)
	sort.Strings(out)
	return out
}

type fixture struct {
	reg       *model.Registry
	fs        fs.Filesystem
	transport *fakeTransport
	sync      *Synchronizer
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	reg := modeltest.Registry()
	resolver, err := timeline.NewResolver(reg)
	require.NoError(t, err)

	fs := fsb.NewInMemoryFS()
	transport := newFakeTransport(fs)
	opts = append([]Option{WithRetry(RetryPolicy{MaxAttempts: 1})}, opts...)
	s, err := New(fs, transport, RemoteBase("https://example.com/org"), resolver, opts...)
	require.NoError(t, err)

	return &fixture{reg: reg, fs: fs, transport: transport, sync: s}
}

func (f *fixture) project(key string) *model.Project {
	return f.reg.Projects().MustGet(key)
}

func keys(outcomes []ProjectOutcome) []string {
	out := make([]string, len(outcomes))
	for i, o := range outcomes {
		out[i] = o.Project.Key()
	}
	return out
}
