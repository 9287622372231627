package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/executor"
)

type scriptedExecutor struct {
	calls  [][]string
	env    map[string]string
	result *executor.Result
	err    error
}

func (s *scriptedExecutor) Run(_ context.Context, program string, args []string, opts ...executor.Option) (*executor.Result, error) {
	var o executor.Options
	for _, opt := range opts {
		opt(&o)
	}
	s.env = o.Env
	s.calls = append(s.calls, append([]string{program}, args...))
	if s.result == nil {
		return &executor.Result{}, s.err
	}
	return s.result, s.err
}

func TestCLITransport_Commands(t *testing.T) {
	root := filepath.FromSlash("/var/mirrors")
	mirror := filepath.Join(root, "commons")
	exec := &scriptedExecutor{result: &executor.Result{Stdout: "1.12.0\n1.12.0-M1\n\n"}}
	transport := NewCLITransport(root, exec)
	ctx := context.Background()

	require.NoError(t, transport.Clone(ctx, "https://example.com/commons.git", "commons"))
	require.NoError(t, transport.Fetch(ctx, "https://example.com/commons.git", "commons"))
	require.NoError(t, transport.Fetch(ctx, "", "commons"))
	tags, err := transport.ListTags(ctx, "commons")
	require.NoError(t, err)
	_, err = transport.ListBranches(ctx, "commons")
	require.NoError(t, err)

	assert.Equal(t, []string{"1.12.0", "1.12.0-M1"}, tags)
	assert.Equal(t, [][]string{
		{"git", "clone", "--mirror", "--quiet", "https://example.com/commons.git", mirror},
		{"git", "-C", mirror, "remote", "set-url", "origin", "https://example.com/commons.git"},
		{"git", "-C", mirror, "fetch", "--prune", "--tags", "--quiet", "origin"},
		{"git", "-C", mirror, "fetch", "--prune", "--tags", "--quiet", "origin"},
		{"git", "-C", mirror, "tag", "--list"},
		{"git", "-C", mirror, "for-each-ref", "--format=%(refname:short)", "refs/heads"},
	}, exec.calls)
	assert.Equal(t, "0", exec.env["GIT_TERMINAL_PROMPT"])
}

func TestCLITransport_Failure(t *testing.T) {
	exec := &scriptedExecutor{
		result: &executor.Result{Stderr: "fatal: unable to access: Could not resolve host: example.com", ExitCode: 128},
		err:    errors.New(errors.CodeExecutionFailed, "git fetch failed"),
	}
	err := NewCLITransport("/m", exec).Fetch(context.Background(), "", "commons")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNetwork, errors.CodeOf(err))
	assert.True(t, errors.IsRetryable(err))
}

func TestClassifyStderr(t *testing.T) {
	failed := errors.New(errors.CodeExecutionFailed, "git failed")
	tests := []struct {
		stderr string
		err    error
		code   errors.ErrorCode
	}{
		{"fatal: Authentication failed for 'https://example.com/'", failed, errors.CodeUnauthorized},
		{"fatal: could not read Username for 'https://example.com'", failed, errors.CodeUnauthorized},
		{"remote: Repository not found.", failed, errors.CodeNotFound},
		{"fatal: 'x' does not appear to be a git repository", failed, errors.CodeNotFound},
		{"ssh: connect to host example.com port 22: Connection refused", failed, errors.CodeNetwork},
		{"error: RPC failed; HTTP 503 curl 22 The requested URL returned error: 503", failed, errors.CodeUnavailable},
		{"fatal: something odd", failed, errors.CodeExecutionFailed},
		{"", errors.New(errors.CodeTimeout, "interrupted"), errors.CodeTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.stderr, func(t *testing.T) {
			assert.Equal(t, tt.code, classifyStderr(tt.stderr, tt.err))
		})
	}
}

func TestRemoteResolvers(t *testing.T) {
	f := newFixture(t)
	commons := f.project("commons")

	url, err := RemoteBase("https://github.com/example/")(commons)
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/example/commons.git", url)

	_, err = RemoteBase("")(commons)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidConfig))

	url, err = RemoteMap(map[string]string{"commons": "git@example.com:commons.git"}, RemoteBase("https://x"))(commons)
	require.NoError(t, err)
	assert.Equal(t, "git@example.com:commons.git", url)

	url, err = RemoteMap(nil, RemoteBase("https://x"))(f.project("jpa"))
	require.NoError(t, err)
	assert.Equal(t, "https://x/jpa.git", url)
}
