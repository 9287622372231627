package executor_test

import (
	"bytes"
	"context"
	"os/exec"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/executor"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestRun_CapturesOutput(t *testing.T) {
	requireShell(t)

	var tee bytes.Buffer
	result, err := executor.New().Run(context.Background(), "sh",
		[]string{"-c", `printf "$GREETING"; printf oops >&2`},
		executor.WithEnvVar("GREETING", "hello"),
		executor.WithStdoutWriter(&tee),
	)
	require.NoError(t, err)
	assert.Equal(t, "hello", result.Stdout)
	assert.Equal(t, "oops", result.Stderr)
	assert.Equal(t, "hello", tee.String())
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, 1, result.Attempts)
}

func TestRun_WorkingDirAndStdin(t *testing.T) {
	requireShell(t)

	dir := t.TempDir()
	result, err := executor.New(executor.WithWorkingDir(dir)).Run(context.Background(), "sh",
		[]string{"-c", "pwd; cat"}, executor.WithStdin(strings.NewReader("input")))
	require.NoError(t, err)
	assert.Contains(t, result.Stdout, "input")
	assert.Contains(t, result.Stdout, strings.TrimPrefix(dir, "/private"))
}

func TestRun_ExitCode(t *testing.T) {
	requireShell(t)

	result, err := executor.New().Run(context.Background(), "sh", []string{"-c", "echo fatal: nope >&2; exit 3"})
	require.Error(t, err)
	assert.Equal(t, 3, result.ExitCode)
	assert.True(t, errors.HasCode(err, errors.CodeExecutionFailed))
	ctx := errors.ContextOf(err)
	assert.Equal(t, 3, ctx["exit_code"])
	assert.Equal(t, "fatal: nope", ctx["stderr"])
}

func TestRun_Retries(t *testing.T) {
	requireShell(t)

	marker := t.TempDir() + "/marker"
	script := `if [ -f "` + marker + `" ]; then echo ok; else touch "` + marker + `"; exit 1; fi`

	result, err := executor.New().Run(context.Background(), "sh", []string{"-c", script},
		executor.WithRetry(2, time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, "ok\n", result.Stdout)
}

func TestRun_RetryCondition(t *testing.T) {
	requireShell(t)

	calls := 0
	result, err := executor.New().Run(context.Background(), "sh", []string{"-c", "exit 128"},
		executor.WithRetry(5, time.Millisecond),
		executor.WithRetryCondition(func(r *executor.Result, _ error) bool {
			calls++
			return r.ExitCode != 128
		}))
	require.Error(t, err)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 1, calls)
}

func TestRun_Timeout(t *testing.T) {
	requireShell(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := executor.New().Run(ctx, "sh", []string{"-c", "sleep 5"}, executor.WithRetry(3, time.Millisecond))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeTimeout))
}

func TestRun_MissingProgram(t *testing.T) {
	result, err := executor.New().Run(context.Background(), "definitely-not-a-program-xyz", nil)
	require.Error(t, err)
	assert.Equal(t, -1, result.ExitCode)
	assert.True(t, errors.HasCode(err, errors.CodeExecutionFailed))
}

type recordingExecutor struct {
	program string
	args    []string
	opts    executor.Options
}

func (r *recordingExecutor) Run(_ context.Context, program string, args []string, opts ...executor.Option) (*executor.Result, error) {
	r.program, r.args = program, args
	for _, o := range opts {
		o(&r.opts)
	}
	return &executor.Result{Stdout: "git version 2.45.0"}, nil
}

func TestWrapped(t *testing.T) {
	rec := &recordingExecutor{}
	git := executor.NewWrapped(rec, "git", executor.WithEnvVar("GIT_TERMINAL_PROMPT", "0"))

	result, err := git.Run(context.Background(), []string{"version"}, executor.WithWorkingDir("/tmp"))
	require.NoError(t, err)
	assert.Equal(t, "git", git.Program())
	assert.Equal(t, "git version 2.45.0", result.Stdout)
	assert.Equal(t, []string{"version"}, rec.args)
	assert.Equal(t, "0", rec.opts.Env["GIT_TERMINAL_PROMPT"])
	assert.Equal(t, "/tmp", rec.opts.WorkingDir)
}
