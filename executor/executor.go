// Package executor runs external programs with context cancellation, captured
// output, environment overrides and bounded retries.
package executor

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
)

// Result holds the captured output of a finished program.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Attempts int
	Duration time.Duration
}

// Executor runs programs. CommandExecutor is the os/exec implementation;
// tests substitute fakes.
type Executor interface {
	Run(ctx context.Context, program string, args []string, opts ...Option) (*Result, error)
}

// Options configures a single run.
type Options struct {
	// WorkingDir is the directory the program runs in.
	WorkingDir string

	// Env holds variables added to the current environment.
	Env map[string]string

	// Stdin is fed to the program when set.
	Stdin io.Reader

	// MaxRetries is the number of additional attempts after a failure.
	MaxRetries int

	// RetryDelay is the pause between attempts.
	RetryDelay time.Duration

	// RetryOn decides whether a failure is worth another attempt.
	// Nil retries every failure except context cancellation.
	RetryOn func(*Result, error) bool

	// StdoutWriter and StderrWriter receive a copy of the output.
	StdoutWriter io.Writer
	StderrWriter io.Writer
}

// Option is a function that modifies Options.
type Option func(*Options)

// DefaultOptions returns default execution options.
func DefaultOptions() Options {
	return Options{RetryDelay: time.Second}
}

// CommandExecutor implements Executor with os/exec.
type CommandExecutor struct {
	defaults []Option
	logger   *slog.Logger
}

// New returns an executor applying defaults to every run.
func New(defaults ...Option) *CommandExecutor {
	return &CommandExecutor{
		defaults: defaults,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithLogger sets the logger used for retry diagnostics.
func (c *CommandExecutor) WithLogger(logger *slog.Logger) *CommandExecutor {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// Run executes program with args. A non-zero exit yields an
// EXECUTION_FAILED error carrying the exit code and the trimmed stderr.
func (c *CommandExecutor) Run(ctx context.Context, program string, args []string, opts ...Option) (*Result, error) {
	options := DefaultOptions()
	for _, opt := range append(append([]Option(nil), c.defaults...), opts...) {
		opt(&options)
	}

	start := time.Now()
	var (
		result *Result
		err    error
	)
	for attempt := 1; ; attempt++ {
		result, err = runOnce(ctx, program, args, &options)
		result.Attempts = attempt
		if err == nil || attempt > options.MaxRetries || !shouldRetry(&options, result, err) {
			break
		}

		c.logger.DebugContext(ctx, "retrying command",
			"program", program, "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			result.Duration = time.Since(start)
			return result, errors.Wrap(ctx.Err(), errors.CodeCanceled, "canceled while waiting to retry "+program)
		case <-time.After(options.RetryDelay):
		}
	}
	result.Duration = time.Since(start)
	return result, err
}

func shouldRetry(o *Options, r *Result, err error) bool {
	if stderrors.Is(err, context.Canceled) {
		return false
	}
	if o.RetryOn != nil {
		return o.RetryOn(r, err)
	}
	return true
}

func runOnce(ctx context.Context, program string, args []string, o *Options) (*Result, error) {
	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Dir = o.WorkingDir
	cmd.Stdin = o.Stdin
	if len(o.Env) > 0 {
		cmd.Env = append(os.Environ(), envList(o.Env)...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = tee(&stdout, o.StdoutWriter)
	cmd.Stderr = tee(&stderr, o.StderrWriter)

	runErr := cmd.Run()
	result := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if runErr == nil {
		return result, nil
	}

	result.ExitCode = -1
	var exitErr *exec.ExitError
	if stderrors.As(runErr, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		code := errors.CodeCanceled
		if stderrors.Is(ctxErr, context.DeadlineExceeded) {
			code = errors.CodeTimeout
		}
		return result, errors.Wrap(ctxErr, code, program+" interrupted")
	}

	return result, errors.WrapWithContext(runErr, errors.CodeExecutionFailed,
		fmt.Sprintf("%s %s failed", program, strings.Join(args, " ")),
		map[string]interface{}{
			"program":   program,
			"exit_code": result.ExitCode,
			"stderr":    strings.TrimSpace(result.Stderr),
		})
}

func tee(buf *bytes.Buffer, extra io.Writer) io.Writer {
	if extra == nil {
		return buf
	}
	return io.MultiWriter(buf, extra)
}

func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}

// Wrapped binds an Executor to one program, e.g. git.
type Wrapped struct {
	exec    Executor
	program string
	opts    []Option
}

// NewWrapped returns a runner for program using exec.
func NewWrapped(exec Executor, program string, opts ...Option) *Wrapped {
	return &Wrapped{exec: exec, program: program, opts: opts}
}

// Program returns the wrapped program name.
func (w *Wrapped) Program() string { return w.program }

// Run executes the wrapped program with args.
func (w *Wrapped) Run(ctx context.Context, args []string, opts ...Option) (*Result, error) {
	return w.exec.Run(ctx, w.program, args, append(append([]Option(nil), w.opts...), opts...)...)
}

// WithWorkingDir sets the working directory.
func WithWorkingDir(dir string) Option {
	return func(o *Options) { o.WorkingDir = dir }
}

// WithEnv adds environment variables.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string, len(env))
		}
		for k, v := range env {
			o.Env[k] = v
		}
	}
}

// WithEnvVar adds a single environment variable.
func WithEnvVar(key, value string) Option {
	return WithEnv(map[string]string{key: value})
}

// WithStdin feeds r to the program.
func WithStdin(r io.Reader) Option {
	return func(o *Options) { o.Stdin = r }
}

// WithRetry configures retry behavior.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(o *Options) {
		o.MaxRetries = maxRetries
		o.RetryDelay = delay
	}
}

// WithRetryCondition sets a custom retry condition.
func WithRetryCondition(fn func(*Result, error) bool) Option {
	return func(o *Options) { o.RetryOn = fn }
}

// WithStdoutWriter copies stdout to w.
func WithStdoutWriter(w io.Writer) Option {
	return func(o *Options) { o.StdoutWriter = w }
}

// WithStderrWriter copies stderr to w.
func WithStderrWriter(w io.Writer) Option {
	return func(o *Options) { o.StderrWriter = w }
}
