package repository

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/executor"
)

// CLITransport implements Transport with the git binary. Mirrors live below
// root on the local disk, which should be the root of the Synchronizer's
// filesystem.
type CLITransport struct {
	root string
	git  *executor.Wrapped
}

// NewCLITransport returns a transport running git through exec. A nil exec
// uses an os/exec backed executor.
func NewCLITransport(root string, exec executor.Executor) *CLITransport {
	if exec == nil {
		exec = executor.New()
	}
	return &CLITransport{
		root: root,
		git:  executor.NewWrapped(exec, "git", executor.WithEnvVar("GIT_TERMINAL_PROMPT", "0")),
	}
}

func (t *CLITransport) path(localPath string) string {
	return filepath.Join(t.root, filepath.FromSlash(localPath))
}

func (t *CLITransport) run(ctx context.Context, op string, args ...string) (string, error) {
	res, err := t.git.Run(ctx, args)
	if err != nil {
		stderr := ""
		if res != nil {
			stderr = res.Stderr
		}
		return "", errors.WrapWithContext(err, classifyStderr(stderr, err), op,
			map[string]interface{}{"args": strings.Join(args, " ")})
	}
	return res.Stdout, nil
}

// Clone implements Transport.
func (t *CLITransport) Clone(ctx context.Context, remoteURL, localPath string) error {
	_, err := t.run(ctx, "clone "+remoteURL, "clone", "--mirror", "--quiet", remoteURL, t.path(localPath))
	return err
}

// Fetch implements Transport.
func (t *CLITransport) Fetch(ctx context.Context, remoteURL, localPath string) error {
	dir := t.path(localPath)
	if remoteURL != "" {
		if _, err := t.run(ctx, "repoint origin of "+localPath, "-C", dir, "remote", "set-url", "origin", remoteURL); err != nil {
			return err
		}
	}
	_, err := t.run(ctx, "fetch "+localPath, "-C", dir, "fetch", "--prune", "--tags", "--quiet", "origin")
	return err
}

// ListTags implements Transport.
func (t *CLITransport) ListTags(ctx context.Context, localPath string) ([]string, error) {
	out, err := t.run(ctx, "list tags of "+localPath, "-C", t.path(localPath), "tag", "--list")
	if err != nil {
		return nil, err
	}
	return lines(out), nil
}

// ListBranches implements Transport.
func (t *CLITransport) ListBranches(ctx context.Context, localPath string) ([]string, error) {
	out, err := t.run(ctx, "list branches of "+localPath,
		"-C", t.path(localPath), "for-each-ref", "--format=%(refname:short)", "refs/heads")
	if err != nil {
		return nil, err
	}
	return lines(out), nil
}

func lines(out string) []string {
	var names []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	return names
}

// classifyStderr maps git's diagnostics to an error code.
func classifyStderr(stderr string, err error) errors.ErrorCode {
	switch code := errors.CodeOf(err); code {
	case errors.CodeCanceled, errors.CodeTimeout:
		return code
	}

	s := strings.ToLower(stderr)
	switch {
	case strings.Contains(s, "authentication failed"),
		strings.Contains(s, "could not read username"),
		strings.Contains(s, "permission denied"):
		return errors.CodeUnauthorized
	case strings.Contains(s, "repository not found"),
		strings.Contains(s, "does not appear to be a git repository"),
		strings.Contains(s, "not a git repository"):
		return errors.CodeNotFound
	case strings.Contains(s, "could not resolve host"),
		strings.Contains(s, "connection"),
		strings.Contains(s, "timed out"),
		strings.Contains(s, "early eof"):
		return errors.CodeNetwork
	case strings.Contains(s, "returned error: 5"):
		return errors.CodeUnavailable
	default:
		return errors.CodeExecutionFailed
	}
}
