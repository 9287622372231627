package git

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	fsb "github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/require"
)

// testRepo is a non-bare repository with one commit on main.
type testRepo struct {
	repo *Repo
	fs   fs.Filesystem
	ctx  context.Context
	head plumbing.Hash
}

var testSignature = &object.Signature{
	Name:  "Release Bot",
	Email: "release@example.com",
	When:  time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
}

// setupTestRepo creates a repository with an initial commit on an in-memory filesystem.
func setupTestRepo(t *testing.T) *testRepo {
	t.Helper()
	return setupTestRepoOn(t, fsb.NewInMemoryFS(), ".")
}

func setupTestRepoOn(t *testing.T, fs fs.Filesystem, dir string) *testRepo {
	t.Helper()

	ctx := context.Background()
	repo, err := Init(ctx, &Options{FS: fs, Workdir: dir})
	require.NoError(t, err, "failed to initialize test repository")

	plumbingHead := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("main"))
	require.NoError(t, repo.repo.Storer.SetReference(plumbingHead))

	wt, err := repo.repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, util.WriteFile(wt.Filesystem, "README.md", []byte("release train\n"), 0o644))
	_, err = wt.Add("README.md")
	require.NoError(t, err)

	hash, err := wt.Commit("Initial commit", &git.CommitOptions{Author: testSignature, Committer: testSignature})
	require.NoError(t, err, "failed to create initial commit")

	return &testRepo{repo: repo, fs: fs, ctx: ctx, head: hash}
}

func (tr *testRepo) tag(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		ref := plumbing.NewHashReference(plumbing.NewTagReferenceName(name), tr.head)
		require.NoError(t, tr.repo.repo.Storer.SetReference(ref))
	}
}

func (tr *testRepo) annotatedTag(t *testing.T, name string) {
	t.Helper()
	_, err := tr.repo.repo.CreateTag(name, tr.head, &git.CreateTagOptions{Tagger: testSignature, Message: name})
	require.NoError(t, err)
}

func (tr *testRepo) branch(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), tr.head)
		require.NoError(t, tr.repo.repo.Storer.SetReference(ref))
	}
}

func (tr *testRepo) remoteBranch(t *testing.T, remote string, names ...string) {
	t.Helper()
	for _, name := range names {
		ref := plumbing.NewHashReference(plumbing.NewRemoteReferenceName(remote, name), tr.head)
		require.NoError(t, tr.repo.repo.Storer.SetReference(ref))
	}
}

// requireGitBinary skips tests that go through go-git's file transport,
// which shells out to git-upload-pack.
func requireGitBinary(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}
