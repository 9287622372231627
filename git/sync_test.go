package git

import (
	"context"
	"testing"

	fsb "github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneAndFetch(t *testing.T) {
	requireGitBinary(t)

	upstreamDir := t.TempDir()
	upstream := setupTestRepoOn(t, fsb.NewOSFS(upstreamDir), ".")
	upstream.tag(t, "1.0.0-M1")
	upstream.branch(t, "1.0.x")

	ctx := context.Background()
	mirrors := fsb.NewOSFS(t.TempDir())
	opts := &Options{FS: mirrors, Workdir: "commons", Mirror: true}

	repo, err := Clone(ctx, upstreamDir, opts)
	require.NoError(t, err)
	assert.True(t, repo.IsBare())

	tags, err := repo.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.0.0-M1"}, tags)

	branches, err := repo.Branches(ctx)
	require.NoError(t, err)
	assert.Contains(t, branches, "1.0.x")
	assert.Contains(t, branches, "main")

	err = repo.Fetch(ctx, "", false, 0)
	assert.ErrorIs(t, err, ErrAlreadyUpToDate)

	upstream.tag(t, "1.0.0")
	require.NoError(t, repo.Fetch(ctx, "", true, 0))

	reopened, err := Open(ctx, &Options{FS: mirrors, Workdir: "commons", Bare: true})
	require.NoError(t, err)
	tags, err = reopened.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.0.0", "1.0.0-M1"}, tags)
}

func TestSetRemote_KeepsMirrorRefspecs(t *testing.T) {
	requireGitBinary(t)

	first := t.TempDir()
	setupTestRepoOn(t, fsb.NewOSFS(first), ".")
	moved := t.TempDir()
	setupTestRepoOn(t, fsb.NewOSFS(moved), ".").tag(t, "2.0.0")

	ctx := context.Background()
	repo, err := Clone(ctx, first, &Options{FS: fsb.NewOSFS(t.TempDir()), Workdir: "commons", Mirror: true})
	require.NoError(t, err)

	before, err := repo.repo.Config()
	require.NoError(t, err)
	refspecs := before.Remotes[DefaultRemoteName].Fetch

	require.NoError(t, repo.SetRemote(ctx, DefaultRemoteName, moved))

	remotes, err := repo.Remotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Remote{{Name: DefaultRemoteName, URLs: []string{moved}}}, remotes)

	after, err := repo.repo.Config()
	require.NoError(t, err)
	assert.Equal(t, refspecs, after.Remotes[DefaultRemoteName].Fetch)

	require.NoError(t, repo.Fetch(ctx, "", false, 0))
	tags, err := repo.Tags(ctx)
	require.NoError(t, err)
	assert.Contains(t, tags, "2.0.0")
}

func TestFetch_UnknownRemote(t *testing.T) {
	tr := setupTestRepo(t)
	err := tr.repo.Fetch(tr.ctx, "nowhere", false, 0)
	assert.ErrorIs(t, err, ErrResolveFailed)
}

func TestClone_MissingRemote(t *testing.T) {
	requireGitBinary(t)

	_, err := Clone(context.Background(), t.TempDir()+"/missing", &Options{FS: fsb.NewOSFS(t.TempDir()), Bare: true})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyUpToDate)
}
