package vcs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

func initRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# repo\n"), 0o644))
	tree, err := repo.Worktree()
	require.NoError(t, err)
	_, err = tree.Add("README.md")
	require.NoError(t, err)
	_, err = tree.Commit("initial commit", &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@localhost", When: time.Now()},
	})
	require.NoError(t, err)
	return dir, repo
}

func openTestWorkspace(t *testing.T, dir string) *Workspace {
	t.Helper()
	ws, err := OpenWorkspace(WorkspaceConfig{Path: dir}, nil)
	require.NoError(t, err)
	return ws
}

func TestOpenWorkspace(t *testing.T) {
	dir, _ := initRepo(t)

	ws := openTestWorkspace(t, dir)
	require.NotNil(t, ws)

	_, err := OpenWorkspace(WorkspaceConfig{Path: t.TempDir()}, nil)
	require.Error(t, err)
}

func TestCheckoutBranch(t *testing.T) {
	dir, _ := initRepo(t)
	ws := openTestWorkspace(t, dir)

	// Creates the branch on first checkout.
	require.NoError(t, ws.CheckoutBranch("enforcement"))
	branch, err := ws.Branch()
	require.NoError(t, err)
	assert.Equal(t, "enforcement", branch)

	// Checking out the same branch again reuses it.
	require.NoError(t, ws.CheckoutBranch("enforcement"))

	// Uncommitted changes survive the checkout.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pending.txt"), []byte("keep me\n"), 0o644))
	require.NoError(t, ws.CheckoutBranch("another"))
	assert.FileExists(t, filepath.Join(dir, "pending.txt"))

	require.Error(t, ws.CheckoutBranch(""))
}

func TestHasPendingChanges(t *testing.T) {
	dir, _ := initRepo(t)
	ws := openTestWorkspace(t, dir)

	pending, err := ws.HasPendingChanges()
	require.NoError(t, err)
	assert.False(t, pending)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("content\n"), 0o644))
	pending, err = ws.HasPendingChanges()
	require.NoError(t, err)
	assert.True(t, pending)
}

func TestStageAndCommit(t *testing.T) {
	dir, repo := initRepo(t)
	ws := openTestWorkspace(t, dir)

	added := filepath.Join(dir, "added.txt")
	removed := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(added, []byte("content\n"), 0o644))
	require.NoError(t, os.Remove(removed))

	require.NoError(t, ws.Stage([]engine.Change{
		{Path: added},
		{Path: removed, Removed: true},
	}))

	hash, err := ws.Commit("enforce laws")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	head, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "enforce laws", commit.Message)

	pending, err := ws.HasPendingChanges()
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestStageRejectsOutsidePaths(t *testing.T) {
	dir, _ := initRepo(t)
	ws := openTestWorkspace(t, dir)

	err := ws.Stage([]engine.Change{{Path: filepath.Join(t.TempDir(), "outside.txt")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside the repository")
}

func TestPush(t *testing.T) {
	dir, repo := initRepo(t)
	ws := openTestWorkspace(t, dir)

	remoteDir := t.TempDir()
	_, err := git.PlainInit(remoteDir, true)
	require.NoError(t, err)
	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{remoteDir},
	})
	require.NoError(t, err)

	require.NoError(t, ws.Push(context.Background()))

	// Pushing again with nothing new is not an error.
	require.NoError(t, ws.Push(context.Background()))
}
