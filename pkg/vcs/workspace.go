package vcs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/lawgiver/pkg/engine"
)

// WorkspaceConfig configures the git working copy the rules mutate.
type WorkspaceConfig struct {
	// Path is the root of the checked-out repository.
	Path string
	// Remote is the push target. Default: origin.
	Remote string
	// Token authenticates pushes over HTTPS. Empty disables auth, which
	// is fine for local remotes.
	Token string
	// AuthorName and AuthorEmail sign the enforcement commits.
	AuthorName  string
	AuthorEmail string
}

func (c *WorkspaceConfig) applyDefaults() {
	if c.Remote == "" {
		c.Remote = "origin"
	}
	if c.AuthorName == "" {
		c.AuthorName = "lawgiver"
	}
	if c.AuthorEmail == "" {
		c.AuthorEmail = "lawgiver@localhost"
	}
}

// Workspace wraps one open git repository and its worktree.
type Workspace struct {
	cfg  WorkspaceConfig
	log  *zap.Logger
	repo *git.Repository
	tree *git.Worktree
}

// OpenWorkspace opens the repository at cfg.Path.
func OpenWorkspace(cfg WorkspaceConfig, log *zap.Logger) (*Workspace, error) {
	cfg.applyDefaults()
	if log == nil {
		log = zap.NewNop()
	}

	repo, err := git.PlainOpen(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", cfg.Path, err)
	}
	tree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	return &Workspace{cfg: cfg, log: log, repo: repo, tree: tree}, nil
}

// CheckoutBranch switches to the named branch, creating it from the
// current HEAD when it does not exist yet. Uncommitted changes in the
// working tree are kept.
func (w *Workspace) CheckoutBranch(branch string) error {
	if branch == "" {
		return &engine.ConfigurationError{Reason: "branch name must not be empty"}
	}

	ref := plumbing.NewBranchReferenceName(branch)
	_, err := w.repo.Reference(ref, true)
	create := errors.Is(err, plumbing.ErrReferenceNotFound)
	if err != nil && !create {
		return fmt.Errorf("resolve branch %s: %w", branch, err)
	}

	w.log.Debug("checking out branch",
		zap.String("branch", branch),
		zap.Bool("create", create),
	)
	if err := w.tree.Checkout(&git.CheckoutOptions{
		Branch: ref,
		Create: create,
		Keep:   true,
	}); err != nil {
		return fmt.Errorf("checkout %s: %w", branch, err)
	}
	return nil
}

// Branch returns the short name of the branch HEAD points at.
func (w *Workspace) Branch() (string, error) {
	head, err := w.repo.Head()
	if err != nil {
		return "", err
	}
	if !head.Name().IsBranch() {
		return "", fmt.Errorf("HEAD is not on a branch")
	}
	return head.Name().Short(), nil
}

// HasPendingChanges reports whether the working tree differs from HEAD.
func (w *Workspace) HasPendingChanges() (bool, error) {
	status, err := w.tree.Status()
	if err != nil {
		return false, fmt.Errorf("worktree status: %w", err)
	}
	return !status.IsClean(), nil
}

// Stage adds the recorded changes to the index. Paths outside the
// repository root are rejected.
func (w *Workspace) Stage(changes []engine.Change) error {
	for _, change := range changes {
		rel, err := w.relPath(change.Path)
		if err != nil {
			return err
		}
		if change.Removed {
			if _, err := w.tree.Remove(rel); err != nil {
				// The rule already deleted the file; staging the
				// deletion through Add covers that case.
				if _, err := w.tree.Add(rel); err != nil {
					return fmt.Errorf("stage removal of %s: %w", rel, err)
				}
			}
			continue
		}
		if _, err := w.tree.Add(rel); err != nil {
			return fmt.Errorf("stage %s: %w", rel, err)
		}
	}
	return nil
}

func (w *Workspace) relPath(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(path), nil
	}
	root, err := filepath.Abs(w.cfg.Path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path %s is outside the repository", path)
	}
	return filepath.ToSlash(rel), nil
}

// Commit records the staged changes and returns the commit hash.
func (w *Workspace) Commit(message string) (string, error) {
	hash, err := w.tree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  w.cfg.AuthorName,
			Email: w.cfg.AuthorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	w.log.Info("committed changes", zap.String("hash", hash.String()))
	return hash.String(), nil
}

// Push publishes the current branch to the configured remote. An
// already up-to-date remote is not an error.
func (w *Workspace) Push(ctx context.Context) error {
	opts := &git.PushOptions{RemoteName: w.cfg.Remote}
	if w.cfg.Token != "" {
		opts.Auth = &githttp.BasicAuth{Username: "lawgiver", Password: w.cfg.Token}
	}

	w.log.Debug("pushing", zap.String("remote", w.cfg.Remote))
	if err := w.repo.PushContext(ctx, opts); err != nil {
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			return nil
		}
		return fmt.Errorf("push to %s: %w", w.cfg.Remote, err)
	}
	return nil
}
