package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Fetch updates remote-tracking refs.
func (c *CLI) Fetch(ctx context.Context, repo string) error {
	return c.run(ctx, "fetch", repo, "fetch", "--prune")
}

// Pull merges the upstream branch into the current branch.
func (c *CLI) Pull(ctx context.Context, repo string) error {
	return c.run(ctx, "pull", repo, "pull", "--no-rebase", "--no-edit")
}

// Push pushes the current branch. A branch without an upstream is pushed to
// origin with tracking set up.
func (c *CLI) Push(ctx context.Context, repo string) error {
	err := c.run(ctx, "push", repo, "push")
	if err == nil || !needsUpstream(err) {
		return err
	}
	branch, berr := c.output(ctx, "push", repo, "rev-parse", "--abbrev-ref", "HEAD")
	if berr != nil {
		return err
	}
	c.logger.Debug("push: setting upstream", "path", repo, "branch", branch)
	return c.run(ctx, "push", repo, "push", "-u", "origin", branch)
}

func needsUpstream(err error) bool {
	var be *Error
	if !errors.As(err, &be) {
		return false
	}
	msg := strings.ToLower(be.Message)
	return strings.Contains(msg, "has no upstream branch") ||
		strings.Contains(msg, "no configured push destination")
}

// PushInitial pushes HEAD to origin and sets the upstream.
func (c *CLI) PushInitial(ctx context.Context, repo string) error {
	return c.run(ctx, "push", repo, "push", "-u", "origin", "HEAD")
}

// Commit records the staged changes. An empty index is not an error.
func (c *CLI) Commit(ctx context.Context, repo, message string) error {
	err := c.run(ctx, "commit", repo, "commit", "-m", message)
	var be *Error
	if errors.As(err, &be) && strings.Contains(be.Message, "nothing to commit") {
		return nil
	}
	return err
}

// Checkout switches to an existing branch. Remote-tracking names such as
// origin/feature create a local tracking branch.
func (c *CLI) Checkout(ctx context.Context, repo, branch string) error {
	if branch == "" {
		return Errorf(KindValidation, "checkout", "branch name is required")
	}
	return c.run(ctx, "checkout", repo, "checkout", branch)
}

// CreateBranch creates branch at HEAD and switches to it.
func (c *CLI) CreateBranch(ctx context.Context, repo, branch string) error {
	if strings.TrimSpace(branch) == "" {
		return Errorf(KindValidation, "create-branch", "branch name is required")
	}
	return c.run(ctx, "create-branch", repo, "checkout", "-b", branch)
}

// CreateBranchFromCommit creates branch at hash and switches to it.
func (c *CLI) CreateBranchFromCommit(ctx context.Context, repo, branch, hash string) error {
	if strings.TrimSpace(branch) == "" {
		return Errorf(KindValidation, "create-branch", "branch name is required")
	}
	return c.run(ctx, "create-branch", repo, "checkout", "-b", branch, hash)
}

// CheckoutCommit detaches HEAD at hash.
func (c *CLI) CheckoutCommit(ctx context.Context, repo, hash string) error {
	return c.run(ctx, "checkout-commit", repo, "checkout", "--detach", hash)
}

// UndoCommit moves HEAD back one commit, keeping its changes staged.
func (c *CLI) UndoCommit(ctx context.Context, repo string) error {
	return c.run(ctx, "undo-commit", repo, "reset", "--soft", "HEAD~1")
}

// ResolveConflict takes one side of a conflicted file and marks it resolved.
func (c *CLI) ResolveConflict(ctx context.Context, repo, file string, res Resolution) error {
	var side string
	switch res {
	case ResolveOurs:
		side = "--ours"
	case ResolveTheirs:
		side = "--theirs"
	default:
		return Errorf(KindValidation, "resolve", "unknown resolution %q", res)
	}
	if err := c.run(ctx, "resolve", repo, "checkout", side, "--", file); err != nil {
		return err
	}
	return c.run(ctx, "resolve", repo, "add", "--", file)
}

// Discard throws away every change to file. Tracked files are restored from
// HEAD; untracked files are removed.
func (c *CLI) Discard(ctx context.Context, repo, file string) error {
	if err := c.run(ctx, "discard", repo, "restore", "--staged", "--worktree", "--", file); err == nil {
		return nil
	}
	if err := c.run(ctx, "discard", repo, "restore", "--", file); err == nil {
		return nil
	}
	return c.run(ctx, "discard", repo, "clean", "-f", "--", file)
}

// AddToGitignore appends pattern to the repository's .gitignore unless it is
// already listed.
func (c *CLI) AddToGitignore(ctx context.Context, repo, pattern string) error {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return Errorf(KindValidation, "gitignore", "pattern is required")
	}
	path := filepath.Join(repo, ".gitignore")
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return &Error{Kind: KindUnknown, Op: "gitignore", Message: err.Error(), Err: err}
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == pattern {
			return nil
		}
	}

	var b strings.Builder
	b.Write(data)
	if len(data) > 0 && !strings.HasSuffix(string(data), "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(pattern)
	b.WriteByte('\n')
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return &Error{Kind: KindUnknown, Op: "gitignore", Message: err.Error(), Err: err}
	}
	return nil
}

// Stage adds file to the index.
func (c *CLI) Stage(ctx context.Context, repo, file string) error {
	return c.run(ctx, "stage", repo, "add", "--", file)
}

// StageAll adds every change, including untracked files.
func (c *CLI) StageAll(ctx context.Context, repo string) error {
	return c.run(ctx, "stage", repo, "add", "-A")
}

// Unstage removes file from the index. Repositories without commits have no
// HEAD to restore from, so the entry is dropped from the index instead.
func (c *CLI) Unstage(ctx context.Context, repo, file string) error {
	err := c.run(ctx, "unstage", repo, "restore", "--staged", "--", file)
	if err == nil {
		return nil
	}
	if rmErr := c.run(ctx, "unstage", repo, "rm", "--cached", "-q", "--", file); rmErr == nil {
		return nil
	}
	return err
}

// ResetToCommit hard-resets the current branch to hash.
func (c *CLI) ResetToCommit(ctx context.Context, repo, hash string) error {
	return c.run(ctx, "reset", repo, "reset", "--hard", hash)
}

// RevertCommit creates a commit undoing hash.
func (c *CLI) RevertCommit(ctx context.Context, repo, hash string) error {
	return c.run(ctx, "revert", repo, "revert", "--no-edit", hash)
}

// CherryPick applies hash on top of HEAD.
func (c *CLI) CherryPick(ctx context.Context, repo, hash string) error {
	return c.run(ctx, "cherry-pick", repo, "cherry-pick", hash)
}

// MergeInProgress reports whether a merge is waiting to be concluded.
func (c *CLI) MergeInProgress(ctx context.Context, repo string) (bool, error) {
	path, err := c.output(ctx, "merge-state", repo, "rev-parse", "--git-path", "MERGE_HEAD")
	if err != nil {
		return false, err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(repo, path)
	}
	_, statErr := os.Stat(path)
	return statErr == nil, nil
}

// ContinueMerge concludes a merge whose conflicts have been resolved.
func (c *CLI) ContinueMerge(ctx context.Context, repo string) error {
	return c.run(ctx, "continue-merge", repo, "-c", "core.editor=true", "commit", "--no-edit")
}

// AbortMerge abandons the merge in progress.
func (c *CLI) AbortMerge(ctx context.Context, repo string) error {
	return c.run(ctx, "abort-merge", repo, "merge", "--abort")
}

// Init creates dir if needed and initializes a repository on branch main.
func (c *CLI) Init(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &Error{Kind: KindValidation, Op: "init", Message: err.Error(), Err: err}
	}
	if err := c.run(ctx, "init", dir, "init"); err != nil {
		return err
	}
	return c.run(ctx, "init", dir, "symbolic-ref", "HEAD", "refs/heads/main")
}

// Clone clones url into dest. dest must not exist or be an empty directory.
func (c *CLI) Clone(ctx context.Context, url, dest string) error {
	if strings.TrimSpace(url) == "" {
		return Errorf(KindValidation, "clone", "repository URL is required")
	}
	if entries, err := os.ReadDir(dest); err == nil && len(entries) > 0 {
		return Errorf(KindValidation, "clone", "destination %s already exists and is not empty", dest)
	}
	parent := filepath.Dir(dest)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return &Error{Kind: KindValidation, Op: "clone", Message: err.Error(), Err: err}
	}
	return c.run(ctx, "clone", parent, "clone", "--", url, dest)
}

// SetRemote points remote name at url, adding the remote if it is missing.
func (c *CLI) SetRemote(ctx context.Context, repo, name, url string) error {
	if _, err := c.output(ctx, "set-remote", repo, "remote", "get-url", name); err == nil {
		return c.run(ctx, "set-remote", repo, "remote", "set-url", name, url)
	}
	return c.run(ctx, "set-remote", repo, "remote", "add", name, url)
}

// HasChanges reports whether the working tree differs from HEAD in any way.
func (c *CLI) HasChanges(ctx context.Context, repo string) (bool, error) {
	out, err := c.output(ctx, "status", repo, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// remoteURL returns origin's URL, or "" when there is none.
func (c *CLI) remoteURL(ctx context.Context, repo string) string {
	out, err := c.output(ctx, "remote-url", repo, "remote", "get-url", "origin")
	if err != nil {
		return ""
	}
	return out
}
