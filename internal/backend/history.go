package backend

import (
	"bufio"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// DefaultHistoryLimit is the number of commits loaded for the history list.
const DefaultHistoryLimit = 50

// Branches lists local and remote-tracking branches.
func (c *CLI) Branches(ctx context.Context, repo string) ([]Branch, error) {
	out, err := c.output(ctx, "list-branches", repo,
		"branch", "-a", "--format=%(refname)%09%(HEAD)%09%(upstream:short)")
	if err != nil {
		return nil, err
	}
	return ParseBranches(out), nil
}

// ParseBranches parses `git branch -a --format=%(refname)\t%(HEAD)\t%(upstream:short)`.
func ParseBranches(out string) []Branch {
	var branches []Branch
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), "\t")
		if len(parts) == 0 || parts[0] == "" {
			continue
		}
		ref := parts[0]
		b := Branch{
			IsCurrent: len(parts) > 1 && parts[1] == "*",
			IsRemote:  strings.HasPrefix(ref, "refs/remotes/"),
		}
		if len(parts) > 2 {
			b.Upstream = parts[2]
		}
		switch {
		case strings.HasPrefix(ref, "refs/heads/"):
			b.Name = strings.TrimPrefix(ref, "refs/heads/")
		case strings.HasPrefix(ref, "refs/remotes/"):
			b.Name = strings.TrimPrefix(ref, "refs/remotes/")
		default:
			b.Name = ref
		}
		// Symbolic refs such as origin/HEAD
		if strings.HasSuffix(b.Name, "/HEAD") {
			continue
		}
		branches = append(branches, b)
	}
	return branches
}

const historyFormat = "%H%x09%h%x09%an%x09%ae%x09%aI%x09%s"

// History returns up to limit commits reachable from HEAD, newest first.
func (c *CLI) History(ctx context.Context, repo string, limit int) ([]CommitInfo, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	out, err := c.output(ctx, "history", repo,
		"log", "-n", strconv.Itoa(limit), "--format="+historyFormat)
	if err != nil {
		var be *Error
		if errors.As(err, &be) && strings.Contains(be.Message, "does not have any commits") {
			return []CommitInfo{}, nil
		}
		return nil, err
	}
	return ParseHistory(out), nil
}

// ParseHistory parses log output produced with historyFormat.
func ParseHistory(out string) []CommitInfo {
	commits := []CommitInfo{}
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		parts := strings.SplitN(scanner.Text(), "\t", 6)
		if len(parts) < 6 {
			continue
		}
		ts, _ := time.Parse(time.RFC3339, parts[4])
		commits = append(commits, CommitInfo{
			Hash:      parts[0],
			ShortHash: parts[1],
			Author:    parts[2],
			Email:     parts[3],
			Timestamp: ts,
			Message:   parts[5],
		})
	}
	return commits
}

// lastCommit returns the HEAD commit, or nil for an empty repository.
func (c *CLI) lastCommit(ctx context.Context, repo string) *CommitInfo {
	commits, err := c.History(ctx, repo, 1)
	if err != nil || len(commits) == 0 {
		return nil
	}
	return &commits[0]
}

// CommitFiles lists the files changed by a commit.
func (c *CLI) CommitFiles(ctx context.Context, repo, hash string) ([]FileChange, error) {
	out, err := c.output(ctx, "commit-files", repo,
		"show", "--name-status", "--format=", hash)
	if err != nil {
		return nil, err
	}
	return ParseNameStatus(out), nil
}

// ParseNameStatus parses `--name-status` output.
func ParseNameStatus(out string) []FileChange {
	files := []FileChange{}
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), "\t")
		if len(parts) < 2 || parts[0] == "" {
			continue
		}
		st, ok := statusFromCode(parts[0][0])
		if !ok {
			continue
		}
		fc := FileChange{Path: parts[len(parts)-1], Status: st}
		if len(parts) == 3 {
			fc.OldPath = parts[1]
		}
		files = append(files, fc)
	}
	return files
}

// CommitFileDiff returns the diff a commit introduced to one file.
func (c *CLI) CommitFileDiff(ctx context.Context, repo, hash, file string) (string, error) {
	return c.output(ctx, "commit-diff", repo,
		"show", "--no-color", "--format=", hash, "--", file)
}

// FileDiff returns the working tree diff for file: unstaged changes first,
// then staged changes, then the full content of an untracked file.
func (c *CLI) FileDiff(ctx context.Context, repo, file string) (string, error) {
	unstaged, err := c.output(ctx, "diff", repo, "diff", "--no-color", "--", file)
	if err != nil {
		return "", err
	}
	if unstaged != "" {
		return unstaged, nil
	}
	staged, err := c.output(ctx, "diff", repo, "diff", "--cached", "--no-color", "--", file)
	if err != nil {
		return "", err
	}
	if staged != "" {
		return staged, nil
	}
	return c.untrackedDiff(ctx, repo, file)
}

// untrackedDiff diffs file against /dev/null. git exits 1 when the inputs
// differ, which is the expected outcome here.
func (c *CLI) untrackedDiff(ctx context.Context, repo, file string) (string, error) {
	cmd := exec.CommandContext(ctx, c.gitPath, "diff", "--no-color", "--no-index", "--", "/dev/null", file)
	cmd.Dir = repo
	cmd.Env = gitEnv()
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if err != nil && !(errors.As(err, &exitErr) && exitErr.ExitCode() == 1) {
		return "", commandError(ctx, "diff", string(out), err)
	}
	return strings.TrimRight(string(out), "\n"), nil
}
