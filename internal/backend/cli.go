package backend

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// CLI implements Git by running the git executable.
type CLI struct {
	gitPath string
	logger  *slog.Logger
}

// NewCLI returns a CLI using the git found on PATH.
func NewCLI(logger *slog.Logger) *CLI {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLI{gitPath: "git", logger: logger}
}

// gitEnv disables every interactive prompt so a missing credential fails fast
// instead of hanging the calling operation. Optional locks are off so status
// reads never rewrite the index under a watcher.
func gitEnv() []string {
	return append(os.Environ(),
		"GIT_TERMINAL_PROMPT=0",
		"GIT_OPTIONAL_LOCKS=0",
		"GIT_SSH_COMMAND=ssh -o BatchMode=yes",
		"LC_ALL=C",
	)
}

// output runs git in dir and returns trimmed stdout.
func (c *CLI) output(ctx context.Context, op, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, c.gitPath, args...)
	cmd.Dir = dir
	cmd.Env = gitEnv()
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger.Debug("git", "op", op, "dir", dir, "args", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		return "", commandError(ctx, op, stderr.String()+stdout.String(), err)
	}
	return strings.TrimRight(stdout.String(), "\n"), nil
}

// outputRaw is output without trimming, for NUL separated formats.
func (c *CLI) outputRaw(ctx context.Context, op, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.gitPath, args...)
	cmd.Dir = dir
	cmd.Env = gitEnv()
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	c.logger.Debug("git", "op", op, "dir", dir, "args", strings.Join(args, " "))
	out, err := cmd.Output()
	if err != nil {
		return nil, commandError(ctx, op, stderr.String(), err)
	}
	return out, nil
}

// run executes git and discards stdout.
func (c *CLI) run(ctx context.Context, op, dir string, args ...string) error {
	_, err := c.output(ctx, op, dir, args...)
	return err
}

func commandError(ctx context.Context, op, output string, err error) *Error {
	msg := strings.TrimSpace(output)
	kind := classify(msg)

	var execErr *exec.Error
	switch {
	case ctx.Err() != nil:
		kind = KindTransient
		if msg == "" {
			msg = ctx.Err().Error()
		}
	case errors.As(err, &execErr):
		kind = KindNotFound
		msg = "git executable not found"
	}
	if msg == "" {
		msg = err.Error()
	}
	return &Error{Kind: kind, Op: op, Message: msg, Err: err}
}
