package backend

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

// Global identity keys.
const (
	ConfigUserName  = "user.name"
	ConfigUserEmail = "user.email"
)

// GlobalConfig reads key from the user's global git configuration. An unset
// key is returned as "" without an error.
func (c *CLI) GlobalConfig(ctx context.Context, key string) (string, error) {
	out, err := c.output(ctx, "config", "", "config", "--global", "--get", key)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// SetGlobalConfig writes key to the user's global git configuration.
func (c *CLI) SetGlobalConfig(ctx context.Context, key, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return Errorf(KindValidation, "config", "%s cannot be empty", key)
	}
	return c.run(ctx, "config", "", "config", "--global", key, value)
}
