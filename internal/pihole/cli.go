// Package pihole drives the resolver's administrative command. Callers only
// learn whether a command succeeded; its output is logged, never parsed.
package pihole

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrCommandFailed is returned when the command starts but does not exit
// cleanly.
var ErrCommandFailed = errors.New("pihole command failed")

// Runner executes the administrative command with the given arguments.
type Runner interface {
	Run(ctx context.Context, args ...string) error
}

// CLI runs the pihole binary as a child process.
type CLI struct {
	bin     string
	timeout time.Duration
	logger  *zap.Logger
}

// NewCLI creates a Runner for bin. A non-positive timeout disables the
// per-command deadline.
func NewCLI(bin string, timeout time.Duration, logger *zap.Logger) *CLI {
	return &CLI{
		bin:     bin,
		timeout: timeout,
		logger:  logger.Named("pihole"),
	}
}

func (c *CLI) Run(ctx context.Context, args ...string) error {
	execCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmdline := strings.Join(args, " ")
	c.logger.Debug("executing command", zap.String("bin", c.bin), zap.String("args", cmdline))

	output, err := exec.CommandContext(execCtx, c.bin, args...).CombinedOutput()
	msg := strings.TrimSpace(string(output))
	if err != nil {
		if c.timeout > 0 && errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s %s timed out after %s", ErrCommandFailed, c.bin, cmdline, c.timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if msg != "" {
				return fmt.Errorf("%w: %s %s: %s", ErrCommandFailed, c.bin, cmdline, msg)
			}
			return fmt.Errorf("%w: %s %s: %v", ErrCommandFailed, c.bin, cmdline, err)
		}
		return fmt.Errorf("run %s %s: %w", c.bin, cmdline, err)
	}
	if msg != "" {
		c.logger.Debug("command output", zap.String("args", cmdline), zap.String("output", msg))
	}
	return nil
}
