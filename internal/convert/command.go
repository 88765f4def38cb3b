package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// ErrNoCommand is returned when no packer executable is configured.
var ErrNoCommand = errors.New("no conversion command configured")

// Command runs an external packer executable once per file.
type Command struct {
	path string
	log  *slog.Logger
}

// NewCommand creates a converter that invokes the executable at path.
func NewCommand(path string, log *slog.Logger) *Command {
	if log == nil {
		log = slog.Default()
	}
	return &Command{path: path, log: log.With("component", "packer")}
}

// Convert runs the packer and returns its stderr in the error on failure.
// The process is killed if ctx is canceled.
func (c *Command) Convert(ctx context.Context, sourcePath string, opts Options) error {
	if c.path == "" {
		return ErrNoCommand
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, c.path, opts.Args(sourcePath)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("run %s: %w: %s", c.path, err, msg)
		}
		return fmt.Errorf("run %s: %w", c.path, err)
	}

	c.log.Debug("packer finished", "source", sourcePath, "duration_ms", time.Since(start).Milliseconds())
	return nil
}
