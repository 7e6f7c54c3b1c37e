package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"go.trai.ch/rsx/internal/core/ports"
	"go.trai.ch/zerr"
)

// Runner executes built script binaries with the caller's stdio
// attached, so the script behaves like a directly invoked program.
type Runner struct {
	// Stdin, Stdout and Stderr default to the process stdio. Overridable
	// for tests.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	logger ports.Logger
}

var _ ports.Runner = (*Runner)(nil)

func NewRunner(logger ports.Logger) *Runner {
	return &Runner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		logger: logger,
	}
}

// Run launches the binary and waits for it. The script's exit code is
// passed through; only a failure to launch is reported as an error.
func (r *Runner) Run(ctx context.Context, binary string, args []string) (int, error) {
	r.logger.Debug("running script binary", "binary", binary, "args", args)

	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec // Binary comes from our own cache
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 0, zerr.With(zerr.Wrap(err, "failed to launch script binary"), "binary", binary)
	}
	return 0, nil
}
