package cargo

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"go.trai.ch/rsx/internal/core/domain"
	"go.trai.ch/rsx/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultBin is the toolchain executable resolved from PATH.
const DefaultBin = "cargo"

// Toolchain builds generated trees with cargo. Compiler diagnostics are
// streamed to Diagnostics verbatim; the adapter never interprets them.
type Toolchain struct {
	// Bin is the cargo executable. Defaults to DefaultBin.
	Bin string

	// Diagnostics receives the compiler's stderr stream. Defaults to
	// os.Stderr.
	Diagnostics io.Writer

	logger ports.Logger
}

var _ ports.Toolchain = (*Toolchain)(nil)

func NewToolchain(logger ports.Logger) *Toolchain {
	return &Toolchain{
		Bin:         DefaultBin,
		Diagnostics: os.Stderr,
		logger:      logger,
	}
}

// Build writes the generated tree, runs `cargo build` against it with
// the shared target directory, and returns the produced executable.
func (t *Toolchain) Build(ctx context.Context, req ports.BuildRequest) (string, error) {
	if err := WriteTree(req.Dir, req.Source, req.Manifest); err != nil {
		return "", zerr.Wrap(domain.ErrBuild, err.Error())
	}

	args := []string{"build", "--manifest-path", filepath.Join(req.Dir, ManifestFileName)}
	profile := "debug"
	if req.Release {
		args = append(args, "--release")
		profile = "release"
	}

	t.logger.Debug("building script", "bin", t.Bin, "dir", req.Dir, "profile", profile)

	cmd := exec.CommandContext(ctx, t.Bin, args...) //nolint:gosec // Bin and Dir are operator-controlled
	cmd.Env = append(os.Environ(), "CARGO_TARGET_DIR="+req.TargetDir)
	cmd.Stderr = t.Diagnostics

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", zerr.With(
				zerr.Wrap(domain.ErrBuild, "toolchain reported errors"),
				"exit_code", exitErr.ExitCode(),
			)
		}
		return "", zerr.With(
			zerr.With(
				zerr.Wrap(domain.ErrBuild, "failed to invoke toolchain"),
				"bin", t.Bin,
			),
			"reason", err.Error(),
		)
	}

	artifact := filepath.Join(req.TargetDir, profile, req.BinaryName)
	if _, err := os.Stat(artifact); err != nil {
		return "", zerr.With(
			zerr.Wrap(domain.ErrBuild, "toolchain produced no executable"),
			"expected", artifact,
		)
	}
	return artifact, nil
}
