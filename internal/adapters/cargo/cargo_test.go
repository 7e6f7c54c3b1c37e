package cargo

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/rsx/internal/adapters/logger"
	"go.trai.ch/rsx/internal/core/domain"
	"go.trai.ch/rsx/internal/core/ports"
)

func testManifest() *domain.ResolvedManifest {
	return &domain.ResolvedManifest{
		PackageName: "demo",
		Edition:     domain.DefaultEdition,
		Entries: []domain.ManifestEntry{
			{Name: "serde", Version: "1.0.219", Features: []string{"derive"}, Source: domain.SourceExplicit},
			{Name: "rand", Version: "0.9.2", Source: domain.SourceInferred},
		},
	}
}

func TestEncodeManifest(t *testing.T) {
	out, err := EncodeManifest(testManifest())
	require.NoError(t, err)

	rendered := string(out)
	assert.Contains(t, rendered, `name = "demo"`)
	assert.Contains(t, rendered, `edition = "2021"`)
	assert.Contains(t, rendered, `rand = "0.9.2"`)
	assert.Contains(t, rendered, `version = "1.0.219"`)
	assert.Contains(t, rendered, `features = ["derive"]`)
	assert.Contains(t, rendered, `path = "main.rs"`)
}

func TestWriteTree(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "build")
	require.NoError(t, WriteTree(dir, "fn main() {}\n", testManifest()))

	src, err := os.ReadFile(filepath.Join(dir, SourceFileName))
	require.NoError(t, err)
	assert.Equal(t, "fn main() {}\n", string(src))

	manifest, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	require.NoError(t, err)
	assert.Contains(t, string(manifest), `name = "demo"`)
}

// fakeCargo writes a shell script standing in for the real toolchain.
func fakeCargo(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake toolchain scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "cargo")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755)) //nolint:gosec // Test helper
	return path
}

func newTestToolchain(t *testing.T, bin string) (*Toolchain, *bytes.Buffer) {
	t.Helper()
	var diag bytes.Buffer
	tc := NewToolchain(logger.NewWithWriter(io.Discard))
	tc.Bin = bin
	tc.Diagnostics = &diag
	return tc, &diag
}

func TestToolchainBuild(t *testing.T) {
	bin := fakeCargo(t, `mkdir -p "$CARGO_TARGET_DIR/debug"
printf x > "$CARGO_TARGET_DIR/debug/demo"
`)
	tc, _ := newTestToolchain(t, bin)

	target := t.TempDir()
	dir := filepath.Join(t.TempDir(), "build")
	artifact, err := tc.Build(context.Background(), ports.BuildRequest{
		Dir:        dir,
		Source:     "fn main() {}\n",
		Manifest:   testManifest(),
		TargetDir:  target,
		BinaryName: "demo",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(target, "debug", "demo"), artifact)
	assert.FileExists(t, filepath.Join(dir, ManifestFileName))
}

func TestToolchainBuildFailure(t *testing.T) {
	bin := fakeCargo(t, `echo 'error[E0425]: cannot find value' >&2
exit 101
`)
	tc, diag := newTestToolchain(t, bin)

	_, err := tc.Build(context.Background(), ports.BuildRequest{
		Dir:        t.TempDir(),
		Source:     "fn main() { missing }\n",
		Manifest:   testManifest(),
		TargetDir:  t.TempDir(),
		BinaryName: "demo",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBuild))
	assert.Contains(t, diag.String(), "error[E0425]")
}

func TestToolchainBuildMissingArtifact(t *testing.T) {
	bin := fakeCargo(t, "exit 0\n")
	tc, _ := newTestToolchain(t, bin)

	_, err := tc.Build(context.Background(), ports.BuildRequest{
		Dir:        t.TempDir(),
		Source:     "fn main() {}\n",
		Manifest:   testManifest(),
		TargetDir:  t.TempDir(),
		BinaryName: "demo",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBuild))
}
