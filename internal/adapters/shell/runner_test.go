package shell

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/rsx/internal/adapters/logger"
)

func fakeBinary(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake binaries require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "script")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755)) //nolint:gosec // Test helper
	return path
}

func newTestRunner() (*Runner, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	r := NewRunner(logger.NewWithWriter(io.Discard))
	r.Stdin = strings.NewReader("")
	r.Stdout = &stdout
	r.Stderr = &stderr
	return r, &stdout, &stderr
}

func TestRunnerPassesArgsAndStdio(t *testing.T) {
	bin := fakeBinary(t, `echo "args: $@"
echo diag >&2
`)
	r, stdout, stderr := newTestRunner()

	code, err := r.Run(context.Background(), bin, []string{"--flag", "value"})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "args: --flag value\n", stdout.String())
	assert.Equal(t, "diag\n", stderr.String())
}

func TestRunnerPassesThroughExitCode(t *testing.T) {
	bin := fakeBinary(t, "exit 42\n")
	r, _, _ := newTestRunner()

	code, err := r.Run(context.Background(), bin, nil)
	require.NoError(t, err)
	assert.Equal(t, 42, code)
}

func TestRunnerLaunchFailure(t *testing.T) {
	r, _, _ := newTestRunner()

	_, err := r.Run(context.Background(), filepath.Join(t.TempDir(), "missing"), nil)
	require.Error(t, err)
}
