package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/rsx/internal/adapters/logger"
	"go.trai.ch/rsx/internal/adapters/parser"
	"go.trai.ch/rsx/internal/core/domain"
	"go.trai.ch/rsx/internal/core/ports"
	"go.trai.ch/rsx/internal/core/ports/mocks"
	"go.trai.ch/rsx/internal/engine/transform"
	"go.uber.org/mock/gomock"
)

type testMocks struct {
	resolver  *mocks.MockVersionResolver
	cache     *mocks.MockBuildCache
	toolchain *mocks.MockToolchain
	runner    *mocks.MockRunner
}

// newTestApp wires a real parser and transformer to mocked outer ports.
func newTestApp(t *testing.T) (*App, *testMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := logger.NewWithWriter(io.Discard)

	m := &testMocks{
		resolver:  mocks.NewMockVersionResolver(ctrl),
		cache:     mocks.NewMockBuildCache(ctrl),
		toolchain: mocks.NewMockToolchain(ctrl),
		runner:    mocks.NewMockRunner(ctrl),
	}

	a := New(
		domain.DefaultSettings(),
		log,
		parser.NewClassifier(log),
		parser.NewInferencer(log),
		parser.NewMetadataExtractor(),
		m.resolver,
		transform.New(log),
		m.cache,
		m.toolchain,
		m.runner,
	)
	return a, m
}

func writeScript(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// expectBuild arranges the cache to miss and run the real build
// callback, capturing the toolchain request on the way through.
func expectBuild(t *testing.T, m *testMocks, captured *ports.BuildRequest) {
	t.Helper()
	m.cache.EXPECT().Lookup(gomock.Any()).Return("", false, nil)
	m.cache.EXPECT().DepsTargetDir(gomock.Any()).Return(t.TempDir(), nil)
	m.cache.EXPECT().BuildTreeDir(gomock.Any()).Return(t.TempDir(), nil)
	m.cache.EXPECT().
		BuildOnce(gomock.Any(), gomock.Any(), gomock.Any(), false, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.Fingerprint, _ string, _ bool, build func() (string, error)) (string, error) {
			return build()
		})
	m.toolchain.EXPECT().
		Build(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.BuildRequest) (string, error) {
			*captured = req
			return "/cache/bin/fp/demo", nil
		})
}

func TestRunProgramWithInferredDependency(t *testing.T) {
	a, m := newTestApp(t)
	script := writeScript(t, "demo.rs", `use serde_json::Value;

fn main() {
    let v: Value = serde_json::from_str("{}").unwrap();
    println!("{v}");
}
`)

	m.resolver.EXPECT().
		Resolve(gomock.Any(), "serde_json", "").
		Return("serde_json", "1.0.145", nil)

	var req ports.BuildRequest
	expectBuild(t, m, &req)
	m.runner.EXPECT().
		Run(gomock.Any(), "/cache/bin/fp/demo", []string{"--input", "x"}).
		Return(0, nil)

	code, err := a.Run(context.Background(), Request{
		ScriptPath: script,
		Args:       []string{"--input", "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	require.NotNil(t, req.Manifest)
	assert.Equal(t, "demo", req.Manifest.PackageName)
	entry := req.Manifest.Entry("serde_json")
	require.NotNil(t, entry)
	assert.Equal(t, "1.0.145", entry.Version)
	assert.Equal(t, domain.SourceInferred, entry.Source)
	assert.Contains(t, req.Source, "fn main()")
}

func TestRunExplicitMetadataWins(t *testing.T) {
	a, m := newTestApp(t)
	script := writeScript(t, "pinned.rs", `/*[toml]
[dependencies]
serde_json = { version = "1.0.100", features = ["preserve_order"] }
*/
use serde_json::Value;

fn main() {}
`)

	m.resolver.EXPECT().
		Resolve(gomock.Any(), "serde_json", "1.0.100").
		Return("serde_json", "1.0.100", nil)
	// The advisory freshness probe.
	m.resolver.EXPECT().
		Resolve(gomock.Any(), "serde_json", "").
		Return("serde_json", "1.0.145", nil)

	var req ports.BuildRequest
	expectBuild(t, m, &req)
	m.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).Return(0, nil)

	_, err := a.Run(context.Background(), Request{ScriptPath: script})
	require.NoError(t, err)

	entry := req.Manifest.Entry("serde_json")
	require.NotNil(t, entry)
	assert.Equal(t, "1.0.100", entry.Version)
	assert.Equal(t, []string{"preserve_order"}, entry.Features)
	assert.Equal(t, domain.SourceExplicit, entry.Source)
}

func TestRunUnsatisfiablePinIsConflict(t *testing.T) {
	a, m := newTestApp(t)
	script := writeScript(t, "pinned.rs", `/*[toml]
[dependencies]
serde = "=99.0.0"
*/
fn main() {}
`)

	m.resolver.EXPECT().
		Resolve(gomock.Any(), "serde", "=99.0.0").
		Return("", "", domain.ErrNoMatchingVersion)

	_, err := a.Run(context.Background(), Request{ScriptPath: script})
	require.ErrorIs(t, err, domain.ErrManifestConflict)
	assert.Equal(t, domain.ExitConflict, domain.ExitCode(err))
}

func TestRunCacheHitSkipsBuild(t *testing.T) {
	a, m := newTestApp(t)
	script := writeScript(t, "demo.rs", "fn main() {}\n")

	m.cache.EXPECT().Lookup(gomock.Any()).Return("/cache/bin/fp/demo", true, nil)
	m.runner.EXPECT().Run(gomock.Any(), "/cache/bin/fp/demo", gomock.Nil()).Return(0, nil)

	code, err := a.Run(context.Background(), Request{ScriptPath: script})
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestRunForceBypassesLookup(t *testing.T) {
	a, m := newTestApp(t)
	script := writeScript(t, "demo.rs", "fn main() {}\n")

	m.cache.EXPECT().DepsTargetDir(gomock.Any()).Return(t.TempDir(), nil)
	m.cache.EXPECT().BuildTreeDir(gomock.Any()).Return(t.TempDir(), nil)
	m.cache.EXPECT().
		BuildOnce(gomock.Any(), gomock.Any(), gomock.Any(), true, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ domain.Fingerprint, _ string, _ bool, build func() (string, error)) (string, error) {
			return build()
		})
	m.toolchain.EXPECT().Build(gomock.Any(), gomock.Any()).Return("/cache/bin/fp/demo", nil)
	m.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).Return(0, nil)

	_, err := a.Run(context.Background(), Request{ScriptPath: script, Force: true})
	require.NoError(t, err)
}

func TestRunNoRunStopsAfterBuild(t *testing.T) {
	a, m := newTestApp(t)
	script := writeScript(t, "demo.rs", "fn main() {}\n")

	m.cache.EXPECT().Lookup(gomock.Any()).Return("/cache/bin/fp/demo", true, nil)
	// No runner expectation: running would fail the controller.

	code, err := a.Run(context.Background(), Request{ScriptPath: script, NoRun: true})
	require.NoError(t, err)
	assert.Equal(t, domain.ExitOK, code)
}

func TestRunExitCodePassesThrough(t *testing.T) {
	a, m := newTestApp(t)
	script := writeScript(t, "fail.rs", "fn main() { std::process::exit(42); }\n")

	m.cache.EXPECT().Lookup(gomock.Any()).Return("/cache/bin/fp/fail", true, nil)
	m.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).Return(42, nil)

	code, err := a.Run(context.Background(), Request{ScriptPath: script})
	require.NoError(t, err)
	assert.Equal(t, 42, code)
}

func TestRunExpressionInput(t *testing.T) {
	a, m := newTestApp(t)

	var req ports.BuildRequest
	expectBuild(t, m, &req)
	m.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).Return(0, nil)

	_, err := a.Run(context.Background(), Request{Expr: "1 + 2"})
	require.NoError(t, err)

	assert.Equal(t, "expr", req.Manifest.PackageName)
	assert.Contains(t, req.Source, `println!("{:?}", 1 + 2);`)
}

func TestRunStdinInput(t *testing.T) {
	a, m := newTestApp(t)
	a.Stdin = strings.NewReader("fn main() {}\n")

	m.cache.EXPECT().Lookup(gomock.Any()).Return("/cache/bin/fp/stdin", true, nil)
	m.runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).Return(0, nil)

	_, err := a.Run(context.Background(), Request{ScriptPath: "-"})
	require.NoError(t, err)
}

func TestRunSyntaxErrorSurfaces(t *testing.T) {
	a, _ := newTestApp(t)
	script := writeScript(t, "broken.rs", "fn main( {\n")

	_, err := a.Run(context.Background(), Request{ScriptPath: script})
	require.ErrorIs(t, err, domain.ErrSyntax)
}

func TestCleanDelegates(t *testing.T) {
	a, m := newTestApp(t)
	m.cache.EXPECT().Clean(true, false).Return(nil)
	require.NoError(t, a.Clean(true, false))
}

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"demo":          "demo",
		"my-script":     "my-script",
		"weird name!":   "weird_name_",
		"1st":           "script_1st",
		"":              "script_",
		"mixed.CASE_ok": "mixed_CASE_ok",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeName(in), in)
	}
}
