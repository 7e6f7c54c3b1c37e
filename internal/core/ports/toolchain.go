package ports

import (
	"context"

	"go.trai.ch/rsx/internal/core/domain"
)

// BuildRequest describes one invocation of the external toolchain.
type BuildRequest struct {
	// Dir is where the generated source tree is materialized.
	Dir string

	// Source is the transformed, compilable source text.
	Source string

	// Manifest is the resolved dependency manifest to generate from.
	Manifest *domain.ResolvedManifest

	// TargetDir is the shared dependency build area for this manifest.
	TargetDir string

	// BinaryName is the expected executable name.
	BinaryName string

	// Release selects the release profile instead of debug.
	Release bool
}

// Toolchain drives the external build toolchain as a subprocess. Its
// diagnostics are opaque text relayed to the user, never parsed.
//
//go:generate go run go.uber.org/mock/mockgen -source=toolchain.go -destination=mocks/mock_toolchain.go -package=mocks
type Toolchain interface {
	// Build materializes the source tree in Dir, compiles it, and
	// returns the path of the produced executable inside TargetDir.
	Build(ctx context.Context, req BuildRequest) (artifactPath string, err error)
}
