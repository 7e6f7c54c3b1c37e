package cargo

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"go.trai.ch/rsx/internal/core/domain"
	"go.trai.ch/zerr"
)

// SourceFileName is the generated source file inside a build tree.
const SourceFileName = "main.rs"

// ManifestFileName is the toolchain manifest inside a build tree.
const ManifestFileName = "Cargo.toml"

type cargoManifest struct {
	Package      cargoPackage   `toml:"package"`
	Dependencies map[string]any `toml:"dependencies"`
	Bin          []cargoBin     `toml:"bin"`
}

type cargoPackage struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Edition string `toml:"edition"`
}

type cargoBin struct {
	Name string `toml:"name"`
	Path string `toml:"path"`
}

type cargoDetailedDep struct {
	Version  string   `toml:"version"`
	Features []string `toml:"features"`
}

// EncodeManifest renders a resolved manifest as Cargo.toml bytes.
// Entries keep their resolved order only in the dependency table keys;
// the TOML encoder sorts keys, which is fine because the fingerprint is
// computed from the ResolvedManifest, not from this rendering.
func EncodeManifest(m *domain.ResolvedManifest) ([]byte, error) {
	deps := make(map[string]any, len(m.Entries))
	for _, e := range m.Entries {
		if len(e.Features) == 0 {
			deps[e.Name] = e.Version
			continue
		}
		deps[e.Name] = cargoDetailedDep{Version: e.Version, Features: e.Features}
	}

	doc := cargoManifest{
		Package: cargoPackage{
			Name:    m.PackageName,
			Version: "0.0.1",
			Edition: m.Edition,
		},
		Dependencies: deps,
		Bin: []cargoBin{{
			Name: m.PackageName,
			Path: SourceFileName,
		}},
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, zerr.Wrap(err, "failed to encode manifest")
	}
	return buf.Bytes(), nil
}

// WriteTree materializes the buildable source tree: the transformed
// source plus its generated manifest.
func WriteTree(dir, source string, m *domain.ResolvedManifest) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create build directory"), "path", dir)
	}

	manifest, err := EncodeManifest(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFileName), manifest, 0o644); err != nil { //nolint:gosec // Generated manifest is not sensitive
		return zerr.Wrap(err, "failed to write manifest")
	}
	if err := os.WriteFile(filepath.Join(dir, SourceFileName), []byte(source), 0o644); err != nil { //nolint:gosec // Generated source is not sensitive
		return zerr.Wrap(err, "failed to write generated source")
	}
	return nil
}
