package parser

import (
	"strings"

	"github.com/BurntSushi/toml"
	"go.trai.ch/rsx/internal/core/domain"
	"go.trai.ch/rsx/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	tomlBlockOpen  = "/*[toml]"
	tomlBlockClose = "*/"
)

var _ ports.MetadataExtractor = (*MetadataExtractor)(nil)

// MetadataExtractor parses the optional `/*[toml] ... */` block out of
// the head of a script.
type MetadataExtractor struct{}

// NewMetadataExtractor creates a new MetadataExtractor.
func NewMetadataExtractor() *MetadataExtractor {
	return &MetadataExtractor{}
}

type metadataDoc struct {
	Package      *packageTable             `toml:"package"`
	Dependencies map[string]toml.Primitive `toml:"dependencies"`
}

type packageTable struct {
	Name    string `toml:"name"`
	Edition string `toml:"edition"`
}

type dependencyTable struct {
	Version  string   `toml:"version"`
	Features []string `toml:"features"`
}

// Extract returns the parsed metadata block, or nil when the source
// carries none. A malformed block is a syntax error, not a silent skip.
func (e *MetadataExtractor) Extract(unit *domain.SourceUnit) (*domain.EmbeddedMetadata, error) {
	block, ok := extractTomlBlock(unit.Source)
	if !ok {
		return nil, nil
	}

	var doc metadataDoc
	md, err := toml.Decode(block, &doc)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrSyntax, "malformed metadata block"), "cause", err.Error())
	}

	meta := &domain.EmbeddedMetadata{
		Dependencies: make(map[string]domain.DependencySpec, len(doc.Dependencies)),
	}
	if doc.Package != nil {
		meta.Package = &domain.PackageOverride{
			Name:    doc.Package.Name,
			Edition: doc.Package.Edition,
		}
	}

	for name, prim := range doc.Dependencies {
		// A dependency is either a bare version string or a detail table.
		var version string
		if err := md.PrimitiveDecode(prim, &version); err == nil {
			meta.Dependencies[name] = domain.DependencySpec{Version: version}
			continue
		}
		var detail dependencyTable
		if err := md.PrimitiveDecode(prim, &detail); err != nil {
			return nil, zerr.With(zerr.With(
				zerr.Wrap(domain.ErrSyntax, "malformed dependency entry in metadata block"),
				"package", name), "cause", err.Error())
		}
		meta.Dependencies[name] = domain.DependencySpec{
			Version:  detail.Version,
			Features: detail.Features,
		}
	}

	return meta, nil
}

// extractTomlBlock finds the first embedded toml block in the source.
func extractTomlBlock(source string) (string, bool) {
	start := strings.Index(source, tomlBlockOpen)
	if start < 0 {
		return "", false
	}
	rest := source[start+len(tomlBlockOpen):]
	end := strings.Index(rest, tomlBlockClose)
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}
