package domain

// EmbeddedMetadata is the optional manifest fragment parsed out of the
// comment block at the head of a script. Most scripts carry none.
type EmbeddedMetadata struct {
	// Package holds optional package-level overrides.
	Package *PackageOverride

	// Dependencies maps package names to explicit specs. These entries
	// always win over inferred ones on name collision.
	Dependencies map[string]DependencySpec
}

// PackageOverride carries directives from the metadata block's package table.
type PackageOverride struct {
	// Name overrides the package name derived from the script stem.
	Name string

	// Edition overrides the default language edition.
	Edition string
}

// DependencySpec is an explicit dependency entry from embedded metadata.
type DependencySpec struct {
	// Version is the requested constraint ("1.2", "=1.2.0-beta", ...).
	// A bare version is a caret requirement; only an exact "=" pin can
	// select a pre-release.
	Version string

	// Features are optional feature flags to enable.
	Features []string
}

// Empty reports whether the metadata carries no directives at all.
func (m *EmbeddedMetadata) Empty() bool {
	return m == nil || (m.Package == nil && len(m.Dependencies) == 0)
}
