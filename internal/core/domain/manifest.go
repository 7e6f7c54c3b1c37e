package domain

// DefaultEdition is the language edition used when the metadata block
// does not override it.
const DefaultEdition = "2021"

// ResolutionSource records how a manifest entry came to be.
type ResolutionSource int

const (
	// SourceInferred means the entry was inferred from the syntax tree
	// and its version was resolved against the registry.
	SourceInferred ResolutionSource = iota
	// SourceExplicit means the entry was pinned in embedded metadata.
	SourceExplicit
)

// String returns the source as a lowercase word.
func (s ResolutionSource) String() string {
	if s == SourceExplicit {
		return "explicit"
	}
	return "inferred"
}

// ManifestEntry is one fully resolved dependency.
type ManifestEntry struct {
	// Name is the registry package name.
	Name string

	// Version is the resolved version.
	Version string

	// Features are the feature flags carried over from an explicit spec.
	Features []string

	// Source records whether the entry was explicit or inferred.
	Source ResolutionSource
}

// ResolvedManifest is the complete, conflict-free build manifest for one
// script: the dependency set merged with embedded metadata and registry
// resolution. Entry order follows the merge order and is deterministic.
type ResolvedManifest struct {
	// PackageName is the generated package's name.
	PackageName string

	// Edition is the language edition for the generated package.
	Edition string

	// Entries are the resolved dependencies. Invariant: no two entries
	// share a name.
	Entries []ManifestEntry
}

// Entry returns the entry for name, or nil.
func (m *ResolvedManifest) Entry(name string) *ManifestEntry {
	for i := range m.Entries {
		if m.Entries[i].Name == name {
			return &m.Entries[i]
		}
	}
	return nil
}
