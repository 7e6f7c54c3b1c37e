package domain

import "strings"

// builtinRoots are path roots that never resolve to a registry package.
var builtinRoots = map[string]struct{}{
	"std":         {},
	"core":        {},
	"alloc":       {},
	"collections": {},
	"fmt":         {},
	"crate":       {},
	"self":        {},
	"super":       {},
}

// IsBuiltinRoot reports whether a path root belongs to the standard library
// or to the script itself and must be excluded from dependency inference.
func IsBuiltinRoot(name string) bool {
	_, ok := builtinRoots[name]
	return ok
}

// Dependency is one inferred external package root.
type Dependency struct {
	// Name is the path root as written in the source.
	Name InternedString

	// Rename is the local alias if the source renamed the import,
	// zero otherwise. The registry name cannot be derived from the
	// alias, which is why the pair is tracked explicitly.
	Rename InternedString
}

// DependencySet is an ordered set of inferred dependencies.
// Insertion order is preserved so manifest output stays deterministic,
// and entries are keyed by package name rather than local alias so that
// two scopes aliasing different packages to the same name never collide.
type DependencySet struct {
	deps  []Dependency
	index map[string]int
}

// NewDependencySet creates an empty DependencySet.
func NewDependencySet() *DependencySet {
	return &DependencySet{index: make(map[string]int)}
}

// Add inserts a dependency, keeping the first insertion position on
// repeats. A later occurrence carrying a rename is recorded onto the
// existing entry if the first occurrence had none.
func (s *DependencySet) Add(dep Dependency) {
	key := dep.Name.String()
	if i, ok := s.index[key]; ok {
		if s.deps[i].Rename.String() == "" && dep.Rename.String() != "" {
			s.deps[i].Rename = dep.Rename
		}
		return
	}
	s.index[key] = len(s.deps)
	s.deps = append(s.deps, dep)
}

// Contains reports whether name is already in the set.
func (s *DependencySet) Contains(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Remove deletes name from the set if present.
func (s *DependencySet) Remove(name string) {
	i, ok := s.index[name]
	if !ok {
		return
	}
	s.deps = append(s.deps[:i], s.deps[i+1:]...)
	delete(s.index, name)
	for j := i; j < len(s.deps); j++ {
		s.index[s.deps[j].Name.String()] = j
	}
}

// All returns the dependencies in insertion order.
func (s *DependencySet) All() []Dependency {
	out := make([]Dependency, len(s.deps))
	copy(out, s.deps)
	return out
}

// Names returns the package names in insertion order.
func (s *DependencySet) Names() []string {
	names := make([]string, len(s.deps))
	for i, d := range s.deps {
		names[i] = d.Name.String()
	}
	return names
}

// Len returns the number of dependencies.
func (s *DependencySet) Len() int {
	return len(s.deps)
}

// CanonicalName normalizes a crate name the way the registry indexes it.
// Underscores and hyphens are interchangeable on the registry side; the
// resolver tries the literal spelling first and falls back to this form.
func CanonicalName(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}
