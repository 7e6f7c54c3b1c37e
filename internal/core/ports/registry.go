// Package ports defines the core interfaces for the application.
package ports

import "context"

// Release is one published version of a registry package.
type Release struct {
	// Version is the published version string.
	Version string

	// Yanked marks versions withdrawn from resolution.
	Yanked bool
}

// Registry queries the package registry for published versions.
//
//go:generate go run go.uber.org/mock/mockgen -source=registry.go -destination=mocks/mock_registry.go -package=mocks
type Registry interface {
	// Releases returns every published version of the named package,
	// pre-releases and yanked versions included. A package unknown to
	// the registry returns ErrNotFound semantics via the error.
	Releases(ctx context.Context, name string) ([]Release, error)
}

// VersionResolver selects a concrete version for a package under a
// constraint, following semver precedence and the no-pre-release-unless-
// pinned rule.
type VersionResolver interface {
	// Resolve returns the registry name and the highest version
	// satisfying the constraint. An empty constraint means "highest
	// stable". The returned name may differ from the requested one by
	// hyphen/underscore normalization.
	Resolve(ctx context.Context, name, constraint string) (resolvedName, version string, err error)
}
