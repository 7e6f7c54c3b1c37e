package ports

import (
	"context"

	"go.trai.ch/rsx/internal/core/domain"
)

// BuildCache is the two-tier, content-addressed artifact store.
//
//go:generate go run go.uber.org/mock/mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type BuildCache interface {
	// Lookup returns the published artifact for a fingerprint, if any.
	Lookup(fp domain.Fingerprint) (path string, ok bool, err error)

	// DepsTargetDir returns the shared dependency build area for a
	// manifest fingerprint, creating it if needed.
	DepsTargetDir(fp domain.Fingerprint) (string, error)

	// BuildTreeDir returns the scratch area where the generated source
	// tree for a build fingerprint is materialized, creating it if
	// needed.
	BuildTreeDir(fp domain.Fingerprint) (string, error)

	// BuildOnce publishes the artifact produced by build under fp,
	// guaranteeing at most one build per fingerprint across concurrent
	// invocations and processes. A concurrent caller blocks until the
	// in-flight build completes and then reuses its result. force
	// rebuilds even when a published artifact already exists.
	BuildOnce(ctx context.Context, fp domain.Fingerprint, name string, force bool, build func() (string, error)) (string, error)

	// Clean removes one or both tiers wholesale.
	Clean(deps, bin bool) error
}

// EntryStore persists cache entry metadata across invocations.
type EntryStore interface {
	// Get retrieves the entry for a fingerprint. Returns nil, nil if
	// not found.
	Get(fp domain.Fingerprint) (*domain.CacheEntry, error)

	// Put stores the entry.
	Put(entry domain.CacheEntry) error

	// Remove drops the entry for a fingerprint if present.
	Remove(fp domain.Fingerprint) error
}
