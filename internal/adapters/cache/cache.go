package cache

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/rsx/internal/core/domain"
	"go.trai.ch/rsx/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

var _ ports.BuildCache = (*Cache)(nil)

// Cache is the two-tier build cache. The deps tier is shared between
// scripts with identical manifests; the bin tier holds one executable
// per full build fingerprint. Dependency compilation dominates build
// time while the user's own code recompiles fast, so sharing only the
// deps tier captures most of the win without stale-binary risk.
type Cache struct {
	root   string
	store  ports.EntryStore
	logger ports.Logger

	// group collapses same-fingerprint builds inside one process; the
	// lock files cover concurrent processes.
	group singleflight.Group
}

// New creates a Cache rooted at dir.
func New(dir string, store ports.EntryStore, logger ports.Logger) *Cache {
	return &Cache{root: filepath.Clean(dir), store: store, logger: logger}
}

func (c *Cache) depsDir() string   { return filepath.Join(c.root, "deps") }
func (c *Cache) binDir() string    { return filepath.Join(c.root, "bin") }
func (c *Cache) locksDir() string  { return filepath.Join(c.root, "locks") }
func (c *Cache) buildsDir() string { return filepath.Join(c.root, "build") }

// DepsTargetDir returns the shared dependency build area for a manifest
// fingerprint, creating it if needed.
func (c *Cache) DepsTargetDir(fp domain.Fingerprint) (string, error) {
	dir := filepath.Join(c.depsDir(), string(fp), "target")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrCacheIO, "failed to create shared dependency area"), "path", dir)
	}
	return dir, nil
}

// BuildTreeDir returns the scratch area for one build fingerprint's
// generated source tree.
func (c *Cache) BuildTreeDir(fp domain.Fingerprint) (string, error) {
	dir := filepath.Join(c.buildsDir(), string(fp))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrCacheIO, "failed to create build scratch area"), "path", dir)
	}
	return dir, nil
}

// Lookup returns the published artifact for fp if present. A hit
// refreshes the entry's last-used timestamp for eviction hygiene.
func (c *Cache) Lookup(fp domain.Fingerprint) (string, bool, error) {
	entry, err := c.store.Get(fp)
	if err != nil {
		return "", false, zerr.Wrap(domain.ErrCacheIO, err.Error())
	}
	if entry == nil {
		return "", false, nil
	}
	if _, err := os.Stat(entry.ArtifactPath); err != nil {
		// State said hit but the artifact is gone; treat as miss and
		// drop the dangling entry.
		_ = c.store.Remove(fp)
		return "", false, nil
	}
	entry.LastUsed = time.Now()
	if err := c.store.Put(*entry); err != nil {
		return "", false, zerr.Wrap(domain.ErrCacheIO, err.Error())
	}
	return entry.ArtifactPath, true, nil
}

// BuildOnce guarantees at most one build per fingerprint. The second
// arrival for an in-flight fingerprint blocks until the first build
// publishes, then reuses its artifact; it never starts a duplicate
// build and never observes a partially written one.
func (c *Cache) BuildOnce(ctx context.Context, fp domain.Fingerprint, name string, force bool, build func() (string, error)) (string, error) {
	result, err, _ := c.group.Do(string(fp), func() (any, error) {
		if err := os.MkdirAll(c.locksDir(), 0o750); err != nil {
			return "", zerr.Wrap(domain.ErrCacheIO, "failed to create lock directory")
		}
		lockPath := filepath.Join(c.locksDir(), string(fp)+".lock")
		release, err := acquireLock(ctx, lockPath)
		if err != nil {
			return "", err
		}
		defer release()

		// Another process may have finished this build while we were
		// waiting on the lock. A forced rebuild ignores it on purpose.
		if !force {
			if path, ok, err := c.Lookup(fp); err != nil {
				return "", err
			} else if ok {
				c.logger.Debug("reusing artifact built by concurrent invocation")
				return path, nil
			}
		}

		built, err := build()
		if err != nil {
			return "", err
		}
		return c.publish(fp, name, built)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// publish copies the built artifact into the bin tier atomically:
// write to a temp name, fsync, then rename into place.
func (c *Cache) publish(fp domain.Fingerprint, name, built string) (string, error) {
	dir := filepath.Join(c.binDir(), string(fp))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", zerr.Wrap(domain.ErrCacheIO, "failed to create bin cache directory")
	}
	final := filepath.Join(dir, name)

	src, err := os.Open(built) //nolint:gosec // Path produced by the toolchain adapter
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrCacheIO, "built artifact missing"), "path", built)
	}
	defer src.Close() //nolint:errcheck // Best effort close in defer

	tmp, err := os.CreateTemp(dir, "."+name+"-*")
	if err != nil {
		return "", zerr.Wrap(domain.ErrCacheIO, "failed to create temp artifact")
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", zerr.Wrap(domain.ErrCacheIO, "failed to copy artifact")
	}
	if err := tmp.Chmod(0o755); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", zerr.Wrap(domain.ErrCacheIO, "failed to mark artifact executable")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", zerr.Wrap(domain.ErrCacheIO, "failed to sync artifact")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", zerr.Wrap(domain.ErrCacheIO, "failed to close temp artifact")
	}
	if err := os.Rename(tmpPath, final); err != nil {
		_ = os.Remove(tmpPath)
		return "", zerr.Wrap(domain.ErrCacheIO, "failed to publish artifact")
	}

	if err := c.store.Put(domain.CacheEntry{
		Fingerprint:  fp,
		ArtifactPath: final,
		LastUsed:     time.Now(),
	}); err != nil {
		return "", zerr.Wrap(domain.ErrCacheIO, err.Error())
	}

	return final, nil
}

// Clean removes one or both tiers wholesale. Correctness never depends
// on eviction; this is disk hygiene under explicit user control.
func (c *Cache) Clean(deps, bin bool) error {
	if deps {
		if err := os.RemoveAll(c.depsDir()); err != nil {
			return zerr.Wrap(domain.ErrCacheIO, "failed to clear dependency tier")
		}
		if err := os.RemoveAll(c.buildsDir()); err != nil {
			return zerr.Wrap(domain.ErrCacheIO, "failed to clear build scratch areas")
		}
		c.logger.Info("cleared shared dependency cache")
	}
	if bin {
		if err := os.RemoveAll(c.binDir()); err != nil {
			return zerr.Wrap(domain.ErrCacheIO, "failed to clear executable tier")
		}
		if err := os.RemoveAll(filepath.Join(c.root, "state.json")); err != nil {
			return zerr.Wrap(domain.ErrCacheIO, "failed to clear cache state")
		}
		c.logger.Info("cleared executable cache")
	}
	return nil
}
