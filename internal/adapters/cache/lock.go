package cache

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strconv"
	"syscall"
	"time"

	"go.trai.ch/rsx/internal/core/domain"
	"go.trai.ch/zerr"
)

const lockPollInterval = 50 * time.Millisecond

// acquireLock takes a fingerprint-scoped advisory lock by creating the
// lock file with O_EXCL. A holder crash leaves the file behind, so a
// lock whose recorded pid is no longer alive is reclaimed. The returned
// release function must run even on error paths, or later invocations
// would deadlock on a lock nobody holds.
func acquireLock(ctx context.Context, path string) (release func(), err error) {
	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600) //nolint:gosec // Path is under our cache root
		if err == nil {
			_, _ = f.WriteString(strconv.Itoa(os.Getpid()))
			_ = f.Close()
			return func() { _ = os.Remove(path) }, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, zerr.With(zerr.Wrap(domain.ErrCacheIO, "failed to create lock file"), "path", path)
		}

		if stale(path) {
			// The previous holder died mid-build. Removing the lock
			// treats its build as "no cache entry", not "corrupt entry";
			// the artifact only becomes visible through an atomic rename
			// after a complete build.
			_ = os.Remove(path)
			continue
		}

		select {
		case <-ctx.Done():
			return nil, zerr.Wrap(domain.ErrCacheIO, "interrupted while waiting for build lock")
		case <-time.After(lockPollInterval):
		}
	}
}

// stale reports whether the lock file's recorded owner is gone.
func stale(path string) bool {
	data, err := os.ReadFile(path) //nolint:gosec // Path is under our cache root
	if err != nil {
		// Lock vanished between the failed create and now.
		return false
	}
	pid, err := strconv.Atoi(string(data))
	if err != nil || pid <= 0 {
		// Unreadable owner: do not reclaim a lock we cannot attribute.
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return true
	}
	// Signal 0 probes for existence without delivering anything.
	return proc.Signal(syscall.Signal(0)) != nil
}
