package domain

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint is a deterministic content hash used as a cache key.
// Identical fingerprint implies identical expected build output; the
// cache's at-most-one-build guarantee rests on that.
type Fingerprint string

// ManifestFingerprint hashes only the resolved dependency set and
// edition. It keys the shared dependency tier, so scripts with the same
// manifest compile their dependencies exactly once between them.
func ManifestFingerprint(m *ResolvedManifest) Fingerprint {
	hasher := xxhash.New()

	_, _ = hasher.WriteString(m.Edition)
	_, _ = hasher.Write([]byte{0})

	for _, e := range m.Entries {
		_, _ = hasher.WriteString(e.Name)
		_, _ = hasher.Write([]byte{'@'})
		_, _ = hasher.WriteString(e.Version)
		_, _ = hasher.Write([]byte{0})
		for _, f := range e.Features {
			_, _ = hasher.WriteString(f)
			_, _ = hasher.Write([]byte{0})
		}
		_, _ = hasher.Write([]byte{0})
	}

	return Fingerprint(fmt.Sprintf("%016x", hasher.Sum64()))
}

// BuildFingerprint hashes the transformed source, the manifest
// fingerprint, the build profile, and any extra toolchain flags. It keys
// the per-script executable tier.
func BuildFingerprint(source string, m *ResolvedManifest, profile string, flags []string) Fingerprint {
	hasher := xxhash.New()

	_, _ = hasher.WriteString(normalizeSource(source))
	_, _ = hasher.Write([]byte{0})

	_, _ = hasher.WriteString(string(ManifestFingerprint(m)))
	_, _ = hasher.Write([]byte{0})

	_, _ = hasher.WriteString(m.PackageName)
	_, _ = hasher.Write([]byte{0})

	_, _ = hasher.WriteString(profile)
	_, _ = hasher.Write([]byte{0})

	for _, f := range flags {
		_, _ = hasher.WriteString(f)
		_, _ = hasher.Write([]byte{0})
	}

	return Fingerprint(fmt.Sprintf("%016x", hasher.Sum64()))
}

// normalizeSource strips trailing whitespace noise and normalizes line
// endings so that editor churn does not defeat the executable cache.
func normalizeSource(source string) string {
	out := make([]byte, 0, len(source))
	lineEnd := 0
	flush := func(i int) {
		line := source[lineEnd:i]
		for len(line) > 0 && (line[len(line)-1] == ' ' || line[len(line)-1] == '\t' || line[len(line)-1] == '\r') {
			line = line[:len(line)-1]
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			flush(i)
			lineEnd = i + 1
		}
	}
	if lineEnd < len(source) {
		flush(len(source))
	}
	return string(out)
}
