package domain

import "time"

// CacheEntry maps a fingerprint to a published artifact. Entries are
// created on successful build, read on every later invocation with the
// same fingerprint, and removed only by explicit cache clearing.
type CacheEntry struct {
	Fingerprint  Fingerprint `json:"fingerprint,omitzero"`
	ArtifactPath string      `json:"artifact_path,omitzero"`
	LastUsed     time.Time   `json:"last_used,omitzero"`
}
