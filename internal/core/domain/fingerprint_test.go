package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func manifestFixture() *ResolvedManifest {
	return &ResolvedManifest{
		PackageName: "demo",
		Edition:     DefaultEdition,
		Entries: []ManifestEntry{
			{Name: "serde", Version: "1.0.219", Features: []string{"derive"}},
			{Name: "rand", Version: "0.9.2"},
		},
	}
}

func TestManifestFingerprintDeterministic(t *testing.T) {
	a := ManifestFingerprint(manifestFixture())
	b := ManifestFingerprint(manifestFixture())
	assert.Equal(t, a, b)
	assert.Len(t, string(a), 16)
}

func TestManifestFingerprintIgnoresPackageName(t *testing.T) {
	m := manifestFixture()
	other := manifestFixture()
	other.PackageName = "renamed"
	// Scripts with different names but identical dependencies share the
	// dependency tier.
	assert.Equal(t, ManifestFingerprint(m), ManifestFingerprint(other))
}

func TestManifestFingerprintSensitivity(t *testing.T) {
	base := ManifestFingerprint(manifestFixture())

	bumped := manifestFixture()
	bumped.Entries[1].Version = "0.9.3"
	assert.NotEqual(t, base, ManifestFingerprint(bumped))

	featured := manifestFixture()
	featured.Entries[1].Features = []string{"small_rng"}
	assert.NotEqual(t, base, ManifestFingerprint(featured))

	edition := manifestFixture()
	edition.Edition = "2018"
	assert.NotEqual(t, base, ManifestFingerprint(edition))
}

func TestBuildFingerprintNormalizesWhitespaceNoise(t *testing.T) {
	m := manifestFixture()
	a := BuildFingerprint("fn main() {}\n", m, "debug", nil)
	b := BuildFingerprint("fn main() {}   \r\n", m, "debug", nil)
	assert.Equal(t, a, b)
}

func TestBuildFingerprintSensitivity(t *testing.T) {
	m := manifestFixture()
	base := BuildFingerprint("fn main() {}\n", m, "debug", nil)

	assert.NotEqual(t, base, BuildFingerprint("fn main() { }\n", m, "debug", nil))
	assert.NotEqual(t, base, BuildFingerprint("fn main() {}\n", m, "release", nil))

	renamed := manifestFixture()
	renamed.PackageName = "other"
	assert.NotEqual(t, base, BuildFingerprint("fn main() {}\n", renamed, "debug", nil))
}
