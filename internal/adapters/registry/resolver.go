package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.trai.ch/rsx/internal/core/domain"
	"go.trai.ch/rsx/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.VersionResolver = (*Resolver)(nil)

// Resolver selects concrete versions from registry release lists.
type Resolver struct {
	registry ports.Registry
	logger   ports.Logger
}

// NewResolver creates a Resolver on top of a registry client.
func NewResolver(registry ports.Registry, logger ports.Logger) *Resolver {
	return &Resolver{registry: registry, logger: logger}
}

// Resolve returns the highest published version of name satisfying
// constraint. Pre-releases are excluded unless the constraint is an
// exact "=" pin naming one: registries publish pre-releases
// chronologically after stable releases, and naive most-recent
// selection has picked them by mistake before. Yanked versions never
// resolve. A name unknown under its literal spelling is retried with
// underscores normalized to hyphens before failing.
func (r *Resolver) Resolve(ctx context.Context, name, constraint string) (string, string, error) {
	candidates := []string{name}
	if canonical := domain.CanonicalName(name); canonical != name {
		candidates = append(candidates, canonical)
	}

	var lastErr error
	for _, candidate := range candidates {
		releases, err := r.registry.Releases(ctx, candidate)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				lastErr = err
				continue
			}
			return "", "", zerr.Wrap(domain.ErrDependencyResolution, err.Error())
		}

		version, err := selectVersion(releases, constraint)
		if err != nil {
			return "", "", zerr.With(zerr.With(
				zerr.Wrap(err, "version selection failed"),
				"package", candidate), "constraint", constraint)
		}
		r.logger.Debug(fmt.Sprintf("resolved %s %q -> %s", candidate, constraint, version))
		return candidate, version, nil
	}

	return "", "", zerr.With(zerr.Wrap(domain.ErrDependencyResolution,
		lastErr.Error()), "package", name)
}

// selectVersion applies semver precedence over the release list.
func selectVersion(releases []ports.Release, constraint string) (string, error) {
	rng, exactPre, err := parseConstraint(constraint)
	if err != nil {
		return "", zerr.Wrap(domain.ErrDependencyResolution, err.Error())
	}

	var best *semver.Version
	for _, rel := range releases {
		if rel.Yanked {
			continue
		}
		v, err := semver.NewVersion(rel.Version)
		if err != nil {
			// Registries occasionally hold junk versions; skip them.
			continue
		}
		if v.Prerelease() != "" && !exactPre {
			continue
		}
		if !rng.Check(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}
	if best == nil {
		return "", domain.ErrNoMatchingVersion
	}
	return best.Original(), nil
}

// parseConstraint translates a manifest version requirement into a
// semver range. A bare version is a caret requirement; only an exact
// "=x.y.z-pre" pin admits the named pre-release.
func parseConstraint(constraint string) (*semver.Constraints, bool, error) {
	constraint = strings.TrimSpace(constraint)
	if constraint == "" || constraint == "*" {
		rng, err := semver.NewConstraint(">=0.0.0")
		return rng, false, err
	}

	exactPre := false
	if strings.HasPrefix(constraint, "=") {
		pinned := strings.TrimSpace(strings.TrimPrefix(constraint, "="))
		if v, err := semver.NewVersion(pinned); err == nil && v.Prerelease() != "" {
			exactPre = true
			// Match the pinned pre-release and nothing else.
			rng, err := semver.NewConstraint("=" + pinned)
			return rng, exactPre, err
		}
		rng, err := semver.NewConstraint("=" + pinned)
		return rng, false, err
	}

	// Bare versions and range operators follow cargo semantics: a bare
	// version means caret.
	if c := constraint[0]; c >= '0' && c <= '9' {
		constraint = "^" + constraint
	}
	rng, err := semver.NewConstraint(constraint)
	return rng, false, err
}
