// Package app implements the application layer for rsx: the pipeline
// from raw script text to a running executable.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.trai.ch/rsx/internal/core/domain"
	"go.trai.ch/rsx/internal/core/ports"
	"go.trai.ch/rsx/internal/engine/transform"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// resolveConcurrency bounds parallel registry lookups per invocation.
const resolveConcurrency = 8

// Request is one script invocation.
type Request struct {
	// ScriptPath is the script file, or "-" to read from stdin.
	// Ignored when Expr is set.
	ScriptPath string

	// Expr is an inline expression to evaluate instead of a file.
	Expr string

	// Args are passed through to the script untouched.
	Args []string

	// Force rebuilds even on a cache hit.
	Force bool

	// Release selects the release profile.
	Release bool

	// MultiMain permits more than one entry point in the source.
	MultiMain bool

	// NoRun stops after the build and reports the artifact path.
	NoRun bool
}

// App wires the pipeline stages together.
type App struct {
	settings    domain.Settings
	logger      ports.Logger
	classifier  ports.Classifier
	inferencer  ports.DependencyInferencer
	metadata    ports.MetadataExtractor
	resolver    ports.VersionResolver
	transformer *transform.Transformer
	cache       ports.BuildCache
	toolchain   ports.Toolchain
	runner      ports.Runner

	// Stdin is the stream read when ScriptPath is "-". Overridable for
	// tests.
	Stdin io.Reader
}

// New creates a new App instance.
func New(
	settings domain.Settings,
	logger ports.Logger,
	classifier ports.Classifier,
	inferencer ports.DependencyInferencer,
	metadata ports.MetadataExtractor,
	resolver ports.VersionResolver,
	transformer *transform.Transformer,
	cache ports.BuildCache,
	toolchain ports.Toolchain,
	runner ports.Runner,
) *App {
	return &App{
		settings:    settings,
		logger:      logger,
		classifier:  classifier,
		inferencer:  inferencer,
		metadata:    metadata,
		resolver:    resolver,
		transformer: transformer,
		cache:       cache,
		toolchain:   toolchain,
		runner:      runner,
		Stdin:       os.Stdin,
	}
}

// Run executes the full pipeline for one request and returns the exit
// code to pass through. The error covers pipeline failures only; a
// script that ran and exited non-zero is not an error.
func (a *App) Run(ctx context.Context, req Request) (int, error) {
	name, raw, err := a.readInput(req)
	if err != nil {
		return 0, err
	}

	unit, err := a.classifier.Classify(name, raw, req.MultiMain)
	if err != nil {
		return 0, err
	}

	meta, err := a.metadata.Extract(unit)
	if err != nil {
		return 0, err
	}

	deps, err := a.inferencer.Infer(unit)
	if err != nil {
		return 0, err
	}

	manifest, err := a.synthesize(ctx, sanitizeName(name), meta, deps)
	if err != nil {
		return 0, err
	}

	source, err := a.transformer.Transform(unit)
	if err != nil {
		return 0, err
	}

	release := req.Release || a.settings.Profile == "release"
	profile := "debug"
	if release {
		profile = "release"
	}

	manifestFP := domain.ManifestFingerprint(manifest)
	buildFP := domain.BuildFingerprint(source, manifest, profile, nil)

	artifact, err := a.ensureBuilt(ctx, req, manifest, source, manifestFP, buildFP, release)
	if err != nil {
		return 0, err
	}

	if req.NoRun {
		a.logger.Info("build complete", "artifact", artifact)
		return domain.ExitOK, nil
	}

	return a.runner.Run(ctx, artifact, req.Args)
}

// ensureBuilt returns a runnable artifact for the build fingerprint,
// building at most once across concurrent invocations.
func (a *App) ensureBuilt(
	ctx context.Context,
	req Request,
	manifest *domain.ResolvedManifest,
	source string,
	manifestFP, buildFP domain.Fingerprint,
	release bool,
) (string, error) {
	if !req.Force {
		if path, ok, err := a.cache.Lookup(buildFP); err != nil {
			return "", err
		} else if ok {
			a.logger.Debug("cache hit", "fingerprint", string(buildFP))
			return path, nil
		}
	}

	return a.cache.BuildOnce(ctx, buildFP, manifest.PackageName, req.Force, func() (string, error) {
		targetDir, err := a.cache.DepsTargetDir(manifestFP)
		if err != nil {
			return "", err
		}
		treeDir, err := a.cache.BuildTreeDir(buildFP)
		if err != nil {
			return "", err
		}
		return a.toolchain.Build(ctx, ports.BuildRequest{
			Dir:        treeDir,
			Source:     source,
			Manifest:   manifest,
			TargetDir:  targetDir,
			BinaryName: manifest.PackageName,
			Release:    release,
		})
	})
}

// Clean clears the selected cache tiers.
func (a *App) Clean(deps, bin bool) error {
	return a.cache.Clean(deps, bin)
}

// readInput produces the script name and raw source for a request.
func (a *App) readInput(req Request) (string, []byte, error) {
	if req.Expr != "" {
		return "expr", []byte(req.Expr), nil
	}
	if req.ScriptPath == "-" {
		raw, err := io.ReadAll(a.Stdin)
		if err != nil {
			return "", nil, zerr.Wrap(err, "failed to read script from stdin")
		}
		return "stdin", raw, nil
	}

	raw, err := os.ReadFile(req.ScriptPath) //nolint:gosec // The script path is the program's purpose
	if err != nil {
		return "", nil, zerr.With(zerr.Wrap(err, "failed to read script"), "path", req.ScriptPath)
	}
	stem := strings.TrimSuffix(filepath.Base(req.ScriptPath), filepath.Ext(req.ScriptPath))
	return stem, raw, nil
}

// resolveRequest is one package requirement queued for registry
// resolution during manifest synthesis.
type resolveRequest struct {
	name       string
	constraint string
	features   []string
	source     domain.ResolutionSource
}

// synthesize merges inferred dependencies with embedded metadata into a
// conflict-free manifest. Explicit entries win on name collision;
// inferred entries resolve to the highest stable release.
func (a *App) synthesize(
	ctx context.Context,
	pkgName string,
	meta *domain.EmbeddedMetadata,
	deps *domain.DependencySet,
) (*domain.ResolvedManifest, error) {
	edition := domain.DefaultEdition
	if meta != nil && meta.Package != nil {
		if meta.Package.Name != "" {
			pkgName = meta.Package.Name
		}
		if meta.Package.Edition != "" {
			edition = meta.Package.Edition
		}
	}

	var explicit map[string]domain.DependencySpec
	if meta != nil {
		explicit = meta.Dependencies
	}

	// Inferred entries first in source order, explicit-only entries
	// after in name order. An explicit spec overrides the constraint of
	// an inferred entry with the same (normalized) name.
	var requests []resolveRequest
	claimed := make(map[string]bool)
	for _, name := range deps.Names() {
		req := resolveRequest{name: name, source: domain.SourceInferred}
		for specName, spec := range explicit {
			if domain.CanonicalName(specName) == domain.CanonicalName(name) {
				req = resolveRequest{
					name:       specName,
					constraint: spec.Version,
					features:   spec.Features,
					source:     domain.SourceExplicit,
				}
				claimed[specName] = true
				break
			}
		}
		requests = append(requests, req)
	}
	rest := make([]string, 0, len(explicit))
	for specName := range explicit {
		if !claimed[specName] {
			rest = append(rest, specName)
		}
	}
	sort.Strings(rest)
	for _, specName := range rest {
		spec := explicit[specName]
		requests = append(requests, resolveRequest{
			name:       specName,
			constraint: spec.Version,
			features:   spec.Features,
			source:     domain.SourceExplicit,
		})
	}

	entries := make([]domain.ManifestEntry, len(requests))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i, req := range requests {
		g.Go(func() error {
			entry, err := a.resolveEntry(gctx, req)
			if err != nil {
				return err
			}
			entries[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	manifest := &domain.ResolvedManifest{
		PackageName: pkgName,
		Edition:     edition,
		Entries:     dedupe(entries),
	}
	a.logger.Debug(fmt.Sprintf("synthesized manifest with %d dependencies", len(manifest.Entries)))
	return manifest, nil
}

// resolveEntry resolves one requirement. An explicit constraint no
// published version can satisfy is a manifest conflict, not a plain
// resolution failure: the script author asked for something impossible.
func (a *App) resolveEntry(ctx context.Context, req resolveRequest) (domain.ManifestEntry, error) {
	resolvedName, version, err := a.resolver.Resolve(ctx, req.name, req.constraint)
	if err != nil {
		if req.source == domain.SourceExplicit && errors.Is(err, domain.ErrNoMatchingVersion) {
			return domain.ManifestEntry{}, zerr.With(zerr.With(
				zerr.Wrap(domain.ErrManifestConflict, "explicit requirement is unsatisfiable"),
				"package", req.name), "constraint", req.constraint)
		}
		return domain.ManifestEntry{}, err
	}

	if req.source == domain.SourceExplicit && req.constraint != "" {
		a.warnIfOutdated(ctx, resolvedName, version)
	}

	return domain.ManifestEntry{
		Name:     resolvedName,
		Version:  version,
		Features: req.features,
		Source:   req.source,
	}, nil
}

// warnIfOutdated flags explicit pins sitting behind the latest stable
// release. Advisory only; the pin is honored.
func (a *App) warnIfOutdated(ctx context.Context, name, version string) {
	_, latest, err := a.resolver.Resolve(ctx, name, "")
	if err != nil {
		return
	}
	pinned, perr := semver.NewVersion(version)
	newest, lerr := semver.NewVersion(latest)
	if perr != nil || lerr != nil {
		return
	}
	if newest.GreaterThan(pinned) {
		a.logger.Warn("pinned version is behind latest stable",
			"package", name, "pinned", version, "latest", latest)
	}
}

// dedupe drops duplicate registry names, preferring explicit entries.
// Duplicates appear when an inferred underscore spelling and an explicit
// hyphen spelling resolve to the same package.
func dedupe(entries []domain.ManifestEntry) []domain.ManifestEntry {
	out := entries[:0]
	seen := make(map[string]int)
	for _, e := range entries {
		if i, ok := seen[e.Name]; ok {
			if e.Source == domain.SourceExplicit && out[i].Source == domain.SourceInferred {
				out[i] = e
			}
			continue
		}
		seen[e.Name] = len(out)
		out = append(out, e)
	}
	return out
}

// sanitizeName maps a script stem onto a valid generated package name.
func sanitizeName(stem string) string {
	var b strings.Builder
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := b.String()
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "script_" + name
	}
	return name
}

