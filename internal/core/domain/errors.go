package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

var (
	// ErrSyntax is returned when the input source cannot be parsed.
	ErrSyntax = zerr.New("syntax error")

	// ErrAmbiguousEntryPoint is returned when a source declares more than
	// one entry point without the multi-main override.
	ErrAmbiguousEntryPoint = zerr.New("multiple entry points found")

	// ErrDependencyResolution is returned when a dependency has no
	// registry version satisfying its constraints.
	ErrDependencyResolution = zerr.New("dependency resolution failed")

	// ErrNoMatchingVersion is the resolution failure for a package that
	// exists but publishes no version satisfying the constraint. Kept
	// distinct so manifest synthesis can tell an impossible explicit
	// requirement apart from an unknown package.
	ErrNoMatchingVersion = zerr.Wrap(ErrDependencyResolution, "no published version satisfies constraint")

	// ErrManifestConflict is returned when explicit and inferred
	// requirements for the same package are incompatible.
	ErrManifestConflict = zerr.New("manifest conflict")

	// ErrTransform is returned when the source shape cannot be wrapped
	// into a buildable program.
	ErrTransform = zerr.New("transform failed")

	// ErrBuild is returned when the external toolchain exits non-zero.
	// Its diagnostics are relayed verbatim, never reinterpreted.
	ErrBuild = zerr.New("build failed")

	// ErrCacheIO is returned when lock acquisition or artifact publish
	// fails. Distinct from ErrBuild so users don't blame their code.
	ErrCacheIO = zerr.New("cache I/O failed")
)

// Exit codes distinguish "your script failed" from "we failed to build
// your script". A successfully launched script's own exit code is passed
// through untouched.
const (
	ExitOK         = 0
	ExitUsage      = 1
	ExitSyntax     = 2
	ExitResolution = 3
	ExitConflict   = 4
	ExitTransform  = 5
	ExitBuild      = 6
	ExitCache      = 7
)

// ExitCode maps a pipeline error to its process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrSyntax), errors.Is(err, ErrAmbiguousEntryPoint):
		return ExitSyntax
	case errors.Is(err, ErrManifestConflict):
		return ExitConflict
	case errors.Is(err, ErrDependencyResolution):
		return ExitResolution
	case errors.Is(err, ErrTransform):
		return ExitTransform
	case errors.Is(err, ErrBuild):
		return ExitBuild
	case errors.Is(err, ErrCacheIO):
		return ExitCache
	default:
		return ExitUsage
	}
}
