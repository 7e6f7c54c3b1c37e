// Package build holds build-time information about the rsx binary.
package build

// Version is the rsx release version. It defaults to "dev" and is
// stamped by linker flags for release builds.
var Version = "dev"

// Commit is the VCS revision the binary was built from, stamped by
// linker flags alongside Version. Empty for local builds.
var Commit = ""

// String renders the version with the commit suffix when present.
func String() string {
	if Commit == "" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
