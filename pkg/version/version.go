// Package version carries the build metadata of the tsalign binary.
package version

import (
	"runtime/debug"
)

// Build metadata, overridden with -ldflags "-X" at release build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// InitBinaryVersion fills the metadata from the embedded build info when the
// binary was built without ldflags, e.g. by go install.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	applyBuildInfo(info)
}

func applyBuildInfo(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == "none" {
				Commit = setting.Value
			}
		case "vcs.time":
			if Date == "unknown" {
				Date = setting.Value
			}
		}
	}
}

// String renders the metadata on one line.
func String() string {
	return Version + " (commit: " + Commit + ", built: " + Date + ")"
}
