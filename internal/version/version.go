// Package version reports the vinject build version.
package version

import (
	"runtime/debug"
	"strings"
)

// Version is set at build time: -ldflags "-X github.com/Alia5/vinject/internal/version.Version=x.y.z"
var Version = ""

// Get returns Version without a leading "v". Without ldflags it falls back
// to the main module version from the build info, then to "0.0.1-dev".
func Get() string {
	if Version != "" {
		return strings.TrimPrefix(Version, "v")
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			return strings.TrimPrefix(v, "v")
		}
	}
	return "0.0.1-dev"
}
