// Package buildinfo reports the version of the running binary.
//
// Release builds stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/alluvial/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/alluvial/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/alluvial/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Binaries built with "go install" carry no ldflags; for those the module
// version and VCS stamps embedded by the toolchain fill the gaps.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"sync"
)

const (
	unsetVersion = "dev"
	unsetCommit  = "none"
	unsetDate    = "unknown"
)

// Stamped via ldflags.
var (
	Version = unsetVersion
	Commit  = unsetCommit
	Date    = unsetDate
)

// Info is the resolved build information.
type Info struct {
	Version string
	Commit  string
	Date    string
}

var resolve = sync.OnceValue(func() Info {
	bi, _ := debug.ReadBuildInfo()
	return fromBuildInfo(Info{Version, Commit, Date}, bi)
})

// Get returns the build information, preferring ldflags values.
func Get() Info { return resolve() }

// fromBuildInfo fills the fields of stamped that were left unset.
func fromBuildInfo(stamped Info, bi *debug.BuildInfo) Info {
	if bi == nil {
		return stamped
	}
	if stamped.Version == unsetVersion && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		stamped.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if stamped.Commit == unsetCommit {
				stamped.Commit = s.Value
			}
		case "vcs.time":
			if stamped.Date == unsetDate {
				stamped.Date = s.Value
			}
		}
	}
	return stamped
}

// String returns the build information on three lines.
func String() string {
	i := Get()
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", i.Version, i.Commit, i.Date)
}

// Template returns the cobra version template.
func Template() string {
	i := Get()
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", i.Version, i.Commit, i.Date)
}
