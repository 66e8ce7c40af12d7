package buildconfig

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// Set with -ldflags "-X github.com/Harshitk-cp/ise/internal/buildconfig.version=...".
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Info describes the running binary.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
}

var (
	infoOnce sync.Once
	info     Info
)

// Get returns the ldflags values, falling back to the module and VCS
// stamps recorded by `go install` when they were not set.
func Get() Info {
	infoOnce.Do(func() {
		info = Info{Version: version, Commit: commit, Date: date, Go: "unknown"}
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		info.Go = bi.GoVersion
		if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "unknown" {
					info.Commit = s.Value
				}
			case "vcs.time":
				if info.Date == "unknown" {
					info.Date = s.Value
				}
			}
		}
	})
	return info
}

// String is the one-line form printed by `ise version`.
func (i Info) String() string {
	return fmt.Sprintf("ise %s (commit %s, built %s, %s)", i.Version, i.Commit, i.Date, i.Go)
}
