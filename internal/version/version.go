// Package version provides version and build information for the binary.
package version

import (
	_ "embed"
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var versionFile string

// Linker-injected variables. Set via:
//
//	go build -ldflags "-X github.com/designcoil/catalog-import/internal/version.gitCommit=VALUE"
var (
	gitCommit string
	buildDate string
)

// Info represents version and build information.
type Info struct {
	Version   string
	GitCommit string
	BuildDate string
	GoVersion string
}

// String formats Info for human-readable display.
func (i Info) String() string {
	return fmt.Sprintf("Version:    %s\nGit Commit: %s\nBuild Date: %s\nGo Version: %s",
		i.Version, i.GitCommit, i.BuildDate, i.GoVersion)
}

// Get returns the populated Info.
func Get() Info {
	commit, date := buildInfo()
	return Info{
		Version:   strings.TrimSpace(versionFile),
		GitCommit: commit,
		BuildDate: date,
		GoVersion: runtime.Version(),
	}
}

// buildInfo prefers linker flags and falls back to the VCS stamp the Go
// toolchain embeds.
func buildInfo() (commit, date string) {
	commit, date = gitCommit, buildDate

	if info, ok := debug.ReadBuildInfo(); ok {
		var revision, vcsTime string
		dirty := false
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				revision = s.Value
			case "vcs.time":
				vcsTime = s.Value
			case "vcs.modified":
				dirty = s.Value == "true"
			}
		}
		if commit == "" && revision != "" {
			if len(revision) > 7 {
				revision = revision[:7]
			}
			if dirty {
				revision += "-dirty"
			}
			commit = revision
		}
		if date == "" {
			date = vcsTime
		}
	}

	if commit == "" {
		commit = "unknown"
	}
	if date == "" {
		date = "unknown"
	}
	return commit, date
}
