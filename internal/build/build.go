// Package build describes the running binary.
package build

import (
	"runtime/debug"
	"time"
)

// Set with -ldflags "-X".
var (
	commit  = ""
	date    = ""
	version = "dev"
	repoURL = "https://github.com/ItsNotGoodName/x-canvasview"
)

var Current = newBuild(commit, date, version, repoURL, readVCS())

type Build struct {
	Commit    string    `json:"commit,omitempty"`
	Version   string    `json:"version,omitempty"`
	Date      time.Time `json:"date,omitempty"`
	Modified  bool      `json:"modified,omitempty"`
	GoVersion string    `json:"go_version,omitempty"`
	RepoURL   string    `json:"repo_url,omitempty"`
	CommitURL string    `json:"commit_url,omitempty"`
}

type vcs struct {
	revision  string
	time      string
	modified  bool
	goVersion string
}

func readVCS() vcs {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return vcs{}
	}

	v := vcs{goVersion: info.GoVersion}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			v.revision = s.Value
		case "vcs.time":
			v.time = s.Value
		case "vcs.modified":
			v.modified = s.Value == "true"
		}
	}
	return v
}

// newBuild prefers linker values and falls back to the toolchain's VCS stamp.
func newBuild(commit, date, version, repoURL string, v vcs) Build {
	if commit == "" {
		commit = v.revision
	}
	if date == "" {
		date = v.time
	}
	parsed, _ := time.Parse(time.RFC3339, date)

	b := Build{
		Commit:    commit,
		Version:   version,
		Date:      parsed,
		Modified:  v.modified,
		GoVersion: v.goVersion,
		RepoURL:   repoURL,
	}
	if repoURL != "" && commit != "" {
		b.CommitURL = repoURL + "/tree/" + commit
	}
	return b
}
