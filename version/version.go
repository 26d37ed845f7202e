// Package version reports the build of the running binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Set with -ldflags "-X github.com/grovetools/linkpicker/version.Version=...".
var (
	Version   = "dev"
	Commit    = "none"
	Branch    = "unknown"
	BuildDate = "unknown"
)

var readBuildInfo = debug.ReadBuildInfo

// Info describes one build.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Branch    string `json:"branch"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Compiler  string `json:"compiler"`
	Platform  string `json:"platform"`
}

// GetInfo merges the linker values with the module build info. A binary
// from `go install` has no linker values, so its module version and VCS
// stamp fill the gaps.
func GetInfo() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		Branch:    Branch,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Compiler:  runtime.Compiler,
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info.Version != "dev" {
		return info
	}
	bi, ok := readBuildInfo()
	if !ok || bi == nil {
		return info
	}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		info.Version = v
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.Commit == "none":
			info.Commit = s.Value
		case s.Key == "vcs.time" && info.BuildDate == "unknown":
			info.BuildDate = s.Value
		}
	}
	return info
}

// Short is the bare version, as shown in the prefs status line.
func Short() string { return GetInfo().Version }

// UserAgent identifies CLI requests in the daemon's logs.
func UserAgent() string {
	info := GetInfo()
	return fmt.Sprintf("linkpicker/%s (%s)", info.Version, info.Platform)
}

func (i Info) String() string {
	rows := [][2]string{
		{"Version", i.Version},
		{"Commit", i.Commit},
		{"Branch", i.Branch},
		{"Build Date", i.BuildDate},
		{"Go Version", i.GoVersion},
		{"Compiler", i.Compiler},
		{"Platform", i.Platform},
	}
	var b strings.Builder
	for n, r := range rows {
		if n > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%-11s %s", r[0]+":", r[1])
	}
	return b.String()
}
