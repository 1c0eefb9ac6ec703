// Package version reports how the strata binary was built.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// These variables are set at build time using -ldflags
var (
	// Version is the semantic version of the application
	Version = "dev"

	// GitCommit is the git commit hash when the binary was built
	GitCommit = "unknown"

	// BuildTime is the time when the binary was built (RFC3339 format)
	BuildTime = "unknown"
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string    `json:"version" yaml:"version"`
	GitCommit string    `json:"git_commit" yaml:"git_commit"`
	BuildTime time.Time `json:"build_time,omitzero" yaml:"build_time,omitempty"`
	GoVersion string    `json:"go_version" yaml:"go_version"`
	Platform  string    `json:"platform" yaml:"platform"`
	Dirty     bool      `json:"dirty" yaml:"dirty"`
}

// Get returns the build information of the running binary. Values injected
// through ldflags win over what the Go toolchain recorded.
func Get() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: parseTime(BuildTime),
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if (info.Version == "" || info.Version == "dev") && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" || info.GitCommit == "unknown" {
				info.GitCommit = s.Value
			}
		case "vcs.time":
			if info.BuildTime.IsZero() {
				info.BuildTime = parseTime(s.Value)
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	return info
}

// Short returns "<version>" or "<version> (<commit>)".
func (b BuildInfo) Short() string {
	if len(b.GitCommit) >= 7 && b.GitCommit != "unknown" {
		return fmt.Sprintf("%s (%s)", b.Version, b.GitCommit[:7])
	}
	return b.Version
}

// IsRelease returns true if this is a release build (not dev)
func (b BuildInfo) IsRelease() bool {
	return b.Version != "dev" && !strings.HasPrefix(b.Version, "dev-") && !b.Dirty
}

// String returns a multi-line description for humans.
func (b BuildInfo) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "strata %s\n", b.Short())
	if !b.BuildTime.IsZero() {
		fmt.Fprintf(&sb, "Built: %s\n", b.BuildTime.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(&sb, "Go: %s\n", b.GoVersion)
	fmt.Fprintf(&sb, "Platform: %s", b.Platform)
	if b.Dirty {
		sb.WriteString("\nWorking directory: dirty")
	}
	return sb.String()
}

func parseTime(s string) time.Time {
	if s == "" || s == "unknown" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
