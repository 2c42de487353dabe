// Package version reports the build details stamped in by the linker, e.g.
//
//	go build -ldflags "-X github.com/ljmet/condorsub/version.Version=1.2.0"
package version

import (
	"fmt"
	"strings"
)

// Build and version details
var (
	GitCommit = ""
	GitBranch = ""
	BuildDate = ""
	Version   = "unknown"
)

// String formats the version details which are set, one per line.
func String() string {
	var lines []string
	add := func(k, v string) {
		if v != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", k, v))
		}
	}
	add("git commit", GitCommit)
	add("git branch", GitBranch)
	add("build date", BuildDate)
	add("version", Version)
	return strings.Join(lines, "\n")
}

// LogFields returns the version details as logger key/value arguments.
func LogFields() []interface{} {
	return []interface{}{
		"GitCommit", GitCommit,
		"GitBranch", GitBranch,
		"BuildDate", BuildDate,
		"Version", Version,
	}
}
