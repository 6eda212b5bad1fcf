package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

const Product = "fmtinfo"

// GitVersion is a version as described by Git (passed in at build via -ldflags).
var GitVersion string

const revisionLength = 7

type buildInfo struct {
	goVersion string
	platform  string
	arch      string
	revision  string
	modified  bool
}

func readBuildInfo() (buildInfo, bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return buildInfo{}, false
	}

	bi := buildInfo{goVersion: info.GoVersion}
	for _, kv := range info.Settings {
		switch kv.Key {
		case "GOOS":
			bi.platform = kv.Value
		case "GOARCH":
			bi.arch = kv.Value
		case "vcs.revision":
			bi.revision = kv.Value[:min(len(kv.Value), revisionLength)]
		case "vcs.modified":
			bi.modified = kv.Value == "true"
		}
	}
	return bi, true
}

// GetFull describes the version, revision, Go version and platform, e.g.
// "fmtinfo version v0.1.0 from 1a2b3c4 with go1.25.5 on linux/amd64".
func GetFull() string {
	bi, ok := readBuildInfo()
	if !ok {
		return ""
	}

	var sb strings.Builder

	version := "(untagged)"
	if GitVersion != "" {
		version = buildVersionNumber(GitVersion, bi.modified)
	}
	sb.WriteString(Product + " version " + version)

	if bi.revision != "" {
		sb.WriteString(" from " + bi.revision)
	}

	sb.WriteString(" with " + bi.goVersion)
	sb.WriteString(fmt.Sprintf(" on %s/%s", bi.platform, bi.arch))

	return sb.String()
}

func GetShort() string {
	bi, ok := readBuildInfo()
	if !ok {
		return ""
	}
	return buildVersionNumber(GitVersion, bi.modified)
}

func buildVersionNumber(v string, dirty bool) string {
	if v != "" && dirty {
		return v + "+dirty"
	}
	return v
}
