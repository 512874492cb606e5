package version

import (
	_ "embed"
	"strings"
)

//go:embed version.txt
var versionFile string

// Version returns the current nodekit version
func Version() string {
	return strings.TrimSpace(versionFile)
}

// UserAgent returns the client identifier sent with every download.
func UserAgent() string {
	return "nodekit/" + Version()
}
