// Package release resolves a Node.js version into the concrete download
// URLs and metadata the installer consumes. The resulting Descriptor is
// immutable: it is built once per invocation and read everywhere else.
package release

import (
	"fmt"
	"strings"

	"nodekit/pkg/semver"
)

// DefaultDistURL is the canonical Node.js release mirror.
const DefaultDistURL = "https://nodejs.org/dist"

// Architectures that ship a Windows import library. arm64 only exists
// for newer release lines, which is why the installer tolerates a 404
// for it more quietly than for the others.
var WindowsArchs = []string{"x86", "x64", "arm64"}

// LibRef locates one architecture's import library.
type LibRef struct {
	Arch    string // "x86", "x64", "arm64"
	URL     string // full download URL
	RelPath string // path as listed in the checksum manifest, e.g. "win-x64/node.lib"
}

// Descriptor carries everything the install pipeline needs for one
// version. Consumed read-only.
type Descriptor struct {
	Version         string // normalized, no leading 'v'
	Semver          semver.SemVer
	VersionDir      string // directory name under the devdir
	HeadersURL      string
	ShasumsURL      string
	ArchiveFileName string // basename of the headers tarball
	Libs            []LibRef
}

// ResolveOptions adjust where releases are fetched from.
type ResolveOptions struct {
	DistURL string // base mirror URL, DefaultDistURL when empty
}

// Resolve parses the version string and builds the download table for
// it. The version may carry a leading 'v'.
func Resolve(version string, opts ResolveOptions) (Descriptor, error) {
	sv, err := semver.Parse(version)
	if err != nil {
		return Descriptor{}, err
	}

	distURL := strings.TrimRight(opts.DistURL, "/")
	if distURL == "" {
		distURL = DefaultDistURL
	}

	normalized := sv.Normalized()
	baseURL := fmt.Sprintf("%s/v%s", distURL, normalized)
	archiveName := fmt.Sprintf("node-v%s-headers.tar.gz", normalized)

	libs := make([]LibRef, 0, len(WindowsArchs))
	for _, arch := range WindowsArchs {
		relPath := fmt.Sprintf("win-%s/node.lib", arch)
		libs = append(libs, LibRef{
			Arch:    arch,
			URL:     fmt.Sprintf("%s/%s", baseURL, relPath),
			RelPath: relPath,
		})
	}

	return Descriptor{
		Version:         normalized,
		Semver:          sv,
		VersionDir:      normalized,
		HeadersURL:      fmt.Sprintf("%s/%s", baseURL, archiveName),
		ShasumsURL:      fmt.Sprintf("%s/SHASUMS256.txt", baseURL),
		ArchiveFileName: archiveName,
		Libs:            libs,
	}, nil
}
