package installer

import "errors"

var (
	// ErrInvalidVersion means the target version did not parse as a
	// semantic version. Returned before any filesystem or network I/O.
	ErrInvalidVersion = errors.New("invalid version")

	// ErrUnsupportedVersion means the target is below the minimum
	// supported release line.
	ErrUnsupportedVersion = errors.New("minimum target version is 0.8.0")

	// ErrPrereleaseUnsupported means the target is an unpublished
	// prerelease and no local artifact source was supplied.
	ErrPrereleaseUnsupported = errors.New("prerelease versions require --nodedir or --tarball")

	// ErrNoDevDir means no base directory was configured or derivable.
	ErrNoDevDir = errors.New("devdir is required")

	// ErrPrematureClose means the archive stream ended before a single
	// entry was accepted: either the connection dropped or the archive
	// is corrupt or empty.
	ErrPrematureClose = errors.New("connection closed before any archive entry was extracted")

	// ErrExtract means an accepted archive entry could not be written,
	// or named a path outside the target directory.
	ErrExtract = errors.New("failed to extract archive entry")

	// ErrPermissionDenied is returned once the temp-directory fallback
	// has been attempted and the retry also hit a permission error.
	ErrPermissionDenied = errors.New("permission denied, even after retrying in the temporary directory")
)
