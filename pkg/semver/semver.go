package semver

import (
	"fmt"
	"strconv"
	"strings"
)

// SemVer is a parsed semantic version.
type SemVer struct {
	Original   string // Original string (e.g., "v18.17.0" or "20.0.0-rc.1")
	Major      int
	Minor      int
	Patch      int
	Prerelease string // Tag after '-', empty for release versions
}

// Parse parses a version string into a SemVer. The leading 'v' is
// optional. Exactly three numeric dotted parts are required, optionally
// followed by a '-prerelease' tag and a '+build' suffix (the build
// suffix is discarded).
func Parse(v string) (SemVer, error) {
	original := v
	v = strings.TrimPrefix(v, "v")

	if build := strings.IndexByte(v, '+'); build >= 0 {
		v = v[:build]
	}

	var prerelease string
	if dash := strings.IndexByte(v, '-'); dash >= 0 {
		prerelease = v[dash+1:]
		v = v[:dash]
		if prerelease == "" {
			return SemVer{}, fmt.Errorf("invalid version %q: empty prerelease tag", original)
		}
	}

	parts := strings.Split(v, ".")
	if len(parts) != 3 {
		return SemVer{}, fmt.Errorf("invalid version %q: expected major.minor.patch", original)
	}

	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || (len(part) > 1 && part[0] == '0') {
			return SemVer{}, fmt.Errorf("invalid version %q: bad numeric part %q", original, part)
		}
		nums[i] = n
	}

	return SemVer{
		Original:   original,
		Major:      nums[0],
		Minor:      nums[1],
		Patch:      nums[2],
		Prerelease: prerelease,
	}, nil
}

// String returns the original version string.
func (v SemVer) String() string {
	return v.Original
}

// Normalized returns the version without 'v' prefix.
func (v SemVer) Normalized() string {
	return strings.TrimPrefix(v.Original, "v")
}

// IsPrerelease reports whether the version carries a prerelease tag.
func (v SemVer) IsPrerelease() bool {
	return v.Prerelease != ""
}

// Compare compares the numeric parts of two versions.
// Returns: -1 if v < other, 0 if equal, 1 if v > other.
// Prerelease tags are not ordered; callers only care whether one exists.
func (v SemVer) Compare(other SemVer) int {
	a := [3]int{v.Major, v.Minor, v.Patch}
	b := [3]int{other.Major, other.Minor, other.Patch}
	for i := range a {
		if a[i] < b[i] {
			return -1
		}
		if a[i] > b[i] {
			return 1
		}
	}
	return 0
}

// Less returns true if v < other (for sorting).
func (v SemVer) Less(other SemVer) bool {
	return v.Compare(other) < 0
}

// AtLeast returns true if v >= other, ignoring prerelease tags.
func (v SemVer) AtLeast(other SemVer) bool {
	return v.Compare(other) >= 0
}

// MustParse is Parse for static version literals in tests and tables.
func MustParse(v string) SemVer {
	sv, err := Parse(v)
	if err != nil {
		panic(err)
	}
	return sv
}
