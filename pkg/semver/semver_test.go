package semver

import (
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  SemVer
	}{
		{
			input: "18.17.0",
			want:  SemVer{Original: "18.17.0", Major: 18, Minor: 17, Patch: 0},
		},
		{
			input: "v18.17.0",
			want:  SemVer{Original: "v18.17.0", Major: 18, Minor: 17, Patch: 0},
		},
		{
			input: "0.8.0",
			want:  SemVer{Original: "0.8.0", Major: 0, Minor: 8, Patch: 0},
		},
		{
			input: "20.0.0-rc.1",
			want:  SemVer{Original: "20.0.0-rc.1", Major: 20, Minor: 0, Patch: 0, Prerelease: "rc.1"},
		},
		{
			input: "v21.0.0-nightly20230815",
			want:  SemVer{Original: "v21.0.0-nightly20230815", Major: 21, Patch: 0, Prerelease: "nightly20230815"},
		},
		{
			input: "1.2.3+build.5",
			want:  SemVer{Original: "1.2.3+build.5", Major: 1, Minor: 2, Patch: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	inputs := []string{
		"",
		"latest",
		"1.2",
		"1.2.3.4",
		"1.2.x",
		"01.2.3",
		"1.-2.3",
		"1.2.3-",
		"bananas",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			if _, err := Parse(input); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", input)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.2.3", "1.2.3", 0},
		{"0.7.9", "0.8.0", -1},
		{"18.0.0", "17.9.9", 1},
		{"1.2.3", "1.2.4", -1},
		{"20.0.0-rc.1", "20.0.0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			got := MustParse(tt.a).Compare(MustParse(tt.b))
			if got != tt.want {
				t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestAtLeast(t *testing.T) {
	floor := MustParse("0.8.0")
	if MustParse("0.7.9").AtLeast(floor) {
		t.Error("0.7.9 should not satisfy floor 0.8.0")
	}
	if !MustParse("0.8.0").AtLeast(floor) {
		t.Error("0.8.0 should satisfy floor 0.8.0")
	}
	if !MustParse("18.17.0").AtLeast(floor) {
		t.Error("18.17.0 should satisfy floor 0.8.0")
	}
}

func TestIsPrerelease(t *testing.T) {
	if MustParse("18.17.0").IsPrerelease() {
		t.Error("18.17.0 is not a prerelease")
	}
	if !MustParse("20.0.0-rc.1").IsPrerelease() {
		t.Error("20.0.0-rc.1 is a prerelease")
	}
}
