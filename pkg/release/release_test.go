package release

import (
	"testing"
)

func TestResolve(t *testing.T) {
	desc, err := Resolve("v18.17.0", ResolveOptions{})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	if desc.Version != "18.17.0" {
		t.Errorf("Version = %q, want 18.17.0", desc.Version)
	}
	if desc.VersionDir != "18.17.0" {
		t.Errorf("VersionDir = %q, want 18.17.0", desc.VersionDir)
	}
	if want := "https://nodejs.org/dist/v18.17.0/node-v18.17.0-headers.tar.gz"; desc.HeadersURL != want {
		t.Errorf("HeadersURL = %q, want %q", desc.HeadersURL, want)
	}
	if want := "https://nodejs.org/dist/v18.17.0/SHASUMS256.txt"; desc.ShasumsURL != want {
		t.Errorf("ShasumsURL = %q, want %q", desc.ShasumsURL, want)
	}
	if want := "node-v18.17.0-headers.tar.gz"; desc.ArchiveFileName != want {
		t.Errorf("ArchiveFileName = %q, want %q", desc.ArchiveFileName, want)
	}

	if len(desc.Libs) != 3 {
		t.Fatalf("got %d libs, want 3", len(desc.Libs))
	}
	byArch := map[string]LibRef{}
	for _, lib := range desc.Libs {
		byArch[lib.Arch] = lib
	}
	x64 := byArch["x64"]
	if want := "https://nodejs.org/dist/v18.17.0/win-x64/node.lib"; x64.URL != want {
		t.Errorf("x64 URL = %q, want %q", x64.URL, want)
	}
	if want := "win-x64/node.lib"; x64.RelPath != want {
		t.Errorf("x64 RelPath = %q, want %q", x64.RelPath, want)
	}
	if _, ok := byArch["arm64"]; !ok {
		t.Error("arm64 lib missing from descriptor")
	}
}

func TestResolveCustomDistURL(t *testing.T) {
	desc, err := Resolve("20.1.0", ResolveOptions{DistURL: "https://mirror.example.com/node/"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if want := "https://mirror.example.com/node/v20.1.0/node-v20.1.0-headers.tar.gz"; desc.HeadersURL != want {
		t.Errorf("HeadersURL = %q, want %q", desc.HeadersURL, want)
	}
}

func TestResolveInvalidVersion(t *testing.T) {
	if _, err := Resolve("not-a-version", ResolveOptions{}); err == nil {
		t.Fatal("Resolve accepted a garbage version")
	}
}
