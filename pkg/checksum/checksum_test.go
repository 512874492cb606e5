package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
)

func sha256hex(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

func TestHasher(t *testing.T) {
	h := NewHasher()
	if _, err := h.Write([]byte("hello ")); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Write([]byte("world")); err != nil {
		t.Fatal(err)
	}
	if got, want := h.Sum(), sha256hex("hello world"); got != want {
		t.Errorf("Sum() = %s, want %s", got, want)
	}
}

func TestParseManifest(t *testing.T) {
	text := "aaa111 ./archive.tar.gz\n" +
		"bbb222 lib/x64/node.lib\n" +
		"malformed\n" +
		"too many tokens here\n" +
		"\n"

	expected := ParseManifest(text)
	if len(expected) != 2 {
		t.Fatalf("parsed %d entries, want 2: %v", len(expected), expected)
	}
	if got := expected["archive.tar.gz"]; got != "aaa111" {
		t.Errorf("archive.tar.gz = %q, want aaa111 (leading ./ stripped)", got)
	}
	if got := expected["lib/x64/node.lib"]; got != "bbb222" {
		t.Errorf("lib/x64/node.lib = %q, want bbb222", got)
	}
}

func TestTableVerify(t *testing.T) {
	t.Run("all match", func(t *testing.T) {
		tab := NewTable()
		tab.RecordObserved("a.tar.gz", "aaa")
		tab.SetExpected(map[string]string{"a.tar.gz": "aaa", "never-downloaded.lib": "ccc"})
		if err := tab.Verify(); err != nil {
			t.Errorf("Verify() = %v, want nil", err)
		}
	})

	t.Run("mismatch", func(t *testing.T) {
		tab := NewTable()
		tab.RecordObserved("a.tar.gz", "aaa")
		tab.SetExpected(map[string]string{"a.tar.gz": "zzz"})
		var mismatch *MismatchError
		err := tab.Verify()
		if !errors.As(err, &mismatch) {
			t.Fatalf("Verify() = %v, want MismatchError", err)
		}
		if mismatch.File != "a.tar.gz" {
			t.Errorf("mismatch file = %q, want a.tar.gz", mismatch.File)
		}
	})

	t.Run("observed file missing from manifest", func(t *testing.T) {
		tab := NewTable()
		tab.RecordObserved("a.tar.gz", "aaa")
		tab.SetExpected(map[string]string{"other.lib": "bbb"})
		err := tab.Verify()
		if err == nil {
			t.Fatal("Verify() = nil, want error for missing manifest entry")
		}
		var mismatch *MismatchError
		if errors.As(err, &mismatch) {
			t.Errorf("missing entry should not be reported as MismatchError, got %v", err)
		}
	})
}
