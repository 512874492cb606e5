// Package checksum verifies downloaded artifacts against a SHASUMS256
// manifest. Hashes are recorded per archive-relative filename while
// content streams to disk, and compared once every download has settled.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"
	"sync"
)

// Hasher accumulates a sha256 digest over a byte stream. It implements
// io.Writer so it can sit on the read side of an io.TeeReader.
type Hasher struct {
	h hash.Hash
}

// NewHasher returns a Hasher ready to consume one file's content.
func NewHasher() *Hasher {
	return &Hasher{h: sha256.New()}
}

func (h *Hasher) Write(p []byte) (int, error) {
	return h.h.Write(p)
}

// Sum returns the hex-encoded digest of everything written so far.
func (h *Hasher) Sum() string {
	return hex.EncodeToString(h.h.Sum(nil))
}

// ParseManifest parses the text of a checksum manifest into a
// filename->hash map. A well-formed line has exactly two
// whitespace-separated tokens, "<hash> <path>". Malformed lines are
// skipped. A leading "./" on the path is stripped.
func ParseManifest(text string) map[string]string {
	expected := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		tokens := strings.Fields(line)
		if len(tokens) != 2 {
			continue
		}
		name := strings.TrimPrefix(tokens[1], "./")
		expected[name] = tokens[0]
	}
	return expected
}

// Table holds the two checksum mappings: hashes observed while
// downloading, and hashes expected per the manifest. Concurrent
// producers each own a distinct key, so a single mutex suffices.
type Table struct {
	mu       sync.Mutex
	observed map[string]string
	expected map[string]string
}

func NewTable() *Table {
	return &Table{
		observed: make(map[string]string),
		expected: make(map[string]string),
	}
}

// RecordObserved stores the locally computed hash for a downloaded file.
func (t *Table) RecordObserved(name, hash string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observed[name] = hash
}

// SetExpected replaces the expected mapping with the parsed manifest.
func (t *Table) SetExpected(expected map[string]string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expected = expected
}

// MismatchError reports a file whose downloaded content does not match
// the manifest.
type MismatchError struct {
	File     string
	Got      string
	Expected string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: got %s, expected %s", e.File, e.Got, e.Expected)
}

// Verify checks every observed file against the expected mapping.
// A file observed but absent from the manifest is an error (the
// manifest should cover everything we downloaded); entries present only
// in the manifest are fine, they were simply never downloaded.
func (t *Table) Verify() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for name, got := range t.observed {
		want, ok := t.expected[name]
		if !ok {
			return fmt.Errorf("no checksum found in manifest for %s", name)
		}
		if got != want {
			return &MismatchError{File: name, Got: got, Expected: want}
		}
	}
	return nil
}
