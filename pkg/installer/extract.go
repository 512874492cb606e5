package installer

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Predicate decides whether an archive entry (relative path after
// stripping the top-level directory) is extracted.
type Predicate func(relPath string) bool

// headersPredicate keeps the two file kinds native builds need: C/C++
// headers and gyp build metadata. Sources, scripts and docs in the
// archive are discarded.
func headersPredicate(relPath string) bool {
	switch filepath.Ext(relPath) {
	case ".h", ".gypi":
		return true
	}
	return false
}

// extractTarGz streams a gzipped tarball into destDir, stripping the
// archive's top-level directory from every entry and writing only the
// entries keep accepts. Returns the number of accepted entries.
// Memory use is constant with respect to archive size.
func extractTarGz(r io.Reader, destDir string, keep Predicate) (int, error) {
	gzr, err := gzip.NewReader(r)
	if err != nil {
		return 0, err
	}
	defer gzr.Close()

	count := 0
	tr := tar.NewReader(gzr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		rel, ok := stripFirstSegment(hdr.Name)
		if !ok || !keep(rel) {
			continue
		}
		// Entries must stay inside destDir; a name resolving above it
		// means the archive is malformed or tampered with.
		if !filepath.IsLocal(filepath.FromSlash(rel)) {
			return count, fmt.Errorf("%w: %s is outside the target directory", ErrExtract, hdr.Name)
		}

		target := filepath.Join(destDir, filepath.FromSlash(rel))
		if err := writeEntry(tr, target, hdr.Mode); err != nil {
			return count, err
		}
		count++
	}
}

// stripFirstSegment drops the archive's top-level directory from an
// entry name. Entries at the top level itself carry no payload we want
// and are skipped.
func stripFirstSegment(name string) (string, bool) {
	name = strings.TrimPrefix(name, "./")
	i := strings.IndexByte(name, '/')
	if i < 0 || i == len(name)-1 {
		return "", false
	}
	return name[i+1:], true
}

func writeEntry(r io.Reader, target string, mode int64) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("%w %s: %w", ErrExtract, target, err)
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(mode)&0777)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrExtract, target, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w %s: %w", ErrExtract, target, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w %s: %w", ErrExtract, target, err)
	}
	return nil
}
