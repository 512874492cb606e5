package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"nodekit/pkg/checksum"
	"nodekit/pkg/download"
	"nodekit/pkg/fanout"
	"nodekit/pkg/release"
)

// libFileName is the fixed name the import library is stored under in
// each architecture subdirectory.
const libFileName = "node.lib"

// optionalArchs are release lines that appeared later; a 404 for them
// is routine and logged quietly.
var optionalArchs = map[string]bool{"arm64": true}

// fetchArchLibs downloads the Windows import library for every
// supported architecture concurrently, hashing each stream for the
// checksum table. Completion is a join over all architectures: a
// tolerated 404 counts as done, any other non-200 fails the group.
func fetchArchLibs(ctx context.Context, fetcher *download.Fetcher, libs []release.LibRef, installDir string, table *checksum.Table) error {
	var g fanout.Group
	for _, lib := range libs {
		g.Go(func() error {
			return fetchOneLib(ctx, fetcher, lib, installDir, table)
		})
	}
	return g.Wait()
}

func fetchOneLib(ctx context.Context, fetcher *download.Fetcher, lib release.LibRef, installDir string, table *checksum.Table) error {
	archDir := filepath.Join(installDir, lib.Arch)
	if err := os.MkdirAll(archDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", archDir, err)
	}

	resp, err := fetcher.Fetch(ctx, lib.URL)
	if err != nil {
		var bad *download.BadStatusError
		if errors.As(err, &bad) && bad.Code == http.StatusNotFound {
			if optionalArchs[lib.Arch] {
				slog.Debug("import library not published for architecture", "arch", lib.Arch, "url", lib.URL)
			} else {
				slog.Warn("import library missing upstream", "arch", lib.Arch, "url", lib.URL)
			}
			return nil
		}
		return err
	}
	defer resp.Body.Close()

	target := filepath.Join(archDir, libFileName)
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}

	hasher := checksum.NewHasher()
	if _, err := io.Copy(f, io.TeeReader(resp.Body, hasher)); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to download %s: %w", lib.URL, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}

	table.RecordObserved(lib.RelPath, hasher.Sum())
	slog.Debug("fetched import library", "arch", lib.Arch, "path", target)
	return nil
}
