package installer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"nodekit/pkg/semver"
)

// Remove deletes the installed artifact set for version. Removing a
// version that was never installed is not an error. The same operation
// backs the installer's rollback path.
func Remove(devDir, version string) error {
	sv, err := semver.Parse(version)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidVersion, err)
	}

	dir := filepath.Join(devDir, sv.Normalized())
	// The version directory must stay inside the devdir.
	if rel, err := filepath.Rel(devDir, dir); err != nil || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("refusing to remove %s outside of %s", dir, devDir)
	}

	if _, err := os.Lstat(dir); err != nil {
		if os.IsNotExist(err) {
			slog.Warn("version not installed", "version", sv.Normalized(), "dir", dir)
			return nil
		}
		return fmt.Errorf("failed to stat %s: %w", dir, err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	slog.Info("removed", "version", sv.Normalized(), "dir", dir)
	return nil
}
