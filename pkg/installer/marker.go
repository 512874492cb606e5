package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// installVersion is the schema version stamped into every install
// directory. Bumping it invalidates existing installs on the next
// ensure-mode run.
const installVersion = 11

const markerFileName = "installVersion"

// readMarker returns the schema version recorded in dir. The caller
// distinguishes a missing marker (os.IsNotExist) from a corrupt one.
func readMarker(dir string) (int, error) {
	data, err := os.ReadFile(filepath.Join(dir, markerFileName))
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("corrupt %s file: %w", markerFileName, err)
	}
	return n, nil
}

// writeMarker stamps dir with the current schema version.
func writeMarker(dir string) error {
	data := fmt.Sprintf("%d\n", installVersion)
	if err := os.WriteFile(filepath.Join(dir, markerFileName), []byte(data), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", markerFileName, err)
	}
	return nil
}
