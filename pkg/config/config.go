// Package config loads the optional settings file at
// ~/.config/nodekit/settings.toml. Flags override settings; settings
// override built-in defaults.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Settings are the persisted defaults for the install pipeline.
type Settings struct {
	// DevDir is the base directory for installed header sets.
	// Defaults to ~/.cache/nodekit.
	DevDir string `toml:"devdir"`
	// DistURL overrides the Node.js release mirror.
	DistURL string `toml:"disturl"`
	// Proxy is a proxy URL applied to every download.
	Proxy string `toml:"proxy"`
	// CAFile is a PEM bundle of extra trusted certificates.
	CAFile string `toml:"cafile"`
}

// Path returns the settings file location.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "nodekit", "settings.toml"), nil
}

// Load reads the settings file. A missing file is not an error; the
// zero Settings are returned.
func Load() (Settings, error) {
	path, err := Path()
	if err != nil {
		return Settings{}, err
	}
	return LoadFrom(path)
}

// LoadFrom reads settings from an explicit path.
func LoadFrom(path string) (Settings, error) {
	var s Settings
	if _, err := toml.DecodeFile(path, &s); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Settings{}, nil
		}
		return Settings{}, err
	}
	slog.Debug("loaded settings", "path", path)
	return s, nil
}

// DefaultDevDir is where header sets land when neither the flag nor
// the settings file names a directory.
func DefaultDevDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "nodekit"), nil
}
