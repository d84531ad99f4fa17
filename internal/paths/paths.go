// Package paths resolves where menuctl keeps its configuration and its
// database.
//
// Both directories follow the same precedence: an explicit flag, then the
// environment, then the platform default. The data directory additionally
// honours a data_dir value from config.yaml, placed between flag and
// environment.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName is the directory name used under the platform base directories.
const AppName = "menus"

// Environment variables overriding the defaults.
const (
	EnvConfigDir = "MENUS_CONFIG_DIR"
	EnvDataDir   = "MENUS_DATA_DIR"
)

// platform holds the lookups tests replace.
var platform = struct {
	goos          string
	getenv        func(string) string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	getenv:        os.Getenv,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform configuration directory.
//
//	Linux:   $XDG_CONFIG_HOME/menus, else ~/.config/menus
//	macOS:   ~/Library/Application Support/menus
//	Windows: %APPDATA%/menus
func DefaultConfigDir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns the platform data directory.
//
//	Linux:   $XDG_DATA_HOME/menus, else ~/.local/share/menus
//	macOS and Windows: same as DefaultConfigDir
func DefaultDataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, homeRel string) (string, error) {
	if platform.goos != "linux" {
		dir, err := platform.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
	if base := platform.getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := platform.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, homeRel, AppName), nil
}

// ResolveConfigDir returns flag, else $MENUS_CONFIG_DIR, else
// DefaultConfigDir. Explicit values are made absolute.
func ResolveConfigDir(flag string) (string, error) {
	return resolve(DefaultConfigDir, flag, platform.getenv(EnvConfigDir))
}

// ResolveDataDir returns flag, else configValue, else $MENUS_DATA_DIR, else
// DefaultDataDir. Explicit values are made absolute.
func ResolveDataDir(flag, configValue string) (string, error) {
	return resolve(DefaultDataDir, flag, configValue, platform.getenv(EnvDataDir))
}

func resolve(fallback func() (string, error), candidates ...string) (string, error) {
	for _, c := range candidates {
		if c != "" {
			return filepath.Abs(c)
		}
	}
	return fallback()
}
