// Package xdg resolves XDG base directories.
package xdg

import (
	"os"
	"path/filepath"
)

type Dirs struct {
	configHome string
	cacheHome  string
	dataHome   string
}

// New reads the XDG variables from the process environment.
func New() *Dirs {
	return FromEnv(os.Getenv)
}

// FromEnv resolves the directories through getenv, falling back to the
// defaults under the home directory when a variable is unset.
func FromEnv(getenv func(string) string) *Dirs {
	home := getenv("HOME")
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = h
		} else {
			home = os.TempDir()
		}
	}

	pick := func(key string, fallback ...string) string {
		// relative values are invalid and must be ignored
		if v := getenv(key); v != "" && filepath.IsAbs(v) {
			return v
		}
		return filepath.Join(append([]string{home}, fallback...)...)
	}
	return &Dirs{
		configHome: pick("XDG_CONFIG_HOME", ".config"),
		cacheHome:  pick("XDG_CACHE_HOME", ".cache"),
		dataHome:   pick("XDG_DATA_HOME", ".local", "share"),
	}
}

func (d *Dirs) ConfigHome() string { return d.configHome }
func (d *Dirs) CacheHome() string  { return d.cacheHome }
func (d *Dirs) DataHome() string   { return d.dataHome }

func (d *Dirs) AppConfigDir(app string) string { return filepath.Join(d.configHome, app) }
func (d *Dirs) AppCacheDir(app string) string  { return filepath.Join(d.cacheHome, app) }
func (d *Dirs) AppDataDir(app string) string   { return filepath.Join(d.dataHome, app) }
