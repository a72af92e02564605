package settings

import (
	"os"
	"path/filepath"
)

const DefaultScope = "mandl"

func ConfigRoot() string {
	// Windows
	if appdata := os.Getenv("APPDATA"); appdata != "" {
		return filepath.Join(appdata, "mandl")
	}

	// Linux/macOS XDG
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mandl")
	}

	// Linux/macOS default
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "mandl")
}

func SettingsDir() string {
	return filepath.Join(ConfigRoot(), "settings")
}

// ScopePath returns the settings file for one scope. Each scope is an
// independent set of the six persisted values.
func ScopePath(scope string) string {
	if scope == "" {
		scope = DefaultScope
	}

	return filepath.Join(SettingsDir(), scope+".yaml")
}
