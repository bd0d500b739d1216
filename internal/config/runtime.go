package config

import (
	"os"
	"path/filepath"
)

// GetRuntimePath resolves LUMINA_RUNTIME_PATH, relative paths being taken
// from the user's home directory.
func GetRuntimePath() string {
	path := os.Getenv("LUMINA_RUNTIME_PATH")
	if path == "" {
		path = ".lumina"
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}
