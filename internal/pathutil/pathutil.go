// Package pathutil resolves paths written in the configuration file.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// expandHome replaces a leading "~" or "~/" with the home directory.
// Other paths, including "~user/...", are returned unchanged.
func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// ResolvePath turns a configured path into an absolute one.
// - $VAR and ${VAR} references are expanded first
// - ~ and ~/... are expanded to the home directory
// - Absolute paths are cleaned and returned
// - Relative paths are resolved from baseDir, the config file's directory
// - Empty paths are not allowed and return an error
func ResolvePath(path, baseDir string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	path = os.ExpandEnv(path)
	if path == "" {
		return "", fmt.Errorf("path expands to an empty string")
	}

	path, err := expandHome(path)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	return filepath.Join(baseDir, path), nil
}
