// Package filex prepares on-disk locations for client state.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureStateDir creates dir (relative paths resolve against the working
// directory) with owner-only permissions and returns its absolute path.
// The directory holds the session token, so group and other get no access.
func EnsureStateDir(dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dir)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	fi, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", dir, err)
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dir)
	}

	return dir, nil
}

// StateFile joins dir and name, the location of a state database.
func StateFile(dir, name string) string {
	return filepath.Join(dir, name)
}
