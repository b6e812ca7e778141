// Package filex resolves and prepares the on-disk locations used by the Zuno
// client: the application data directory holding the local mirror database,
// the credential vault, and the device passkey.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

const appDirName = "zuno"

// AppDataDir returns the per-user application data directory, creating it if
// necessary. It resolves to $XDG_DATA_HOME/zuno or ~/.local/share/zuno.
func AppDataDir() (string, error) {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		base = filepath.Join(home, ".local", "share")
	}

	dir := filepath.Join(base, appDirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}

// EnsureSubDir creates (if needed) and returns a subdirectory of the app data
// directory.
func EnsureSubDir(name string) (string, error) {
	base, err := AppDataDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, name)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return dir, nil
}
