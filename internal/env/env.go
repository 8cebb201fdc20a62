// Package env resolves environment overrides and the user work directory.
package env

import (
	"os"
	"path/filepath"
)

// Environment variables honored by usecmake.
const (
	CMakeExecutableVar = "CMAKE_EXECUTABLE"
	MakeExecutableVar  = "MAKE_EXECUTABLE"
	ConfigVar          = "USECMAKE_CONFIG"
)

// CMakeExecutable returns the cmake binary, "cmake" unless overridden.
func CMakeExecutable() string {
	return getOr(CMakeExecutableVar, "cmake")
}

// MakeExecutable returns the make-like driver, "make" unless overridden.
func MakeExecutable() string {
	return getOr(MakeExecutableVar, "make")
}

// ConfigFile returns the config file named by USECMAKE_CONFIG, or "".
func ConfigFile() string {
	return os.Getenv(ConfigVar)
}

// WorkDir returns the per-user cache directory used for exports.
func WorkDir() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(userCacheDir, ".usecmake")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

func getOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
