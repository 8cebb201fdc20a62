// Package install describes the directory layout a cmake install step
// populates under its prefix.
package install

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Default GNUInstallDirs names. Projects that change CMAKE_INSTALL_*DIR
// are not supported.
const (
	BinDir         = "bin"
	SbinDir        = "sbin"
	LibDir         = "lib"
	IncludeDir     = "include"
	SysconfDir     = "etc"
	SharedStateDir = "com"
	DataRootDir    = "share"
)

// Dirs lists every install subdirectory.
var Dirs = []string{BinDir, SbinDir, LibDir, IncludeDir, SysconfDir, SharedStateDir, DataRootDir}

// Layout is an install prefix.
type Layout struct {
	Root string
}

// Dir returns the subdirectory name of the prefix, creating it if needed.
func (l Layout) Dir(name string) (string, error) {
	dir := filepath.Join(l.Root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// Path returns the subdirectory name of the prefix without creating it.
func (l Layout) Path(name string) string {
	return filepath.Join(l.Root, name)
}

// Files lists every regular file under the subdirectory name, sorted.
// A missing subdirectory is created and yields no files.
func (l Layout) Files(name string) ([]string, error) {
	dir, err := l.Dir(name)
	if err != nil {
		return nil, err
	}
	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
