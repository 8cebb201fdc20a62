// Package lock provides an advisory lock file guarding a build directory
// against concurrent usecmake processes.
package lock

import (
	"os"
	"path/filepath"

	"github.com/qiniu/x/log"
)

// FileName is the lock file created inside a locked directory.
const FileName = ".usecmake.lock"

// Mutex is an inter-process mutex backed by a lock file.
type Mutex struct {
	path string
}

// MutexAt returns a mutex on the lock file at path.
func MutexAt(path string) *Mutex {
	return &Mutex{path: path}
}

// Dir returns a mutex guarding dir.
func Dir(dir string) *Mutex {
	return MutexAt(filepath.Join(dir, FileName))
}

// Lock blocks until the lock is held and returns the function releasing it.
func (m *Mutex) Lock() (unlock func(), err error) {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(m.path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, &os.PathError{Op: "lock", Path: m.path, Err: err}
	}
	return func() {
		if err := unlockFile(f); err != nil {
			log.Warnf("Unlocking %s: %v", m.path, err)
		}
		if err := f.Close(); err != nil {
			log.Warnf("Closing %s: %v", m.path, err)
		}
	}, nil
}
