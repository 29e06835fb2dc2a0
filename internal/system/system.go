// Package system abstracts process execution and filesystem access so that
// pipeline steps can be unit-tested without invoking real package managers.
package system

import (
	"os"
	"os/exec"
	"path/filepath"
)

// System abstracts the host operations needed by pipeline steps and the
// airgap guard. Packages that need a narrower surface declare their own
// interface and accept this one.
type System interface {
	Run(name string, args ...string) ([]byte, error)
	LookPath(name string) (string, error)
	Stat(name string) (os.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
	Remove(name string) error
	RemoveAll(path string) error
	Glob(pattern string) ([]string, error)
}

// RealSystem implements System against the host OS.
type RealSystem struct{}

// Run executes name with args and returns its combined output.
func (RealSystem) Run(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// LookPath searches for an executable in PATH.
func (RealSystem) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// Stat returns a FileInfo describing the named file.
func (RealSystem) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

// ReadFile reads the named file and returns the contents.
func (RealSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// WriteFile writes data to the named file, creating it if necessary.
func (RealSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

// MkdirAll creates a directory named path, along with any necessary parents.
func (RealSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Remove removes the named file or empty directory.
func (RealSystem) Remove(name string) error {
	return os.Remove(name)
}

// RemoveAll removes path and any children it contains.
func (RealSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// Glob returns the names of all files matching pattern.
func (RealSystem) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}
