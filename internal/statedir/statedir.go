// Package statedir manages airlock's on-disk state: the run lock that keeps
// concurrent invocations from racing, and the durable records of network
// interfaces the airgap guard brought down.
package statedir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/airlock-sh/airlock/internal/messages"
)

const lockFileName = "run.lock"

var flockFn = unix.Flock

// Lock is an exclusive advisory lock on the state directory.
type Lock struct {
	file *os.File
}

// Acquire creates dir if needed and takes the run lock without blocking.
// A held lock means another airlock run is in progress.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf(messages.StateCreateDirFmt, dir, err)
	}
	path := filepath.Join(dir, lockFileName)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf(messages.StateOpenLockFmt, path, err)
	}
	if err := flockFn(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf(messages.StateLockFmt, dir)
	}
	return &Lock{file: file}, nil
}

// Release drops the lock and closes the underlying file.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	if err := flockFn(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		_ = l.file.Close()
		return err
	}
	return l.file.Close()
}

// InterfaceRecord remembers one interface the guard brought down so a later
// restore-net run can bring it back up without re-deriving what was touched.
type InterfaceRecord struct {
	Name       string    `json:"name"`
	WasUp      bool      `json:"wasUp"`
	DisabledAt time.Time `json:"disabledAt"`
}

// SaveInterfaceRecords writes records to path, replacing any previous set.
func SaveInterfaceRecords(path string, records []InterfaceRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf(messages.StateWriteFmt, path, err)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf(messages.StateWriteFmt, path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf(messages.StateWriteFmt, path, err)
	}
	return nil
}

// LoadInterfaceRecords reads the record set at path. A missing file means
// the guard never disabled anything; that is not an error.
func LoadInterfaceRecords(path string) ([]InterfaceRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf(messages.StateReadFmt, path, err)
	}
	var records []InterfaceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf(messages.StateReadFmt, path, err)
	}
	return records, nil
}

// ClearInterfaceRecords removes the record file once restore has completed.
func ClearInterfaceRecords(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
