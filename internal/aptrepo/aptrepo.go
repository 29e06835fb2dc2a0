// Package aptrepo wires the bundle's package pool into apt as a local,
// trust-bypassed repository, and disables (comments out, never deletes)
// preexisting remote sources for the duration of the install. The originals
// are backed up verbatim, permissions included, so uninstall can restore
// them byte for byte.
package aptrepo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aymanbagabas/go-udiff"
	"github.com/go-logr/logr"

	"github.com/airlock-sh/airlock/internal/messages"
	"github.com/airlock-sh/airlock/internal/system"
)

const (
	// ListName is the apt list file airlock owns.
	ListName = "airlock.list"

	defaultSourcesList = "/etc/apt/sources.list"
	defaultSourcesDir  = "/etc/apt/sources.list.d"
	backupIndexName    = "index.json"
)

// Manager configures and removes the local repository. The apt paths are
// fields so tests can point them at a scratch directory.
type Manager struct {
	Sys         system.System
	Out         io.Writer
	Log         logr.Logger
	DebsDir     string
	BackupDir   string
	SourcesList string
	SourcesDir  string
}

// backupEntry records one disabled sources file so restore can put it back
// at its original path with its original mode.
type backupEntry struct {
	OriginalPath string      `json:"originalPath"`
	BackupName   string      `json:"backupName"`
	Mode         os.FileMode `json:"mode"`
}

// New returns a Manager against the standard apt paths.
func New(sys system.System, out io.Writer, log logr.Logger, debsDir, backupDir string) *Manager {
	return &Manager{
		Sys:         sys,
		Out:         out,
		Log:         log,
		DebsDir:     debsDir,
		BackupDir:   backupDir,
		SourcesList: defaultSourcesList,
		SourcesDir:  defaultSourcesDir,
	}
}

// ListPath is the path of the airlock-owned apt list file.
func (m *Manager) ListPath() string {
	return filepath.Join(m.SourcesDir, ListName)
}

// Configure writes the local repository stanza and disables every other
// sources file. Re-running against an already configured system is a no-op
// for files that are already disabled.
func (m *Manager) Configure() error {
	_, _ = fmt.Fprintf(m.Out, messages.RepoAddingFmt, m.DebsDir)

	stanza := fmt.Sprintf(messages.RepoStanzaFmt, m.DebsDir)
	if err := m.Sys.WriteFile(m.ListPath(), []byte(stanza), 0o644); err != nil {
		return fmt.Errorf(messages.RepoWriteListFmt, m.ListPath(), err)
	}

	files, err := m.sourcesFiles()
	if err != nil {
		return err
	}
	for _, path := range files {
		if err := m.disableFile(path); err != nil {
			return err
		}
	}
	m.Log.Info("local repository configured",
		"location", "aptrepo.Configure",
		"pool", m.DebsDir,
		"disabledSources", len(files))
	return nil
}

// Restore puts every backed-up sources file back verbatim and removes the
// airlock list file. Missing pieces are tolerated so a second uninstall run
// is a no-op, not an error.
func (m *Manager) Restore() error {
	_, _ = fmt.Fprint(m.Out, messages.RepoRemoving)

	if err := m.Sys.Remove(m.ListPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	entries, err := m.loadIndex()
	if err != nil {
		return err
	}
	for _, entry := range entries {
		data, err := m.Sys.ReadFile(filepath.Join(m.BackupDir, entry.BackupName))
		if err != nil {
			return fmt.Errorf(messages.RepoRestoreFmt, entry.OriginalPath, err)
		}
		if err := m.Sys.WriteFile(entry.OriginalPath, data, entry.Mode); err != nil {
			return fmt.Errorf(messages.RepoRestoreFmt, entry.OriginalPath, err)
		}
		m.Log.Info("sources file restored",
			"location", "aptrepo.Restore",
			"path", entry.OriginalPath)
	}
	if len(entries) > 0 {
		if err := m.Sys.RemoveAll(m.BackupDir); err != nil {
			return err
		}
	}
	return nil
}

// Configured reports whether the airlock list file is present.
func (m *Manager) Configured() bool {
	_, err := m.Sys.Stat(m.ListPath())
	return err == nil
}

// sourcesFiles returns every apt sources file that is not owned by airlock.
func (m *Manager) sourcesFiles() ([]string, error) {
	var files []string
	if _, err := m.Sys.Stat(m.SourcesList); err == nil {
		files = append(files, m.SourcesList)
	}
	others, err := m.Sys.Glob(filepath.Join(m.SourcesDir, "*.list"))
	if err != nil {
		return nil, err
	}
	for _, path := range others {
		if filepath.Base(path) == ListName {
			continue
		}
		files = append(files, path)
	}
	sort.Strings(files)
	return files, nil
}

// disableFile comments out every active line of path, backing up the
// original first. Already disabled files are left alone.
func (m *Manager) disableFile(path string) error {
	info, err := m.Sys.Stat(path)
	if err != nil {
		return fmt.Errorf(messages.RepoReadSourcesFmt, path, err)
	}
	data, err := m.Sys.ReadFile(path)
	if err != nil {
		return fmt.Errorf(messages.RepoReadSourcesFmt, path, err)
	}

	original := string(data)
	disabled := disableLines(original)
	if disabled == original {
		return nil
	}

	m.printDiff(path, original, disabled)
	if err := m.backupFile(path, data, info.Mode().Perm()); err != nil {
		return err
	}
	if err := m.Sys.WriteFile(path, []byte(disabled), info.Mode().Perm()); err != nil {
		return fmt.Errorf(messages.RepoWriteSourcesFmt, path, err)
	}
	return nil
}

func (m *Manager) printDiff(path, before, after string) {
	_, _ = fmt.Fprint(m.Out, messages.RepoSourcesDiffHeader)
	_, _ = fmt.Fprint(m.Out, udiff.Unified(path, path+" (disabled)", before, after))
}

func (m *Manager) backupFile(path string, data []byte, mode os.FileMode) error {
	if err := m.Sys.MkdirAll(m.BackupDir, 0o755); err != nil {
		return fmt.Errorf(messages.RepoBackupFmt, path, err)
	}
	name := strings.ReplaceAll(strings.TrimPrefix(path, "/"), "/", "__")
	if err := m.Sys.WriteFile(filepath.Join(m.BackupDir, name), data, 0o600); err != nil {
		return fmt.Errorf(messages.RepoBackupFmt, path, err)
	}

	entries, err := m.loadIndex()
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.OriginalPath == path {
			return nil
		}
	}
	entries = append(entries, backupEntry{OriginalPath: path, BackupName: name, Mode: mode})
	return m.saveIndex(entries)
}

func (m *Manager) loadIndex() ([]backupEntry, error) {
	data, err := m.Sys.ReadFile(filepath.Join(m.BackupDir, backupIndexName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var entries []backupEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (m *Manager) saveIndex(entries []backupEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return m.Sys.WriteFile(filepath.Join(m.BackupDir, backupIndexName), append(data, '\n'), 0o600)
}

// disableLines comments out every line that is not already a comment or
// blank, tagging it so restore and human readers can tell what airlock did.
func disableLines(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		lines[i] = messages.RepoDisabledMarker + line
	}
	return strings.Join(lines, "\n")
}
