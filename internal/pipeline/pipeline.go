// Package pipeline declares the ordered installation and removal step
// sequences. Each step wraps a fallback chain of concrete strategies; the
// chains are data, so tests can exercise ordering and outcome semantics
// without invoking real package managers.
package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"

	"github.com/airlock-sh/airlock/internal/aptrepo"
	"github.com/airlock-sh/airlock/internal/config"
	"github.com/airlock-sh/airlock/internal/ledger"
	"github.com/airlock-sh/airlock/internal/messages"
	"github.com/airlock-sh/airlock/internal/system"
)

// Pipeline builds the install and uninstall step sequences for one run.
type Pipeline struct {
	Cfg  config.Config
	Sys  system.System
	Out  io.Writer
	Log  logr.Logger
	Repo *aptrepo.Manager
}

// New wires a pipeline against the given configuration.
func New(cfg config.Config, sys system.System, out io.Writer, log logr.Logger) *Pipeline {
	return &Pipeline{
		Cfg:  cfg,
		Sys:  sys,
		Out:  out,
		Log:  log,
		Repo: aptrepo.New(sys, out, log, cfg.DebsDir(), cfg.SourcesBackupDir()),
	}
}

// markerPath is the install marker for a component. Markers make the
// removal pipeline idempotent: a second uninstall finds no marker and the
// step concludes skipped, not failed.
func (p *Pipeline) markerPath(c ledger.Component) string {
	return filepath.Join(p.Cfg.StateDir, "installed", c.String())
}

func (p *Pipeline) markInstalled(c ledger.Component) error {
	path := p.markerPath(c)
	if err := p.Sys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Sys.WriteFile(path, []byte(c.String()+"\n"), 0o644)
}

func (p *Pipeline) clearInstalled(c ledger.Component) error {
	err := p.Sys.Remove(p.markerPath(c))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (p *Pipeline) installed(c ledger.Component) bool {
	_, err := p.Sys.Stat(p.markerPath(c))
	return err == nil
}

// run executes an external command through the system seam, folding its
// combined output into the returned error on failure.
func (p *Pipeline) run(name string, args ...string) error {
	out, err := p.Sys.Run(name, args...)
	if err != nil {
		return fmt.Errorf("%s %s: %v: %s", name, strings.Join(args, " "), err, trimOutput(out))
	}
	return nil
}

// firstGlob returns the first match of pattern, or "" when nothing matches.
func (p *Pipeline) firstGlob(pattern string) string {
	matches, err := p.Sys.Glob(pattern)
	if err != nil || len(matches) == 0 {
		return ""
	}
	return matches[0]
}

// artifactPresent is an Applicable helper: the glob must match something.
func (p *Pipeline) artifactPresent(pattern string) func() (bool, string) {
	return func() (bool, string) {
		if p.firstGlob(pattern) == "" {
			return false, messages.ReasonArtifactMissing
		}
		return true, ""
	}
}

// commandAvailable is an Applicable helper: the binary must be on PATH.
func (p *Pipeline) commandAvailable(name string) func() (bool, string) {
	return func() (bool, string) {
		if _, err := p.Sys.LookPath(name); err != nil {
			return false, fmt.Sprintf("%s not found on PATH", name)
		}
		return true, ""
	}
}

// readListFile returns the whitespace-separated tokens of a list file,
// ignoring blank lines and comments.
func (p *Pipeline) readListFile(path string) ([]string, error) {
	data, err := p.Sys.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		items = append(items, strings.Fields(line)...)
	}
	return items, nil
}

const maxErrOutput = 512

func trimOutput(out []byte) string {
	clean := strings.TrimSpace(string(out))
	if clean == "" {
		return "no output"
	}
	if len(clean) > maxErrOutput {
		return clean[:maxErrOutput] + "..."
	}
	return clean
}
