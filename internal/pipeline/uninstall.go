package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/airlock-sh/airlock/internal/ledger"
	"github.com/airlock-sh/airlock/internal/messages"
	"github.com/airlock-sh/airlock/internal/step"
)

// UninstallSteps returns the removal sequence: the mirror image of the
// install order. Every step checks its install marker first, so running the
// removal pipeline twice concludes skipped (not failed) across the board.
func (p *Pipeline) UninstallSteps() []step.Step {
	return []step.Step{
		p.uninstallLanguagePackages(),
		p.uninstallToolchain(),
		p.uninstallModelRuntime(),
		p.uninstallEditorExtensions(),
		p.uninstallEditor(),
		p.uninstallSystemPackages(),
		p.uninstallRepository(),
	}
}

// wasInstalled gates removal strategies on the component's install marker.
func (p *Pipeline) wasInstalled(c ledger.Component) func() (bool, string) {
	return func() (bool, string) {
		if !p.installed(c) {
			return false, messages.ReasonNotInstalled
		}
		return true, ""
	}
}

func (p *Pipeline) uninstallLanguagePackages() step.Step {
	requirements := filepath.Join(p.Cfg.PackagesDir(), "requirements.txt")
	return step.Step{
		Component:         ledger.ComponentLanguagePackages,
		ContinueOnFailure: true,
		Strategies: []step.Strategy{{
			Name:       "pip uninstall bundled packages",
			Applicable: p.wasInstalled(ledger.ComponentLanguagePackages),
			Run: func() error {
				if _, err := p.Sys.Stat(requirements); err == nil {
					if err := p.run("pip3", "uninstall", "-y", "-r", requirements); err != nil {
						return err
					}
				}
				return p.clearInstalled(ledger.ComponentLanguagePackages)
			},
		}},
	}
}

func (p *Pipeline) uninstallToolchain() step.Step {
	uninstaller := filepath.Join(p.Cfg.Prefix, "lib", "rustlib", "uninstall.sh")
	return step.Step{
		Component:         ledger.ComponentToolchain,
		ContinueOnFailure: true,
		Strategies: []step.Strategy{{
			Name:       "run Rust uninstall script",
			Applicable: p.wasInstalled(ledger.ComponentToolchain),
			Run: func() error {
				if _, err := p.Sys.Stat(uninstaller); err == nil {
					if err := p.run("sh", uninstaller); err != nil {
						return err
					}
				}
				return p.clearInstalled(ledger.ComponentToolchain)
			},
		}},
	}
}

func (p *Pipeline) uninstallModelRuntime() step.Step {
	return step.Step{
		Component:         ledger.ComponentModelRuntime,
		ContinueOnFailure: true,
		Strategies: []step.Strategy{{
			Name:       "remove Ollama binary and libraries",
			Applicable: p.wasInstalled(ledger.ComponentModelRuntime),
			Run: func() error {
				if err := p.Sys.Remove(filepath.Join(p.Cfg.Prefix, "bin", "ollama")); err != nil && !isNotExist(err) {
					return err
				}
				if err := p.Sys.RemoveAll(filepath.Join(p.Cfg.Prefix, "lib", "ollama")); err != nil {
					return err
				}
				return p.clearInstalled(ledger.ComponentModelRuntime)
			},
		}},
	}
}

func (p *Pipeline) uninstallEditorExtensions() step.Step {
	return step.Step{
		Component:         ledger.ComponentEditorExtensions,
		ContinueOnFailure: true,
		Strategies: []step.Strategy{{
			Name: "uninstall VSIX extensions with codium",
			Applicable: func() (bool, string) {
				if ok, reason := p.wasInstalled(ledger.ComponentEditorExtensions)(); !ok {
					return ok, reason
				}
				return p.commandAvailable("codium")()
			},
			Run: func() error {
				ids, err := p.extensionIDs()
				if err != nil {
					return err
				}
				for _, id := range ids {
					if err := p.run("codium", "--uninstall-extension", id); err != nil {
						return err
					}
				}
				return p.clearInstalled(ledger.ComponentEditorExtensions)
			},
		}},
	}
}

func (p *Pipeline) uninstallEditor() step.Step {
	extracted := filepath.Join(p.Cfg.Prefix, "lib", "vscodium")
	return step.Step{
		Component:         ledger.ComponentEditor,
		ContinueOnFailure: true,
		Strategies: []step.Strategy{
			{
				Name: "remove VSCodium package with apt-get",
				Applicable: func() (bool, string) {
					if ok, reason := p.wasInstalled(ledger.ComponentEditor)(); !ok {
						return ok, reason
					}
					// A package removal only applies when the package
					// manager knows about codium.
					if err := p.run("dpkg", "-s", "codium"); err != nil {
						return false, "codium not installed as a package"
					}
					return true, ""
				},
				Run: func() error {
					if err := p.run("apt-get", "remove", "-y", "codium"); err != nil {
						return err
					}
					return p.clearInstalled(ledger.ComponentEditor)
				},
			},
			{
				Name:       "remove extracted VSCodium tree",
				Applicable: p.wasInstalled(ledger.ComponentEditor),
				Run: func() error {
					if err := p.Sys.RemoveAll(extracted); err != nil {
						return err
					}
					return p.clearInstalled(ledger.ComponentEditor)
				},
			},
		},
	}
}

func (p *Pipeline) uninstallSystemPackages() step.Step {
	listPath := filepath.Join(p.Cfg.DebsDir(), "packages.txt")
	return step.Step{
		Component:         ledger.ComponentSystemPackages,
		ContinueOnFailure: true,
		Strategies: []step.Strategy{{
			Name:       "apt-get remove bundled packages",
			Applicable: p.wasInstalled(ledger.ComponentSystemPackages),
			Run: func() error {
				packages, err := p.readListFile(listPath)
				if err != nil {
					return fmt.Errorf("read package list: %w", err)
				}
				args := append([]string{"remove", "-y"}, packages...)
				if err := p.run("apt-get", args...); err != nil {
					return err
				}
				return p.clearInstalled(ledger.ComponentSystemPackages)
			},
		}},
	}
}

func (p *Pipeline) uninstallRepository() step.Step {
	return step.Step{
		Component:         ledger.ComponentRepository,
		ContinueOnFailure: true,
		Strategies: []step.Strategy{{
			Name:       "restore package sources",
			Applicable: p.wasInstalled(ledger.ComponentRepository),
			Run: func() error {
				if err := p.Repo.Restore(); err != nil {
					return err
				}
				if err := p.run("apt-get", "update"); err != nil {
					return err
				}
				return p.clearInstalled(ledger.ComponentRepository)
			},
		}},
	}
}

// extensionIDs resolves the extension identifiers to uninstall: an explicit
// extensions.txt wins, otherwise ids are derived from the VSIX filenames by
// stripping the trailing version.
func (p *Pipeline) extensionIDs() ([]string, error) {
	listPath := filepath.Join(p.Cfg.ExtensionsDir(), "extensions.txt")
	if _, err := p.Sys.Stat(listPath); err == nil {
		return p.readListFile(listPath)
	}
	files, err := p.Sys.Glob(filepath.Join(p.Cfg.ExtensionsDir(), "*.vsix"))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, extensionID(baseWithoutExt(f)))
	}
	return ids, nil
}

// extensionID strips a trailing -<version> from a VSIX base name, e.g.
// "ms-python.python-2024.1.0" -> "ms-python.python".
func extensionID(base string) string {
	idx := strings.LastIndex(base, "-")
	if idx > 0 && idx+1 < len(base) {
		if c := base[idx+1]; c >= '0' && c <= '9' {
			return base[:idx]
		}
	}
	return base
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
