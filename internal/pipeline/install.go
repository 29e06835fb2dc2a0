package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/airlock-sh/airlock/internal/ledger"
	"github.com/airlock-sh/airlock/internal/messages"
	"github.com/airlock-sh/airlock/internal/step"
)

// InstallSteps returns the ordered installation sequence. Order matters:
// the repository must be configured before packages install, and the editor
// must exist before extensions can be installed into it.
func (p *Pipeline) InstallSteps() []step.Step {
	return []step.Step{
		p.installRepository(),
		p.installSystemPackages(),
		p.installEditor(),
		p.installEditorExtensions(),
		p.installModelRuntime(),
		p.installToolchain(),
		p.installLanguagePackages(),
	}
}

// installRepository is the one genuinely pipeline-fatal step: without a
// package repository nothing downstream can install.
func (p *Pipeline) installRepository() step.Step {
	return step.Step{
		Component:         ledger.ComponentRepository,
		ContinueOnFailure: false,
		Strategies: []step.Strategy{{
			Name: "configure local apt repository",
			Run: func() error {
				if _, err := p.Sys.Stat(p.Cfg.DebsDir()); err != nil {
					return fmt.Errorf(messages.InstallRepoMissingFmt, p.Cfg.DebsDir())
				}
				if err := p.Repo.Configure(); err != nil {
					return err
				}
				if err := p.run("apt-get", "update"); err != nil {
					return err
				}
				return p.markInstalled(ledger.ComponentRepository)
			},
		}},
	}
}

func (p *Pipeline) installSystemPackages() step.Step {
	listPath := filepath.Join(p.Cfg.DebsDir(), "packages.txt")
	return step.Step{
		Component:         ledger.ComponentSystemPackages,
		ContinueOnFailure: true,
		Strategies: []step.Strategy{
			{
				Name:       "apt-get install from local repository",
				Applicable: p.fileExists(listPath),
				Run: func() error {
					packages, err := p.readListFile(listPath)
					if err != nil {
						return err
					}
					args := append([]string{"install", "-y", "--no-install-recommends"}, packages...)
					if err := p.run("apt-get", args...); err != nil {
						return err
					}
					return p.markInstalled(ledger.ComponentSystemPackages)
				},
			},
			{
				Name:       "dpkg -i bundled packages",
				Applicable: p.artifactPresent(filepath.Join(p.Cfg.DebsDir(), "*.deb")),
				Run: func() error {
					debs, err := p.Sys.Glob(filepath.Join(p.Cfg.DebsDir(), "*.deb"))
					if err != nil {
						return err
					}
					if err := p.run("dpkg", append([]string{"-i"}, debs...)...); err != nil {
						return err
					}
					return p.markInstalled(ledger.ComponentSystemPackages)
				},
			},
		},
	}
}

func (p *Pipeline) installEditor() step.Step {
	debPattern := filepath.Join(p.Cfg.EditorDir(), "*.deb")
	tarPattern := filepath.Join(p.Cfg.EditorDir(), "*.tar.gz")
	return step.Step{
		Component:         ledger.ComponentEditor,
		ContinueOnFailure: true,
		Strategies: []step.Strategy{
			{
				Name:       "install VSCodium package with apt-get",
				Applicable: p.artifactPresent(debPattern),
				Run: func() error {
					if err := p.run("apt-get", "install", "-y", p.firstGlob(debPattern)); err != nil {
						return err
					}
					return p.markInstalled(ledger.ComponentEditor)
				},
			},
			{
				Name:       "install VSCodium package with dpkg",
				Applicable: p.artifactPresent(debPattern),
				Run: func() error {
					if err := p.run("dpkg", "-i", p.firstGlob(debPattern)); err != nil {
						return err
					}
					return p.markInstalled(ledger.ComponentEditor)
				},
			},
			{
				Name:       "extract VSCodium tarball into prefix",
				Applicable: p.artifactPresent(tarPattern),
				Run: func() error {
					dest := filepath.Join(p.Cfg.Prefix, "lib", "vscodium")
					if err := p.Sys.MkdirAll(dest, 0o755); err != nil {
						return err
					}
					if err := p.run("tar", "-xzf", p.firstGlob(tarPattern), "-C", dest, "--strip-components=1"); err != nil {
						return err
					}
					return p.markInstalled(ledger.ComponentEditor)
				},
			},
		},
	}
}

func (p *Pipeline) installEditorExtensions() step.Step {
	vsixPattern := filepath.Join(p.Cfg.ExtensionsDir(), "*.vsix")
	return step.Step{
		Component:         ledger.ComponentEditorExtensions,
		ContinueOnFailure: true,
		Strategies: []step.Strategy{{
			Name: "install bundled VSIX files with codium",
			Applicable: func() (bool, string) {
				if ok, reason := p.commandAvailable("codium")(); !ok {
					return false, reason
				}
				return p.artifactPresent(vsixPattern)()
			},
			Run: func() error {
				files, err := p.Sys.Glob(vsixPattern)
				if err != nil {
					return err
				}
				for _, vsix := range files {
					if err := p.run("codium", "--install-extension", vsix, "--force"); err != nil {
						return err
					}
				}
				return p.markInstalled(ledger.ComponentEditorExtensions)
			},
		}},
	}
}

func (p *Pipeline) installModelRuntime() step.Step {
	zstPattern := filepath.Join(p.Cfg.RuntimeDir(), "*.tar.zst")
	tgzPattern := filepath.Join(p.Cfg.RuntimeDir(), "*.tgz")
	return step.Step{
		Component:         ledger.ComponentModelRuntime,
		ContinueOnFailure: true,
		Strategies: []step.Strategy{
			{
				Name:       "extract Ollama zstd archive into prefix",
				Applicable: p.artifactPresent(zstPattern),
				Run: func() error {
					if err := p.run("tar", "--zstd", "-xf", p.firstGlob(zstPattern), "-C", p.Cfg.Prefix); err != nil {
						return err
					}
					return p.markInstalled(ledger.ComponentModelRuntime)
				},
			},
			{
				Name:       "extract Ollama tgz archive into prefix",
				Applicable: p.artifactPresent(tgzPattern),
				Run: func() error {
					if err := p.run("tar", "-xzf", p.firstGlob(tgzPattern), "-C", p.Cfg.Prefix); err != nil {
						return err
					}
					return p.markInstalled(ledger.ComponentModelRuntime)
				},
			},
			{
				Name:            "install Ollama with the hosted install script",
				RequiresNetwork: true,
			},
		},
	}
}

func (p *Pipeline) installToolchain() step.Step {
	installerPattern := filepath.Join(p.Cfg.ToolchainDir(), "rust-*", "install.sh")
	return step.Step{
		Component:         ledger.ComponentToolchain,
		ContinueOnFailure: true,
		Strategies: []step.Strategy{
			{
				Name:       "run offline Rust installer",
				Applicable: p.artifactPresent(installerPattern),
				Run: func() error {
					installer := p.firstGlob(installerPattern)
					if err := p.run("sh", installer, "--prefix="+p.Cfg.Prefix, "--disable-ldconfig"); err != nil {
						return err
					}
					return p.markInstalled(ledger.ComponentToolchain)
				},
			},
			{
				Name:            "install Rust with rustup",
				RequiresNetwork: true,
			},
		},
	}
}

func (p *Pipeline) installLanguagePackages() step.Step {
	requirements := filepath.Join(p.Cfg.PackagesDir(), "requirements.txt")
	return step.Step{
		Component:         ledger.ComponentLanguagePackages,
		ContinueOnFailure: true,
		Strategies: []step.Strategy{
			{
				Name: "pip install from bundled wheel cache",
				Applicable: func() (bool, string) {
					if ok, reason := p.commandAvailable("pip3")(); !ok {
						return false, reason
					}
					return p.fileExists(requirements)()
				},
				Run: func() error {
					if err := p.run("pip3", "install", "--no-index",
						"--find-links", p.Cfg.PackagesDir(), "-r", requirements); err != nil {
						return err
					}
					return p.markInstalled(ledger.ComponentLanguagePackages)
				},
			},
			{
				Name:            "pip install from PyPI",
				RequiresNetwork: true,
			},
		},
	}
}

// fileExists is an Applicable helper for a single required input file.
func (p *Pipeline) fileExists(path string) func() (bool, string) {
	return func() (bool, string) {
		if _, err := p.Sys.Stat(path); err != nil {
			return false, fmt.Sprintf("%s: %s", messages.ReasonArtifactMissing, filepath.Base(path))
		}
		return true, ""
	}
}

// baseWithoutExt strips a path down to its base name without the extension,
// used to derive extension identifiers from VSIX filenames.
func baseWithoutExt(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
