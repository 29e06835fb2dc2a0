// Package config resolves airlock settings from defaults, an optional
// airlock.toml at the bundle root, and environment overrides. Precedence is
// defaults < file < environment < flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/airlock-sh/airlock/internal/messages"
)

// Environment overrides recognized by every command.
const (
	EnvBundle     = "AIRLOCK_BUNDLE"
	EnvPrefix     = "AIRLOCK_PREFIX"
	EnvStateDir   = "AIRLOCK_STATE_DIR"
	EnvEventLog   = "AIRLOCK_EVENT_LOG"
	EnvTranscript = "AIRLOCK_TRANSCRIPT"
)

// Defaults used when neither file nor environment provides a value.
const (
	DefaultBundleDir = "/opt/airlock/bundle"
	DefaultPrefix    = "/usr/local"
	// ConfigFileName is the optional settings file at the bundle root.
	ConfigFileName = "airlock.toml"

	defaultStateDirName       = ".airlock"
	defaultEventLogName       = "events.jsonl"
	defaultTranscriptName     = "transcript.log"
	interfaceRecordsName      = "interfaces.json"
	disabledSourcesBackupName = "sources-backup"
)

// Config holds the resolved settings for one run. BundleDir has no TOML tag:
// the settings file lives inside the bundle, so the bundle path must already
// be known before the file can be read. It is set by default, environment,
// or flag only.
type Config struct {
	BundleDir      string `toml:"-"`
	Prefix         string `toml:"prefix"`
	StateDir       string `toml:"state_dir"`
	EventLogPath   string `toml:"event_log"`
	TranscriptPath string `toml:"transcript"`
}

var lookupEnv = os.LookupEnv

// Load resolves the configuration. The bundle directory is resolved first
// (environment beats default) so the settings file inside it can be found;
// environment values then override anything the file set.
func Load() (Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return Config{}, fmt.Errorf(messages.ConfigResolveHomeFmt, err)
	}

	cfg := Config{
		BundleDir: DefaultBundleDir,
		Prefix:    DefaultPrefix,
		StateDir:  filepath.Join(home, defaultStateDirName),
	}
	if v, ok := lookupEnv(EnvBundle); ok && v != "" {
		cfg.BundleDir = v
	}

	if err := cfg.applyFile(filepath.Join(cfg.BundleDir, ConfigFileName)); err != nil {
		return Config{}, err
	}
	cfg.applyEnv()

	if cfg.EventLogPath == "" {
		cfg.EventLogPath = filepath.Join(cfg.StateDir, defaultEventLogName)
	}
	if cfg.TranscriptPath == "" {
		cfg.TranscriptPath = filepath.Join(cfg.StateDir, defaultTranscriptName)
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf(messages.ConfigParseFmt, path, err)
	}
	var file Config
	if err := toml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf(messages.ConfigParseFmt, path, err)
	}
	if file.Prefix != "" {
		c.Prefix = file.Prefix
	}
	if file.StateDir != "" {
		c.StateDir = file.StateDir
	}
	if file.EventLogPath != "" {
		c.EventLogPath = file.EventLogPath
	}
	if file.TranscriptPath != "" {
		c.TranscriptPath = file.TranscriptPath
	}
	return nil
}

func (c *Config) applyEnv() {
	if v, ok := lookupEnv(EnvPrefix); ok && v != "" {
		c.Prefix = v
	}
	if v, ok := lookupEnv(EnvStateDir); ok && v != "" {
		c.StateDir = v
	}
	if v, ok := lookupEnv(EnvEventLog); ok && v != "" {
		c.EventLogPath = v
	}
	if v, ok := lookupEnv(EnvTranscript); ok && v != "" {
		c.TranscriptPath = v
	}
}

// Bundle subdirectories, one per component, matching the upstream bundler.

// DebsDir holds the local apt package pool.
func (c Config) DebsDir() string { return filepath.Join(c.BundleDir, "debs") }

// EditorDir holds the VSCodium artifacts.
func (c Config) EditorDir() string { return filepath.Join(c.BundleDir, "vscodium") }

// ExtensionsDir holds the VSIX editor extensions.
func (c Config) ExtensionsDir() string { return filepath.Join(c.BundleDir, "extensions") }

// RuntimeDir holds the Ollama archive.
func (c Config) RuntimeDir() string { return filepath.Join(c.BundleDir, "ollama") }

// ToolchainDir holds the offline Rust toolchain installer.
func (c Config) ToolchainDir() string { return filepath.Join(c.BundleDir, "rust") }

// PackagesDir holds the Python wheel cache.
func (c Config) PackagesDir() string { return filepath.Join(c.BundleDir, "python") }

// InterfaceRecordsPath is the durable record of disabled interfaces.
func (c Config) InterfaceRecordsPath() string {
	return filepath.Join(c.StateDir, interfaceRecordsName)
}

// SourcesBackupDir holds verbatim copies of disabled apt sources files.
func (c Config) SourcesBackupDir() string {
	return filepath.Join(c.StateDir, disabledSourcesBackupName)
}
