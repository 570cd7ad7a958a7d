// internal/config/config.go
//
// This package handles configuration and the .mortem directory structure.
// Every project that renders MORTEM art gets a .mortem/ folder in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// MortemDir is the name of the directory we create in each project
	MortemDir = ".mortem"

	defaultTotalBeats = 86400
	defaultNetwork    = "devnet"
	defaultDebounce   = 250 * time.Millisecond
)

const defaultProjectConfigYAML = `# mortem project configuration
version: 1

# Where rendered illustrations land. Relative paths resolve against the project root.
output:
  dir: .mortem/art
  # Write a <file>.svg.yaml manifest next to every illustration.
  manifest: true

# Beats in a full lifetime. Request files may override per reflection.
lifecycle:
  total_beats: 86400

# Network echoed into chain metadata when a request names none.
chain:
  network: devnet

# Request inbox consumed by "mortem watch".
watch:
  inbox: .mortem/inbox
  debounce: 250ms
`

// OutputConfig controls where artifacts are written.
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	Manifest bool   `yaml:"manifest"`
}

// LifecycleConfig carries lifetime defaults.
type LifecycleConfig struct {
	TotalBeats uint64 `yaml:"total_beats"`
}

// ChainConfig carries chain metadata defaults.
type ChainConfig struct {
	Network string `yaml:"network"`
}

// WatchConfig captures inbox preferences.
type WatchConfig struct {
	Inbox    string `yaml:"inbox"`
	Debounce string `yaml:"debounce"`
}

// ProjectConfig models .mortem/config.yaml.
type ProjectConfig struct {
	Version   int             `yaml:"version"`
	Output    OutputConfig    `yaml:"output"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
	Chain     ChainConfig     `yaml:"chain"`
	Watch     WatchConfig     `yaml:"watch"`
}

// Config holds the runtime configuration for mortem.
type Config struct {
	// ProjectDir is the directory where the user ran `mortem` from
	ProjectDir string

	// MortemProjectDir is ProjectDir/.mortem
	MortemProjectDir string

	Project ProjectConfig
}

// InitMortemDir creates the .mortem directory structure in the given project directory.
//
// Structure created:
// .mortem/
// ├── art/      <- Rendered illustrations and manifests
// ├── inbox/    <- Request files picked up by `mortem watch`
// │   └── done/ <- Requests that have been rendered
// └── logs/     <- mortem.log
func InitMortemDir(projectDir string) error {
	mortemDir := filepath.Join(projectDir, MortemDir)

	dirs := []string{
		filepath.Join(mortemDir, "art"),
		filepath.Join(mortemDir, "inbox"),
		filepath.Join(mortemDir, "inbox", "done"),
		filepath.Join(mortemDir, "logs"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	if err := ensureProjectConfig(filepath.Join(mortemDir, "config.yaml")); err != nil {
		return err
	}

	return nil
}

// NewConfig creates a new Config instance populated with project settings.
// A missing config file yields the defaults.
func NewConfig(projectDir string) (*Config, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve project dir: %w", err)
	}
	cfg := &Config{
		ProjectDir:       abs,
		MortemProjectDir: filepath.Join(abs, MortemDir),
		Project:          defaultProjectConfig(),
	}
	cfg.Project.normalize(abs)

	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.MortemProjectDir, "logs")
}

// OutputDir returns the absolute directory artifacts are written to
func (c *Config) OutputDir() string {
	return c.Project.Output.Dir
}

// InboxDir returns the absolute directory watched for request files
func (c *Config) InboxDir() string {
	return c.Project.Watch.Inbox
}

// DoneDir returns where processed request files are moved
func (c *Config) DoneDir() string {
	return filepath.Join(c.InboxDir(), "done")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.MortemProjectDir, "config.yaml")
}

// TotalBeats returns the default lifetime length.
func (c *Config) TotalBeats() uint64 {
	return c.Project.Lifecycle.TotalBeats
}

// Network returns the default chain network.
func (c *Config) Network() string {
	return c.Project.Chain.Network
}

// WriteManifest reports whether artifacts get a YAML manifest sidecar.
func (c *Config) WriteManifest() bool {
	return c.Project.Output.Manifest
}

// WatchDebounce returns the quiet period before an inbox file is rendered.
// validate guarantees the stored value parses.
func (c *Config) WatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Project.Watch.Debounce)
	if err != nil {
		return defaultDebounce
	}
	return d
}

// SetOutputDir updates the output directory and persists the value back to
// .mortem/config.yaml. Relative paths are taken from the project directory.
func (c *Config) SetOutputDir(dir string) error {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return fmt.Errorf("config: output dir is required")
	}
	c.Project.Output.Dir = dir
	return c.saveProjectConfig()
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize(c.ProjectDir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Output: OutputConfig{
			Dir:      filepath.Join(MortemDir, "art"),
			Manifest: true,
		},
		Lifecycle: LifecycleConfig{TotalBeats: defaultTotalBeats},
		Chain:     ChainConfig{Network: defaultNetwork},
		Watch: WatchConfig{
			Inbox:    filepath.Join(MortemDir, "inbox"),
			Debounce: defaultDebounce.String(),
		},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	defaults := defaultProjectConfig()
	if pc.Version == 0 {
		pc.Version = defaults.Version
	}
	if strings.TrimSpace(pc.Output.Dir) == "" {
		pc.Output.Dir = defaults.Output.Dir
	}
	if pc.Lifecycle.TotalBeats == 0 {
		pc.Lifecycle.TotalBeats = defaults.Lifecycle.TotalBeats
	}
	if strings.TrimSpace(pc.Chain.Network) == "" {
		pc.Chain.Network = defaults.Chain.Network
	}
	if strings.TrimSpace(pc.Watch.Inbox) == "" {
		pc.Watch.Inbox = defaults.Watch.Inbox
	}
	if strings.TrimSpace(pc.Watch.Debounce) == "" {
		pc.Watch.Debounce = defaults.Watch.Debounce
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Output.Dir = resolvePath(base, pc.Output.Dir)
	pc.Watch.Inbox = resolvePath(base, pc.Watch.Inbox)
	pc.Chain.Network = strings.ToLower(strings.TrimSpace(pc.Chain.Network))
	pc.Watch.Debounce = strings.TrimSpace(pc.Watch.Debounce)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if pc.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	if pc.Lifecycle.TotalBeats == 0 {
		return fmt.Errorf("lifecycle.total_beats must be > 0")
	}
	d, err := time.ParseDuration(pc.Watch.Debounce)
	if err != nil {
		return fmt.Errorf("watch.debounce: %w", err)
	}
	if d < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

// relativeTo keeps paths inside the project portable when the config is
// written back. Paths outside it stay absolute.
func relativeTo(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0644)
}

func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	c.Project.normalize(c.ProjectDir)
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.MortemProjectDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure mortem dir: %w", err)
	}
	stored := c.Project
	stored.Output.Dir = relativeTo(c.ProjectDir, stored.Output.Dir)
	stored.Watch.Inbox = relativeTo(c.ProjectDir, stored.Watch.Inbox)
	data, err := yaml.Marshal(stored)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}
