package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadProjectConfigDefaultsWhenMissing(t *testing.T) {
	projectDir := t.TempDir()
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if c.Project.Version != 1 {
		t.Fatalf("expected default version == 1, got %d", c.Project.Version)
	}
	if c.TotalBeats() != defaultTotalBeats {
		t.Fatalf("expected %d total beats, got %d", defaultTotalBeats, c.TotalBeats())
	}
	if want := filepath.Join(c.ProjectDir, MortemDir, "art"); c.OutputDir() != want {
		t.Fatalf("expected output dir %s, got %s", want, c.OutputDir())
	}
	if c.WatchDebounce() != defaultDebounce {
		t.Fatalf("expected debounce %v, got %v", defaultDebounce, c.WatchDebounce())
	}
	if !c.WriteManifest() {
		t.Fatalf("manifests should be on by default")
	}
}

func TestInitMortemDirSeedsConfig(t *testing.T) {
	projectDir := t.TempDir()
	if err := InitMortemDir(projectDir); err != nil {
		t.Fatalf("InitMortemDir: %v", err)
	}
	for _, dir := range []string{"art", "inbox", filepath.Join("inbox", "done"), "logs"} {
		if info, err := os.Stat(filepath.Join(projectDir, MortemDir, dir)); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("seeded config should load: %v", err)
	}
	if c.Network() != defaultNetwork {
		t.Fatalf("expected network %s, got %s", defaultNetwork, c.Network())
	}
	if err := InitMortemDir(projectDir); err != nil {
		t.Fatalf("second init should be a no-op: %v", err)
	}
}

func TestLoadProjectConfigParsesYaml(t *testing.T) {
	projectDir := t.TempDir()
	mortemDir := filepath.Join(projectDir, ".mortem")
	if err := os.MkdirAll(mortemDir, 0755); err != nil {
		t.Fatal(err)
	}
	configYAML := strings.TrimSpace(`
version: 1
output:
  dir: gallery
  manifest: false
lifecycle:
  total_beats: 1440
chain:
  network: " MainNet "
watch:
  inbox: /tmp/mortem-inbox
  debounce: 2s
`)
	if err := os.WriteFile(filepath.Join(mortemDir, "config.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("NewConfig returned error: %v", err)
	}
	if !strings.HasPrefix(c.OutputDir(), c.ProjectDir) || filepath.Base(c.OutputDir()) != "gallery" {
		t.Fatalf("expected output dir to be resolved, got %s", c.OutputDir())
	}
	if c.WriteManifest() {
		t.Fatalf("manifest should be disabled")
	}
	if c.TotalBeats() != 1440 {
		t.Fatalf("wrong total beats: %d", c.TotalBeats())
	}
	if c.Network() != "mainnet" {
		t.Fatalf("network should be normalized, got %q", c.Network())
	}
	if c.InboxDir() != "/tmp/mortem-inbox" {
		t.Fatalf("absolute inbox should be kept, got %s", c.InboxDir())
	}
	if c.WatchDebounce() != 2*time.Second {
		t.Fatalf("wrong debounce: %v", c.WatchDebounce())
	}
}

func TestLoadProjectConfigValidation(t *testing.T) {
	projectDir := t.TempDir()
	mortemDir := filepath.Join(projectDir, ".mortem")
	if err := os.MkdirAll(mortemDir, 0755); err != nil {
		t.Fatal(err)
	}
	configYAML := strings.TrimSpace(`
version: 1
watch:
  debounce: soon
`)
	if err := os.WriteFile(filepath.Join(mortemDir, "config.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewConfig(projectDir); err == nil {
		t.Fatalf("expected validation error but got none")
	}
}

func TestSetOutputDirPersists(t *testing.T) {
	projectDir := t.TempDir()
	c, err := NewConfig(projectDir)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SetOutputDir("renders"); err != nil {
		t.Fatalf("SetOutputDir: %v", err)
	}
	reloaded, err := NewConfig(projectDir)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.OutputDir() != filepath.Join(projectDir, "renders") {
		t.Fatalf("output dir not persisted: %s", reloaded.OutputDir())
	}
	data, err := os.ReadFile(reloaded.ProjectConfigPath())
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "dir: renders") || strings.Contains(text, projectDir) {
		t.Fatalf("saved config should keep project paths relative:\n%s", text)
	}
	outside := filepath.Join(t.TempDir(), "elsewhere")
	if err := c.SetOutputDir(outside); err != nil {
		t.Fatalf("SetOutputDir outside project: %v", err)
	}
	if reloaded, err = NewConfig(projectDir); err != nil || reloaded.OutputDir() != outside {
		t.Fatalf("absolute output dir not persisted: %v %v", reloaded, err)
	}
	if err := c.SetOutputDir("  "); err == nil {
		t.Fatalf("blank output dir should be rejected")
	}
}
