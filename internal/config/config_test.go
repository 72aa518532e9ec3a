package config

import (
	"os"
	"path/filepath"
	"testing"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "fx.json")

	content := `{
		"warnAsError": true,
		"maxErrors": 5,
		"keepGoing": true
	}`

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.WarnAsError == nil || *cfg.WarnAsError != true {
		t.Errorf("WarnAsError: got %v, want true", cfg.WarnAsError)
	}
	if cfg.MaxErrors == nil || *cfg.MaxErrors != 5 {
		t.Errorf("MaxErrors: got %v, want 5", cfg.MaxErrors)
	}
	if cfg.KeepGoing == nil || *cfg.KeepGoing != true {
		t.Errorf("KeepGoing: got %v, want true", cfg.KeepGoing)
	}
}

func TestLoadWalksUpToParentDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "project", "shaders")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatalf("failed to create dirs: %v", err)
	}

	configPath := filepath.Join(tmpDir, "project", "fx.json")
	content := `{"warnAsError": true}`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, foundPath, err := Load(subDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected to find a config file in a parent directory")
	}
	if foundPath != configPath {
		t.Errorf("foundPath: got %q, want %q", foundPath, configPath)
	}
	if cfg.WarnAsError == nil || !*cfg.WarnAsError {
		t.Errorf("WarnAsError: got %v, want true", cfg.WarnAsError)
	}
}

func TestLoadReturnsNilWhenNoConfigFound(t *testing.T) {
	tmpDir := t.TempDir()
	cfg, foundPath, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg != nil {
		t.Errorf("expected no config, got %+v", cfg)
	}
	if foundPath != "" {
		t.Errorf("expected empty path, got %q", foundPath)
	}
}

func TestMergePrefersCLIOverrides(t *testing.T) {
	cfg := &Config{WarnAsError: boolPtr(false), MaxErrors: intPtr(10)}
	opts := cfg.Merge(CLIOverrides{WarnAsError: boolPtr(true)})

	if !opts.WarnAsError {
		t.Errorf("expected CLI override to win, got WarnAsError=false")
	}
	if opts.MaxErrors != 10 {
		t.Errorf("expected config value to survive when CLI doesn't override, got %d", opts.MaxErrors)
	}
}

func TestToOptionsOnNilConfigReturnsZeroValue(t *testing.T) {
	var cfg *Config
	opts := cfg.ToOptions()
	if opts.WarnAsError || opts.MaxErrors != 0 || opts.KeepGoing {
		t.Errorf("expected zero-value Options, got %+v", opts)
	}
}
