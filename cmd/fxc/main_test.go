package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestRootCommandMetadata(t *testing.T) {
	cmd := newRootCmd()

	if cmd.Use != "fxc" {
		t.Errorf("expected Use='fxc', got %q", cmd.Use)
	}
	if cmd.Version == "" {
		t.Error("expected a non-empty version string")
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := newRootCmd()

	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	if !names["parse"] {
		t.Error("expected a parse subcommand")
	}
	if !names["check"] {
		t.Error("expected a check subcommand")
	}
}

func writeTempFX(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestParseCommandSucceedsOnValidSource(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFX(t, dir, "ok.fx", `
float4x4 WorldViewProj;

float4 main(float4 pos : POSITION) : SV_POSITION {
    return mul(WorldViewProj, pos);
}`)

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"parse", path})

	if err := root.Execute(); err != nil {
		t.Fatalf("expected success, got error: %v (stderr: %s)", err, stderr.String())
	}
	if stdout.Len() == 0 {
		t.Error("expected a summary line on stdout")
	}
}

func TestParseCommandFailsOnInvalidSource(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFX(t, dir, "bad.fx", `
float f() {
    return undeclaredThing;
}`)

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"parse", path})

	if err := root.Execute(); err == nil {
		t.Fatal("expected an error for source with an undeclared identifier")
	}
	if stderr.Len() == 0 {
		t.Error("expected diagnostics to be printed to stderr")
	}
}

func TestParseCommandWarnAsErrorFailsOnWarningOnlySource(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFX(t, dir, "warn.fx", `float4x4 WorldViewProj;`)

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"parse", "--warn-as-error", path})

	if err := root.Execute(); err == nil {
		t.Fatal("expected --warn-as-error to fail a source with only warnings")
	}
}

func TestCheckCommandMatchesGlobAndReportsFailures(t *testing.T) {
	dir := t.TempDir()
	writeTempFX(t, dir, "a.fx", `float4x4 WorldViewProj;

float4 main(float4 pos : POSITION) : SV_POSITION {
    return mul(WorldViewProj, pos);
}`)
	writeTempFX(t, dir, "b.fx", `float f() {
    return undeclaredThing;
}`)

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"check", "--no-config", "--keep-going", filepath.Join(dir, "*.fx")})

	err := root.Execute()
	if err == nil {
		t.Fatal("expected check to report the failing file")
	}
}

func TestCheckCommandNoMatchesIsAnError(t *testing.T) {
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"check", "--no-config", filepath.Join(dir, "*.fx")})

	if err := root.Execute(); err == nil {
		t.Fatal("expected an error when no files match the pattern")
	}
}
