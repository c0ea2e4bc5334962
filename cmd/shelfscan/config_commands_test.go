package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"config", "init", "--path", target})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out.String(), target) {
		t.Fatalf("output missing target path: %s", out.String())
	}

	raw, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("sample not written: %v", err)
	}
	if !strings.Contains(string(raw), "[tmdb]") {
		t.Fatal("sample config missing tmdb section")
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"config", "init", "--path", target})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
}

func TestConfigShowMasksAPIKey(t *testing.T) {
	path := writeTestConfig(t)

	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--config", path, "config", "show"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if strings.Contains(out.String(), "test") && strings.Contains(out.String(), "tmdb.api_key") {
		// The 4-char key must render fully masked.
		for _, line := range strings.Split(out.String(), "\n") {
			if strings.Contains(line, "tmdb.api_key") && strings.Contains(line, "test") {
				t.Fatalf("api key leaked: %s", line)
			}
		}
	}
	if !strings.Contains(out.String(), "scanner.symbologies") {
		t.Fatalf("missing scanner settings:\n%s", out.String())
	}
}

func TestConfigValidateWithFile(t *testing.T) {
	path := writeTestConfig(t)

	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs([]string{"--config", path, "config", "validate"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("config validate failed: %v", err)
	}
	if !strings.Contains(out.String(), "Configuration valid") {
		t.Fatalf("unexpected output: %s", out.String())
	}
}
