package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("SHELFSCAN_TMDB_API_KEY", "test-key")

	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing config file")
	}
	if cfg.TMDB.BaseURL != defaultTMDBBaseURL {
		t.Fatalf("unexpected tmdb base url: %q", cfg.TMDB.BaseURL)
	}
	if cfg.TMDB.APIKey != "test-key" {
		t.Fatalf("env override not applied: %q", cfg.TMDB.APIKey)
	}
	if len(cfg.Scanner.Symbologies) == 0 {
		t.Fatal("expected default symbologies")
	}
}

func TestLoadParsesFileAndNormalizes(t *testing.T) {
	t.Setenv("SHELFSCAN_TMDB_API_KEY", "placeholder")
	os.Unsetenv("SHELFSCAN_TMDB_API_KEY")
	path := filepath.Join(t.TempDir(), "shelfscan.toml")
	content := `
[tmdb]
api_key = "  file-key  "
base_url = "https://api.themoviedb.org/3/"

[scanner]
symbologies = ["EAN13", " qrcode "]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s, got %s exists=%v", path, resolved, exists)
	}
	if cfg.TMDB.APIKey != "file-key" {
		t.Fatalf("api key not trimmed: %q", cfg.TMDB.APIKey)
	}
	if strings.HasSuffix(cfg.TMDB.BaseURL, "/") {
		t.Fatalf("base url not trimmed: %q", cfg.TMDB.BaseURL)
	}
	if got := cfg.Scanner.Symbologies; len(got) != 2 || got[0] != "ean13" || got[1] != "qrcode" {
		t.Fatalf("symbologies not normalized: %v", got)
	}
}

func TestValidateRejectsMissingAPIKey(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error without tmdb api key")
	}
}

func TestValidateRejectsUnknownSymbology(t *testing.T) {
	cfg := Default()
	cfg.TMDB.APIKey = "k"
	cfg.Scanner.Symbologies = []string{"pdf417"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown symbology")
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if _, err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if _, err := WriteSample(path); err == nil {
		t.Fatal("expected error when config already exists")
	}
}
