package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "psxpack.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Valid(t *testing.T) {
	path := writeConfig(t, `
[batch]
workers = 8

[conversion]
compression_level = 9
discs = [1, 2]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Batch.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.Batch.Workers)
	}
	if cfg.Conversion.CompressionLevel != 9 {
		t.Errorf("expected compression level 9, got %d", cfg.Conversion.CompressionLevel)
	}
	if len(cfg.Conversion.Discs) != 2 {
		t.Errorf("expected discs [1 2], got %v", cfg.Conversion.Discs)
	}
}

func TestLoad_MissingEnvVar(t *testing.T) {
	os.Unsetenv("PSXPACK_MISSING_DEV_ID")
	path := writeConfig(t, `
[screenscraper]
dev_id = "${PSXPACK_MISSING_DEV_ID}"
dev_password = "secret"
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for missing env var")
	}
	var cerr *Error
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if len(cerr.Missing) != 1 || cerr.Missing[0] != "PSXPACK_MISSING_DEV_ID" {
		t.Errorf("expected PSXPACK_MISSING_DEV_ID missing, got %v", cerr.Missing)
	}
}

func TestLoad_EnvSubstitution(t *testing.T) {
	t.Setenv("PSXPACK_TEST_DEV_ID", "dev")
	t.Setenv("PSXPACK_TEST_DEV_PW", "pw")
	path := writeConfig(t, `
[screenscraper]
dev_id = "${PSXPACK_TEST_DEV_ID}"
dev_password = "${PSXPACK_TEST_DEV_PW}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.ScreenScraper.HasCredentials() {
		t.Errorf("expected credentials substituted, got %+v", cfg.ScreenScraper)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	path := writeConfig(t, `
[conversion]
compression_level = 12
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid compression level")
	}
	if !strings.Contains(err.Error(), "conversion.compression_level") {
		t.Errorf("expected conversion.compression_level in error, got %v", err)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[log]
level = ""
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level info, got %q", cfg.Log.Level)
	}
	if cfg.Batch.Workers != 4 {
		t.Errorf("expected default 4 workers, got %d", cfg.Batch.Workers)
	}
	if cfg.Conversion.FileNameFormat != "%FILENAME%" {
		t.Errorf("expected default file name format, got %q", cfg.Conversion.FileNameFormat)
	}
	if cfg.ScreenScraper.SoftName != "PSXPackagerPlus" {
		t.Errorf("expected default soft name, got %q", cfg.ScreenScraper.SoftName)
	}
	if !cfg.ScreenScraper.AutoDownloadArtwork || !cfg.ScreenScraper.UseInBatchMode {
		t.Errorf("expected artwork toggles on by default, got %+v", cfg.ScreenScraper)
	}
	if cfg.Database.Path != "./data/psxpack.db" {
		t.Errorf("expected default database path, got %q", cfg.Database.Path)
	}
}

func TestLoad_ExplicitFalseOverridesDefault(t *testing.T) {
	path := writeConfig(t, `
[screenscraper]
use_in_batch_mode = false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ScreenScraper.UseInBatchMode {
		t.Error("expected use_in_batch_mode to be false")
	}
	if !cfg.ScreenScraper.AutoDownloadArtwork {
		t.Error("expected auto_download_artwork to keep its default")
	}
}

func TestLoad_ParseError(t *testing.T) {
	path := writeConfig(t, "[batch\nworkers = ")

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "parsing config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadWithoutValidation(t *testing.T) {
	path := writeConfig(t, `
[conversion]
compression_level = 12
`)

	cfg, err := LoadWithoutValidation(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Validate()) == 0 {
		t.Error("expected Validate to still report the bad level")
	}
}
