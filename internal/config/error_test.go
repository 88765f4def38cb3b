package config

import (
	"strings"
	"testing"
)

func TestError_Error_Empty(t *testing.T) {
	e := &Error{Path: "/etc/psxpack/config.toml"}
	got := e.Error()
	if got != "" {
		t.Errorf("expected empty string for no errors, got %q", got)
	}
}

func TestError_Error_MissingVars(t *testing.T) {
	e := &Error{
		Path:    "/etc/psxpack/config.toml",
		Missing: []string{"API_KEY", "SECRET"},
	}
	got := e.Error()
	if !strings.Contains(got, "missing environment variables") {
		t.Errorf("expected 'missing environment variables', got %q", got)
	}
	if !strings.Contains(got, "API_KEY") || !strings.Contains(got, "SECRET") {
		t.Errorf("expected var names in error, got %q", got)
	}
}

func TestError_Error_ValidationErrors(t *testing.T) {
	e := &Error{
		Path:   "/etc/psxpack/config.toml",
		Errors: []string{"conversion.compression_level: must be between 0 and 9", "log.level: must be one of debug, info, warn, error"},
	}
	got := e.Error()
	if !strings.Contains(got, "validation failed") {
		t.Errorf("expected 'validation failed', got %q", got)
	}
	if !strings.Contains(got, "compression_level") {
		t.Errorf("expected field name in error, got %q", got)
	}
}

func TestError_Error_Both(t *testing.T) {
	e := &Error{
		Path:    "/etc/psxpack/config.toml",
		Missing: []string{"API_KEY"},
		Errors:  []string{"batch.workers: invalid"},
	}
	got := e.Error()
	if !strings.Contains(got, "missing environment variables") {
		t.Errorf("expected missing vars section, got %q", got)
	}
	if !strings.Contains(got, "validation failed") {
		t.Errorf("expected validation section, got %q", got)
	}
}

func TestError_Error_PrefixesPath(t *testing.T) {
	e := &Error{Path: "psxpack.toml", Errors: []string{"log.level: bad"}}
	got := e.Error()
	if !strings.HasPrefix(got, "psxpack.toml: validation failed:") {
		t.Errorf("expected path prefix, got %q", got)
	}
	if !strings.HasSuffix(got, "\n  - log.level: bad") {
		t.Errorf("expected indented item, got %q", got)
	}
}
