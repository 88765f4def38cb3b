package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noExecutable hides the executable directory from the search.
func noExecutable(t *testing.T) {
	t.Helper()
	prev := executable
	executable = func() (string, error) { return "", os.ErrNotExist }
	t.Cleanup(func() { executable = prev })
}

// executableIn pretends the running binary lives in dir.
func executableIn(t *testing.T, dir string) {
	t.Helper()
	prev := executable
	executable = func() (string, error) { return filepath.Join(dir, "psxpack"), nil }
	t.Cleanup(func() { executable = prev })
}

func TestDefaultPath(t *testing.T) {
	// Clear XDG var to test default
	t.Setenv("XDG_CONFIG_HOME", "")

	path := DefaultPath()
	assert.Contains(t, path, filepath.Join(".config", "psxpack", "config.toml"))
}

func TestDefaultPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	path := DefaultPath()
	assert.Equal(t, filepath.Join("/custom/config", "psxpack", "config.toml"), path)
}

func TestDiscover_EnvVar(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[batch]"), 0644), "failed to create test config")

	t.Setenv(EnvVar, cfgPath)

	path, err := Discover()
	require.NoError(t, err)
	assert.Equal(t, cfgPath, path)
}

func TestDiscover_EnvVarNotFound(t *testing.T) {
	t.Setenv(EnvVar, "/nonexistent/psxpack.toml")

	_, err := Discover()
	require.Error(t, err, "expected error for missing PSXPACK_CONFIG")
	assert.Contains(t, err.Error(), EnvVar)
}

func TestDiscover_CurrentDir(t *testing.T) {
	t.Setenv(EnvVar, "")

	tmp := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmp, "psxpack.toml"), []byte("[batch]"), 0644))
	t.Chdir(tmp)

	path, err := Discover()
	require.NoError(t, err)
	assert.Equal(t, "psxpack.toml", filepath.Base(path))
}

func TestDiscover_XDG(t *testing.T) {
	noExecutable(t)
	t.Setenv(EnvVar, "")
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Chdir(t.TempDir())

	want := filepath.Join(xdg, "psxpack", "config.toml")
	require.NoError(t, WriteDefault(want, false))

	path, err := Discover()
	require.NoError(t, err)
	assert.Equal(t, want, path)
}

func TestDiscover_NotFound(t *testing.T) {
	if _, err := os.Stat("/etc/psxpack/config.toml"); err == nil {
		t.Skip("system config present")
	}
	noExecutable(t)
	t.Setenv(EnvVar, "")
	t.Setenv("XDG_CONFIG_HOME", "/nonexistent/xdg")
	t.Chdir(t.TempDir())

	_, err := Discover()
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "psxpack.toml")
}

func TestDiscover_EnvVarDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvVar, dir)

	_, err := Discover()
	require.ErrorIs(t, err, ErrNotFound)

	want := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(want, []byte("[batch]"), 0644))

	path, err := Discover()
	require.NoError(t, err)
	assert.Equal(t, want, path)
}

func TestDiscover_NextToExecutable(t *testing.T) {
	t.Setenv(EnvVar, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	install := t.TempDir()
	executableIn(t, install)
	want := filepath.Join(install, FileName)
	require.NoError(t, WriteDefault(want, false))

	path, err := Discover()
	require.NoError(t, err)
	assert.Equal(t, want, path)
}

func TestDiscover_SkipsDirectoryNamedLikeConfig(t *testing.T) {
	noExecutable(t)
	t.Setenv(EnvVar, "")
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	cwd := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(cwd, FileName), 0755))
	t.Chdir(cwd)

	want := filepath.Join(xdg, "psxpack", "config.toml")
	require.NoError(t, WriteDefault(want, false))

	path, err := Discover()
	require.NoError(t, err)
	assert.Equal(t, want, path)
}

func TestSearchPaths_DropsDuplicates(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	cwd := t.TempDir()
	t.Chdir(cwd)
	executableIn(t, cwd)

	assert.Equal(t, []string{
		"./" + FileName,
		filepath.Join("/custom/config", "psxpack", "config.toml"),
		"/etc/psxpack/config.toml",
	}, SearchPaths())
}
