package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

//go:embed default_config.toml
var defaultConfig string

// WriteDefault writes the commented default config to path, creating parent
// directories. It returns ErrExists when path is present and force is false.
// Files are created with mode 0600.
func WriteDefault(path string, force bool) error {
	return writeFile(path, force, func(f *os.File) error {
		_, err := f.WriteString(defaultConfig)
		return err
	})
}

// Write serializes the config to TOML at path, replacing any existing file.
func (c *Config) Write(path string) error {
	return writeFile(path, true, func(f *os.File) error {
		return toml.NewEncoder(f).Encode(c)
	})
}

func writeFile(path string, force bool, fill func(*os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0600)
	if os.IsExist(err) {
		return fmt.Errorf("%w: %s", ErrExists, path)
	}
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}

	if err := fill(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write config: %w", err)
	}
	return f.Close()
}
