package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const (
	// EnvVar names a config file, or a folder holding FileName, and
	// overrides the search.
	EnvVar = "PSXPACK_CONFIG"

	// FileName is the config file looked for in the working directory and
	// next to the executable.
	FileName = "psxpack.toml"

	systemPath = "/etc/psxpack/config.toml"
)

// executable is swapped in tests.
var executable = os.Executable

// DefaultPath returns the XDG-compliant default config path.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./" + FileName
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "psxpack", "config.toml")
}

// SearchPaths lists the locations Discover checks, in order, without
// duplicates:
//  1. ./psxpack.toml
//  2. psxpack.toml next to the executable (portable installs, alongside
//     the ScreenScraperArtwork cache)
//  3. $XDG_CONFIG_HOME/psxpack/config.toml
//  4. /etc/psxpack/config.toml
func SearchPaths() []string {
	paths := []string{"./" + FileName}
	if exe, err := executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), FileName))
	}
	paths = append(paths, DefaultPath(), systemPath)

	seen := make(map[string]bool, len(paths))
	return slices.DeleteFunc(paths, func(p string) bool {
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = p
		}
		dup := seen[abs]
		seen[abs] = true
		return dup
	})
}

// Discover returns the config file to load. PSXPACK_CONFIG wins when set and
// must exist; otherwise the first regular file in SearchPaths is used.
func Discover() (string, error) {
	if envPath := os.Getenv(EnvVar); envPath != "" {
		fi, err := os.Stat(envPath)
		if err != nil {
			return "", fmt.Errorf("%s=%s: %w", EnvVar, envPath, err)
		}
		if fi.IsDir() {
			envPath = filepath.Join(envPath, FileName)
			if !isFile(envPath) {
				return "", fmt.Errorf("%s: no %s in directory: %w", EnvVar, FileName, ErrNotFound)
			}
		}
		return envPath, nil
	}

	paths := SearchPaths()
	for _, p := range paths {
		if isFile(p) {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w, checked: %s", ErrNotFound, strings.Join(paths, ", "))
}

func isFile(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}
