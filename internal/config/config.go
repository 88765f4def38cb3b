// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Log           LogConfig           `toml:"log"`
	Batch         BatchConfig         `toml:"batch"`
	Conversion    ConversionConfig    `toml:"conversion"`
	Resources     ResourcesConfig     `toml:"resources"`
	ScreenScraper ScreenScraperConfig `toml:"screenscraper"`
	Artwork       ArtworkConfig       `toml:"artwork"`
	Database      DatabaseConfig      `toml:"database"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type BatchConfig struct {
	Workers                 int    `toml:"workers"`
	InputPath               string `toml:"input_path"`
	OutputPath              string `toml:"output_path"`
	TempPath                string `toml:"temp_path"`
	Recursive               bool   `toml:"recursive"`
	ExtractResources        bool   `toml:"extract_resources"`
	GenerateResourceFolders bool   `toml:"generate_resource_folders"`
}

// ConversionConfig describes the external packer.
type ConversionConfig struct {
	Command          string `toml:"command"`
	FileNameFormat   string `toml:"file_name_format"`
	CompressionLevel int    `toml:"compression_level"`
	Discs            []int  `toml:"discs"`
}

// ResourcesConfig points the packer at user-supplied resources.
type ResourcesConfig struct {
	UseCustom bool   `toml:"use_custom"`
	Path      string `toml:"path"`
	Format    string `toml:"format"`
}

type ScreenScraperConfig struct {
	DevID               string `toml:"dev_id"`
	DevPassword         string `toml:"dev_password"`
	Username            string `toml:"username"`
	Password            string `toml:"password"`
	SoftName            string `toml:"soft_name"`
	BaseURL             string `toml:"base_url"`
	AutoDownloadArtwork bool   `toml:"auto_download_artwork"`
	UseInBatchMode      bool   `toml:"use_in_batch_mode"`
}

// HasCredentials reports whether the developer id and password are set.
func (s ScreenScraperConfig) HasCredentials() bool {
	return s.DevID != "" && s.DevPassword != ""
}

type ArtworkConfig struct {
	CacheDir string `toml:"cache_dir"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

const (
	defaultLogLevel         = "info"
	defaultWorkers          = 4
	defaultFileNameFormat   = "%FILENAME%"
	defaultCompressionLevel = 5
	defaultSoftName         = "PSXPackagerPlus"
	defaultBaseURL          = "https://api.screenscraper.fr/api2"
	defaultDatabasePath     = "./data/psxpack.db"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: defaultLogLevel},
		Batch: BatchConfig{
			Workers: defaultWorkers,
		},
		Conversion: ConversionConfig{
			FileNameFormat:   defaultFileNameFormat,
			CompressionLevel: defaultCompressionLevel,
			Discs:            []int{1, 2, 3, 4, 5},
		},
		ScreenScraper: ScreenScraperConfig{
			SoftName:            defaultSoftName,
			BaseURL:             defaultBaseURL,
			AutoDownloadArtwork: true,
			UseInBatchMode:      true,
		},
		Database: DatabaseConfig{Path: defaultDatabasePath},
	}
}

// Load reads, parses and validates the configuration file.
// Unresolved environment variables and validation failures are reported
// together as an *Error.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}

	cerr := &Error{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cerr.HasErrors() {
		return nil, cerr
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file, only
// failing on unresolved environment variables.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, &Error{Path: path, Missing: missing}
	}
	return cfg, nil
}

func load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	// Decode over the defaults so keys absent from the file keep them.
	cfg := Default()
	if _, err := toml.Decode(content, cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()

	return cfg, missing, nil
}

// applyDefaults fills values that were explicitly set to empty.
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	if c.Batch.Workers == 0 {
		c.Batch.Workers = defaultWorkers
	}
	if c.Conversion.FileNameFormat == "" {
		c.Conversion.FileNameFormat = defaultFileNameFormat
	}
	if len(c.Conversion.Discs) == 0 {
		c.Conversion.Discs = []int{1, 2, 3, 4, 5}
	}
	if c.ScreenScraper.SoftName == "" {
		c.ScreenScraper.SoftName = defaultSoftName
	}
	if c.ScreenScraper.BaseURL == "" {
		c.ScreenScraper.BaseURL = defaultBaseURL
	}
	if c.Database.Path == "" {
		c.Database.Path = defaultDatabasePath
	}
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

// substituteEnvVars replaces environment references in content. Unset
// variables without a default are left in place and reported in missing.
// Empty values count as unset for the :- and :? forms.
func substituteEnvVars(content string) (string, []string) {
	var missing []string

	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		name, op, arg := parts[1], parts[2], parts[3]
		value, set := os.LookupEnv(name)

		switch op {
		case ":-":
			if value == "" {
				return arg
			}
			return value
		case ":?":
			if value == "" {
				missing = append(missing, name+": "+strings.TrimSpace(arg))
				return match
			}
			return value
		default:
			if !set {
				missing = append(missing, name)
				return match
			}
			return value
		}
	})

	return result, missing
}
