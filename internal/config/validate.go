package config

import (
	"fmt"
	"os"
	"slices"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}

	if c.Batch.Workers < 0 {
		errs = append(errs, fmt.Sprintf("batch.workers: must not be negative, got %d", c.Batch.Workers))
	}
	if c.Batch.InputPath != "" {
		if _, err := os.Stat(c.Batch.InputPath); os.IsNotExist(err) {
			errs = append(errs, fmt.Sprintf("batch.input_path: directory %q does not exist", c.Batch.InputPath))
		}
	}

	if c.Conversion.CompressionLevel < 0 || c.Conversion.CompressionLevel > 9 {
		errs = append(errs, fmt.Sprintf("conversion.compression_level: must be between 0 and 9, got %d", c.Conversion.CompressionLevel))
	}
	seen := make(map[int]bool)
	for _, d := range c.Conversion.Discs {
		if d < 1 || d > 5 {
			errs = append(errs, fmt.Sprintf("conversion.discs: disc %d out of range 1-5", d))
		}
		if seen[d] {
			errs = append(errs, fmt.Sprintf("conversion.discs: disc %d listed twice", d))
		}
		seen[d] = true
	}
	if !slices.IsSorted(c.Conversion.Discs) {
		errs = append(errs, "conversion.discs: must be in ascending order")
	}

	if c.Resources.UseCustom && c.Resources.Path == "" {
		errs = append(errs, "resources.path: required when use_custom is set")
	}

	ss := c.ScreenScraper
	if (ss.DevID == "") != (ss.DevPassword == "") {
		errs = append(errs, "screenscraper: dev_id and dev_password must be set together")
	}
	if (ss.Username == "") != (ss.Password == "") {
		errs = append(errs, "screenscraper: username and password must be set together")
	}

	return errs
}
