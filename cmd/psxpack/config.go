package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vmunix/psxpack/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long:  "Validates TOML syntax, settings and environment variable substitution without running a batch.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigTest,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show which config file would be loaded",
	Long:  "Prints the config file psxpack would load and every location it searches, in order.",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configTestCmd, configPathCmd)
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	found, err := config.Discover()
	if err != nil && !errors.Is(err, config.ErrNotFound) {
		return err
	}

	if jsonOutput {
		printJSON(struct {
			Found    string   `json:"found,omitempty"`
			Searched []string `json:"searched"`
		}{found, config.SearchPaths()})
		return nil
	}

	if found == "" {
		fmt.Println("No config file found, using built-in defaults")
	} else {
		fmt.Printf("Using %s\n", found)
	}
	if env := os.Getenv(config.EnvVar); env != "" {
		fmt.Printf("  %s=%s\n", config.EnvVar, env)
		return nil
	}
	fmt.Println("Searched:")
	for _, p := range config.SearchPaths() {
		fmt.Printf("  %s\n", p)
	}
	return nil
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	path := configPath
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		found, err := config.Discover()
		if err != nil {
			return err
		}
		path = found
	}

	fmt.Printf("Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var configErr *config.Error
		if errors.As(err, &configErr) {
			printConfigErrors(configErr)
			return fmt.Errorf("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(cfg)
	fmt.Println("\nConfiguration valid!")
	return nil
}

func printConfigErrors(e *config.Error) {
	if len(e.Missing) > 0 {
		fmt.Println("Missing environment variables:")
		for _, m := range e.Missing {
			fmt.Printf("  - %s\n", m)
		}
		fmt.Println()
	}

	if len(e.Errors) > 0 {
		fmt.Println("Validation errors:")
		for _, err := range e.Errors {
			fmt.Printf("  - %s\n", err)
		}
		fmt.Println()
	}
}

func printConfigSummary(cfg *config.Config) {
	fmt.Println("Configuration Summary:")
	fmt.Printf("  Log level:   %s\n", cfg.Log.Level)
	fmt.Printf("  Database:    %s\n", cfg.Database.Path)
	fmt.Printf("  Workers:     %d\n", cfg.Batch.Workers)
	if cfg.Batch.InputPath != "" {
		fmt.Printf("  Input:       %s\n", cfg.Batch.InputPath)
	}
	if cfg.Batch.OutputPath != "" {
		fmt.Printf("  Output:      %s\n", cfg.Batch.OutputPath)
	}

	packer := cfg.Conversion.Command
	if packer == "" {
		packer = "(not set)"
	}
	fmt.Printf("  Packer:      %s (level %d, discs %s)\n", packer, cfg.Conversion.CompressionLevel, formatDiscs(cfg.Conversion.Discs))

	if cfg.Resources.UseCustom {
		fmt.Printf("  Resources:   %s (%s)\n", cfg.Resources.Path, cfg.Resources.Format)
	}

	ss := cfg.ScreenScraper
	switch {
	case !ss.HasCredentials():
		fmt.Println("  Artwork:     disabled (no ScreenScraper credentials)")
	case !ss.AutoDownloadArtwork || !ss.UseInBatchMode:
		fmt.Println("  Artwork:     disabled in batch mode")
	default:
		account := "developer account only"
		if ss.Username != "" {
			account = "user " + ss.Username
		}
		fmt.Printf("  Artwork:     ScreenScraper (%s)\n", account)
	}
}

func formatDiscs(discs []int) string {
	parts := make([]string, len(discs))
	for i, d := range discs {
		parts[i] = fmt.Sprint(d)
	}
	return strings.Join(parts, ",")
}
