package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/psxpack/internal/events"
	"github.com/vmunix/psxpack/internal/metadata"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Metadata cache maintenance",
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired metadata and old events",
	RunE:  runCachePrune,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show metadata cache size",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached ScreenScraper lookups",
	Long:  "Deletes cached lookups, including not-found results, so the next batch queries ScreenScraper again.",
	RunE:  runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cachePruneCmd, cacheStatsCmd, cacheClearCmd)
	cachePruneCmd.Flags().Duration("events-older-than", 30*24*time.Hour, "Delete events older than this")
}

func runCachePrune(cmd *cobra.Command, args []string) error {
	olderThan, _ := cmd.Flags().GetDuration("events-older-than")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	entries, err := metadata.NewCache(a.db).Prune(cmd.Context())
	if err != nil {
		return fmt.Errorf("prune cache: %w", err)
	}
	evts, err := events.NewEventLog(a.db).Prune(cmd.Context(), olderThan)
	if err != nil {
		return fmt.Errorf("prune events: %w", err)
	}

	if jsonOutput {
		printJSON(map[string]int64{"cache_entries": entries, "events": evts})
		return nil
	}
	fmt.Printf("Pruned %d cache entries and %d events\n", entries, evts)
	return nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	stats, err := metadata.NewCache(a.db).Stats(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput {
		printJSON(stats)
		return nil
	}
	fmt.Printf("Cache: %d entries (%d expired) in %s\n", stats.Entries, stats.Expired, a.cfg.Database.Path)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	removed, err := metadata.NewCache(a.db).Clear(cmd.Context(), metadata.KeyPrefix)
	if err != nil {
		return err
	}
	fmt.Printf("Cleared %d cached lookups\n", removed)
	return nil
}
