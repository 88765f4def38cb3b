package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vmunix/psxpack/internal/events"
)

var eventsCmd = &cobra.Command{
	Use:   "events [batch id]",
	Short: "Show persisted batch events",
	Long: `Without arguments, lists recent events. With a batch id, replays that
batch's job status lines. Use --batches to list recent batch runs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEventsCmd,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.Flags().Duration("since", 24*time.Hour, "Show events from this far back")
	eventsCmd.Flags().Bool("batches", false, "List recent batch runs")
	eventsCmd.Flags().IntP("limit", "n", 20, "Number of batches to list")
}

func runEventsCmd(cmd *cobra.Command, args []string) error {
	since, _ := cmd.Flags().GetDuration("since")
	listBatches, _ := cmd.Flags().GetBool("batches")
	limit, _ := cmd.Flags().GetInt("limit")

	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx := cmd.Context()
	eventLog := events.NewEventLog(a.db)

	if listBatches {
		batches, err := eventLog.Batches(ctx, limit)
		if err != nil {
			return fmt.Errorf("failed to fetch batches: %w", err)
		}
		if jsonOutput {
			printJSON(batches)
			return nil
		}
		if len(batches) == 0 {
			fmt.Println("No batches")
			return nil
		}
		fmt.Printf("  %-36s %-8s %-8s %s\n", "BATCH", "EVENTS", "FAILED", "FINISHED")
		for _, b := range batches {
			fmt.Printf("  %-36s %-8d %-8d %v\n", b.BatchID, b.Events, b.Failed, b.Finished)
		}
		return nil
	}

	if len(args) > 0 {
		list, err := eventLog.ForBatch(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to fetch events: %w", err)
		}
		if jsonOutput {
			printJSON(list)
			return nil
		}
		replayEvents(list)
		return nil
	}

	list, err := eventLog.Since(ctx, time.Now().Add(-since))
	if err != nil {
		return fmt.Errorf("failed to fetch events: %w", err)
	}

	if jsonOutput {
		printJSON(list)
		return nil
	}

	if len(list) == 0 {
		fmt.Println("No events")
		return nil
	}

	fmt.Printf("Events (%d):\n\n", len(list))
	fmt.Printf("  %-16s %-16s %-12s %-36s\n", "TIME", "TYPE", "ENTITY", "BATCH")
	fmt.Println("  " + strings.Repeat("-", 82))

	for _, e := range list {
		entity := fmt.Sprintf("%s/%d", e.EntityType, e.EntityID)
		fmt.Printf("  %-16s %-16s %-12s %-36s\n", humanize.Time(e.OccurredAt), e.EventType, entity, e.BatchID)
	}
	return nil
}

// replayEvents prints persisted events the way a live batch shows them.
func replayEvents(list []events.RawEvent) {
	for _, raw := range list {
		e, err := events.Decode(raw)
		if err != nil {
			fmt.Printf("  ? %s\n", raw.EventType)
			continue
		}
		if f, ok := e.(*events.BatchFinished); ok {
			fmt.Printf("\nfinished: %d converted, %d failed, %d canceled in %s\n",
				f.Completed, f.Failed, f.Canceled, time.Duration(f.DurationMs)*time.Millisecond)
			continue
		}
		if line := describeEvent(e); line != "" {
			fmt.Println(line)
		}
	}
}
