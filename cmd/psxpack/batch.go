package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/psxpack/internal/batch"
	"github.com/vmunix/psxpack/internal/convert"
	"github.com/vmunix/psxpack/internal/events"
)

var errBatchIncomplete = errors.New("batch did not complete cleanly")

var batchCmd = &cobra.Command{
	Use:   "batch [input dir]",
	Short: "Convert every disc image in a directory",
	Long: `Scans the input directory for .cue, .iso, .img, .bin, .m3u and .pbp files
and converts each one. When ScreenScraper credentials are configured, cover
art is downloaded and imported as the ICON0 resource.

Press Ctrl-C to cancel; jobs in flight stop at their next stage.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBatch,
}

type batchFlags struct {
	workers   int
	output    string
	noArtwork bool
	dryRun    bool
	recursive bool
}

var batchOpts batchFlags

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().IntVarP(&batchOpts.workers, "workers", "w", 0, "Number of concurrent jobs (default from config)")
	batchCmd.Flags().StringVarP(&batchOpts.output, "output", "o", "", "Output directory (default from config)")
	batchCmd.Flags().BoolVar(&batchOpts.noArtwork, "no-artwork", false, "Skip ScreenScraper lookup and artwork")
	batchCmd.Flags().BoolVar(&batchOpts.dryRun, "dry-run", false, "Log conversions instead of running the packer")
	batchCmd.Flags().BoolVarP(&batchOpts.recursive, "recursive", "r", false, "Scan subdirectories")
}

// apply overlays command-line flags on settings from the config file.
func (f batchFlags) apply(s batch.Settings, args []string) batch.Settings {
	if len(args) > 0 {
		s.InputPath = args[0]
	}
	if f.workers > 0 {
		s.Workers = f.workers
	}
	if f.output != "" {
		s.OutputPath = f.output
	}
	if f.noArtwork {
		s.Artwork = false
	}
	return s
}

func runBatch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	settings := batchOpts.apply(a.cfg.BatchSettings(), args)
	if settings.InputPath == "" {
		return fmt.Errorf("no input directory: pass one or set batch.input_path")
	}
	if settings.OutputPath == "" {
		settings.OutputPath = settings.InputPath
	}

	var conv convert.Converter
	if batchOpts.dryRun {
		conv = convert.NewDryRun(a.log)
	} else {
		if a.cfg.Conversion.Command == "" {
			return convert.ErrNoCommand
		}
		conv = convert.NewCommand(a.cfg.Conversion.Command, a.log)
	}

	bus := a.bus()
	defer func() { _ = bus.Close() }()

	deps := batch.Deps{Converter: conv, Bus: bus}
	if settings.Artwork {
		if !a.cfg.ScreenScraper.HasCredentials() {
			a.log.Warn("screenscraper credentials not configured, artwork will be skipped")
		}
		deps.Metadata = a.metadata()
		deps.Artwork = a.artwork()
	}

	pool, err := batch.New(settings, deps, a.log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sub := bus.SubscribeFunc(events.InBatch(pool.ID()), 256)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		printEvents(os.Stdout, sub, jsonOutput)
	}()

	runErr := make(chan error, 1)
	go func() { runErr <- pool.Run(ctx) }()

	files, err := batch.Scan(settings.InputPath, batchOpts.recursive || a.cfg.Batch.Recursive)
	if err != nil {
		pool.Cancel()
		<-runErr
		return err
	}
	if len(files) == 0 {
		a.log.Warn("no disc images found", "input", settings.InputPath)
	}
	for _, f := range files {
		if _, err := pool.Submit(f); err != nil {
			break // canceled
		}
	}
	pool.Close()

	err = <-runErr
	if n := bus.Dropped(sub); n > 0 {
		a.log.Warn("status output fell behind", "dropped_events", n)
	}
	bus.Unsubscribe(sub)
	<-printed

	snap := pool.Status()
	if !jsonOutput {
		printSummary(os.Stdout, snap)
	}

	switch {
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: canceled", errBatchIncomplete)
	case err != nil:
		return err
	case snap.Failed > 0:
		return fmt.Errorf("%w: %d of %d jobs failed", errBatchIncomplete, snap.Failed, snap.MaxProgress)
	}
	return nil
}

// printEvents writes bus events until sub is closed.
func printEvents(w io.Writer, sub <-chan events.Event, asJSON bool) {
	enc := json.NewEncoder(w)
	for e := range sub {
		if asJSON {
			_ = enc.Encode(e)
			continue
		}
		if line := describeEvent(e); line != "" {
			fmt.Fprintln(w, line)
		}
	}
}

// describeEvent renders an event as one status line. Progress events are
// not printed.
func describeEvent(e events.Event) string {
	switch ev := e.(type) {
	case *events.JobQueued:
		return fmt.Sprintf("[%d] queued %s", ev.EntityID(), ev.Path)
	case *events.JobStatusChanged:
		line := fmt.Sprintf("[%d] %s: %s", ev.EntityID(), ev.Stage, ev.Message)
		if ev.Error != "" {
			line += " (" + ev.Error + ")"
		}
		return line
	case *events.JobCompleted:
		if ev.Title != "" {
			return fmt.Sprintf("[%d] done %s (%s)", ev.EntityID(), ev.Path, ev.Title)
		}
		return fmt.Sprintf("[%d] done %s", ev.EntityID(), ev.Path)
	case *events.JobFailed:
		return fmt.Sprintf("[%d] FAILED %s: %s", ev.EntityID(), ev.Path, ev.Error)
	case *events.JobCanceled:
		return fmt.Sprintf("[%d] canceled %s during %s", ev.EntityID(), ev.Path, ev.Stage)
	}
	return ""
}

func printSummary(w io.Writer, snap batch.Snapshot) {
	fmt.Fprintf(w, "\n%d/%d processed: %d converted, %d failed, %d canceled\n",
		snap.Progress, snap.MaxProgress, snap.Completed, snap.Failed, snap.Canceled)
	for _, st := range snap.Jobs {
		if st.Stage == batch.StageFailed {
			fmt.Fprintf(w, "  FAILED %s: %s\n", st.Path, st.Error)
		}
	}
}

// logDuration is a helper for commands that time a single call.
func logDuration(log *slog.Logger, msg string, start time.Time, args ...any) {
	log.Debug(msg, append(args, "duration_ms", time.Since(start).Milliseconds())...)
}
