package batch

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vmunix/psxpack/internal/convert"
	"github.com/vmunix/psxpack/internal/events"
	"github.com/vmunix/psxpack/internal/queue"
	"github.com/vmunix/psxpack/pkg/checksum"
)

// Pool runs submitted jobs on a fixed number of workers.
//
// Jobs may be submitted before or during Run. Close marks the end of input;
// Run returns once every queued job has reached a terminal stage. Cancel stops
// the batch: in-flight stages observe it and queued jobs are not started.
type Pool struct {
	settings Settings
	deps     Deps
	log      *slog.Logger

	id      string
	queue   *queue.Queue[ConvertJob]
	tracker *tracker
	nextID  atomic.Int64

	running atomic.Bool

	mu       sync.Mutex
	stop     context.CancelFunc // set while Run is active
	canceled bool
}

// New creates a pool. Settings defaults are applied here.
func New(settings Settings, deps Deps, logger *slog.Logger) (*Pool, error) {
	if deps.Converter == nil {
		return nil, ErrNoConverter
	}
	if deps.Hash == nil {
		deps.Hash = checksum.File
	}
	if logger == nil {
		logger = slog.Default()
	}

	id := uuid.NewString()
	log := logger.With("component", "batch", "batch_id", id)

	return &Pool{
		settings: settings.withDefaults(),
		deps:     deps,
		log:      log,
		id:       id,
		queue:    queue.New[ConvertJob](),
		tracker:  newTracker(id, deps.Bus, log),
	}, nil
}

// ID identifies this batch in events.
func (p *Pool) ID() string { return p.id }

// Settings returns the effective settings after defaults.
func (p *Pool) Settings() Settings { return p.settings }

// Submit queues a file, given relative to the input path.
// It returns queue.ErrClosed after Close or Cancel.
func (p *Pool) Submit(relativePath string) (ConvertJob, error) {
	job := ConvertJob{ID: p.nextID.Add(1), Path: relativePath}
	// Register before pushing so a worker never sees an unknown job.
	p.tracker.queued(job)
	if err := p.queue.Push(job); err != nil {
		p.tracker.forget(job)
		return ConvertJob{}, err
	}
	return job, nil
}

// Close signals that no more jobs will be submitted.
func (p *Pool) Close() {
	p.queue.Close()
}

// Cancel stops the batch. It is safe to call more than once and from any
// goroutine, including before Run.
func (p *Pool) Cancel() {
	p.mu.Lock()
	p.canceled = true
	if p.stop != nil {
		p.stop()
	}
	p.mu.Unlock()

	p.queue.Close()
}

// Status returns a copy of the batch and per-job state.
func (p *Pool) Status() Snapshot {
	return p.tracker.snapshot()
}

// Run processes jobs until the queue is closed and drained, or until ctx is
// done or Cancel is called. It returns nil after a full drain and the
// cancellation cause otherwise. A failed conversion never ends the run.
func (p *Pool) Run(ctx context.Context) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.mu.Lock()
	if p.canceled {
		cancel()
	}
	p.stop = cancel
	p.mu.Unlock()

	start := time.Now()
	p.log.Info("batch started", "workers", p.settings.Workers, "input", p.settings.InputPath)

	g, ctx := errgroup.WithContext(ctx)
	for i := range p.settings.Workers {
		g.Go(func() error {
			return p.worker(ctx, i+1)
		})
	}
	err := g.Wait()
	if err != nil {
		p.abandonQueued()
	}

	snap := p.tracker.snapshot()
	p.tracker.publish(&events.BatchFinished{
		BaseEvent:  events.NewBaseEvent(events.EventBatchFinished, events.EntityBatch, 0, p.id),
		Total:      snap.MaxProgress,
		Completed:  snap.Completed,
		Failed:     snap.Failed,
		Canceled:   snap.Canceled,
		DurationMs: time.Since(start).Milliseconds(),
	})
	p.log.Info("batch finished",
		"completed", snap.Completed,
		"failed", snap.Failed,
		"canceled", snap.Canceled,
		"duration_ms", time.Since(start).Milliseconds())

	return err
}

// worker pops jobs until the queue is drained or ctx is done. The returned
// error is only ever the cancellation cause.
func (p *Pool) worker(ctx context.Context, n int) error {
	log := p.log.With("worker", n)
	for {
		job, err := p.queue.Pop(ctx)
		if errors.Is(err, queue.ErrClosed) {
			return nil
		}
		if err != nil {
			return err
		}
		p.process(ctx, log, job)
	}
}

// abandonQueued marks jobs still waiting in the queue as canceled without
// starting them.
func (p *Pool) abandonQueued() {
	p.queue.Close()
	for {
		job, err := p.queue.Pop(context.Background())
		if err != nil {
			return
		}
		p.tracker.canceled(job)
	}
}

// process takes one job through the artwork stages and the packer.
func (p *Pool) process(ctx context.Context, log *slog.Logger, job ConvertJob) {
	start := time.Now()
	source := filepath.Join(p.settings.InputPath, job.Path)
	log = log.With("job_id", job.ID, "path", job.Path)
	log.Info("job started")

	opts := p.settings.baseOptions()

	var art artworkResult
	if p.artworkEnabled() {
		var err error
		art, err = p.resolveArtwork(ctx, job, source)
		if err != nil {
			log.Info("job canceled", "error", err)
			p.tracker.canceled(job)
			return
		}
		if art.staged {
			opts = withArtwork(opts, art.root)
			defer func() {
				if err := p.deps.Artwork.Unstage(art.root); err != nil {
					log.Warn("remove staged artwork", "dir", art.root, "error", err)
				}
			}()
		}
	}

	if err := ctx.Err(); err != nil {
		log.Info("job canceled", "error", err)
		p.tracker.canceled(job)
		return
	}

	p.tracker.stage(job, StageConverting, "Converting...")
	if err := p.convert(ctx, source, opts); err != nil {
		if ctx.Err() != nil {
			log.Info("job canceled during conversion", "error", err)
			p.tracker.canceled(job)
			return
		}
		jobErr := &JobError{JobID: job.ID, Path: job.Path, Err: err}
		log.Error("conversion failed", "error", err)
		p.tracker.failed(job, jobErr)
		return
	}

	log.Info("job completed", "artwork", art.staged, "duration_ms", time.Since(start).Milliseconds())
	p.tracker.done(job, art.staged)
}

func (p *Pool) convert(ctx context.Context, source string, opts convert.Options) error {
	return p.deps.Converter.Convert(ctx, source, opts)
}

func (p *Pool) artworkEnabled() bool {
	return p.settings.Artwork && p.deps.Metadata != nil && p.deps.Artwork != nil
}
