package batch

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/vmunix/psxpack/internal/events"
)

// Snapshot is a consistent copy of a batch's state.
type Snapshot struct {
	BatchID     string      `json:"batch_id"`
	Progress    int         `json:"progress"`
	MaxProgress int         `json:"max_progress"`
	Completed   int         `json:"completed"`
	Failed      int         `json:"failed"`
	Canceled    int         `json:"canceled"`
	Jobs        []JobStatus `json:"jobs"`
}

// tracker owns per-job status and batch progress. Every mutation is
// published on the bus after the lock is released.
type tracker struct {
	batchID string

	mu    sync.Mutex
	snap  Snapshot
	jobs  map[int64]*JobStatus
	bus   *events.Bus
	log   *slog.Logger
	clock func() time.Time
}

func newTracker(batchID string, bus *events.Bus, log *slog.Logger) *tracker {
	return &tracker{
		batchID: batchID,
		snap:    Snapshot{BatchID: batchID},
		jobs:    make(map[int64]*JobStatus),
		bus:     bus,
		log:     log,
		clock:   time.Now,
	}
}

func (t *tracker) queued(job ConvertJob) {
	t.mu.Lock()
	t.jobs[job.ID] = &JobStatus{
		JobID:     job.ID,
		Path:      job.Path,
		Stage:     StageQueued,
		UpdatedAt: t.clock(),
	}
	t.snap.MaxProgress++
	progress, maxProgress := t.snap.Progress, t.snap.MaxProgress
	t.mu.Unlock()

	t.publish(&events.JobQueued{
		BaseEvent: t.base(events.EventJobQueued, job.ID),
		Path:      job.Path,
	})
	t.publishProgress(progress, maxProgress)
}

// forget drops a job that never made it into the queue.
func (t *tracker) forget(job ConvertJob) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.jobs[job.ID]; ok {
		delete(t.jobs, job.ID)
		t.snap.MaxProgress--
	}
}

// stage moves a job to a non-terminal stage.
func (t *tracker) stage(job ConvertJob, stage Stage, message string) {
	t.update(job, stage, message, "")
}

// degrade records an artwork step that was skipped. The job keeps going.
func (t *tracker) degrade(job ConvertJob, stage Stage, message string, err error) {
	errText := ""
	if err != nil {
		errText = err.Error()
		t.log.Warn("artwork step skipped", "job_id", job.ID, "path", job.Path, "stage", stage, "error", err)
	}
	t.update(job, stage, message, errText)
}

func (t *tracker) update(job ConvertJob, stage Stage, message, errText string) {
	t.mu.Lock()
	st := t.entry(job)
	st.Stage = stage
	st.Message = message
	if errText != "" {
		st.Error = errText
	}
	st.UpdatedAt = t.clock()
	t.mu.Unlock()

	t.publish(&events.JobStatusChanged{
		BaseEvent: t.base(events.EventJobStatus, job.ID),
		Path:      job.Path,
		Stage:     string(stage),
		Message:   message,
		Error:     errText,
	})
}

// matched records the catalog entry a job resolved to.
func (t *tracker) matched(job ConvertJob, catalogID, title string) {
	t.mu.Lock()
	st := t.entry(job)
	st.CatalogID = catalogID
	st.Title = title
	t.mu.Unlock()
}

func (t *tracker) done(job ConvertJob, artwork bool) {
	t.mu.Lock()
	st := t.entry(job)
	st.Stage = StageDone
	st.Message = "Converted"
	st.Artwork = artwork
	st.UpdatedAt = t.clock()
	catalogID, title := st.CatalogID, st.Title
	t.snap.Completed++
	progress, maxProgress := t.advance()
	t.mu.Unlock()

	t.publish(&events.JobCompleted{
		BaseEvent: t.base(events.EventJobCompleted, job.ID),
		Path:      job.Path,
		CatalogID: catalogID,
		Title:     title,
		Artwork:   artwork,
	})
	t.publishProgress(progress, maxProgress)
}

func (t *tracker) failed(job ConvertJob, err error) {
	t.mu.Lock()
	st := t.entry(job)
	st.Stage = StageFailed
	st.Message = "Conversion failed"
	st.Error = err.Error()
	st.UpdatedAt = t.clock()
	t.snap.Failed++
	progress, maxProgress := t.advance()
	t.mu.Unlock()

	t.publish(&events.JobFailed{
		BaseEvent: t.base(events.EventJobFailed, job.ID),
		Path:      job.Path,
		Error:     err.Error(),
	})
	t.publishProgress(progress, maxProgress)
}

func (t *tracker) canceled(job ConvertJob) {
	t.mu.Lock()
	st := t.entry(job)
	last := st.Stage
	st.Stage = StageCanceled
	st.Message = "Canceled"
	st.UpdatedAt = t.clock()
	t.snap.Canceled++
	progress, maxProgress := t.advance()
	t.mu.Unlock()

	t.publish(&events.JobCanceled{
		BaseEvent: t.base(events.EventJobCanceled, job.ID),
		Path:      job.Path,
		Stage:     string(last),
	})
	t.publishProgress(progress, maxProgress)
}

// entry must be called with mu held. Jobs are normally registered by
// queued; the fallback keeps a stray update from panicking.
func (t *tracker) entry(job ConvertJob) *JobStatus {
	st, ok := t.jobs[job.ID]
	if !ok {
		st = &JobStatus{JobID: job.ID, Path: job.Path}
		t.jobs[job.ID] = st
	}
	return st
}

// advance must be called with mu held.
func (t *tracker) advance() (int, int) {
	t.snap.Progress++
	return t.snap.Progress, t.snap.MaxProgress
}

func (t *tracker) snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.snap
	s.Jobs = make([]JobStatus, 0, len(t.jobs))
	for _, st := range t.jobs {
		s.Jobs = append(s.Jobs, *st)
	}
	slices.SortFunc(s.Jobs, func(a, b JobStatus) int {
		switch {
		case a.JobID < b.JobID:
			return -1
		case a.JobID > b.JobID:
			return 1
		}
		return 0
	})
	return s
}

func (t *tracker) base(eventType string, jobID int64) events.BaseEvent {
	return events.NewBaseEvent(eventType, events.EntityJob, jobID, t.batchID)
}

func (t *tracker) publishProgress(progress, maxProgress int) {
	t.publish(&events.BatchProgress{
		BaseEvent:   events.NewBaseEvent(events.EventBatchProgress, events.EntityBatch, 0, t.batchID),
		Progress:    progress,
		MaxProgress: maxProgress,
	})
}

func (t *tracker) publish(e events.Event) {
	if t.bus == nil {
		return
	}
	if err := t.bus.Publish(context.Background(), e); err != nil {
		t.log.Warn("failed to publish event", "type", e.EventType(), "error", err)
	}
}
