package events

// Entity types
const (
	EntityJob   = "job"
	EntityBatch = "batch"
)

// Event type constants
const (
	EventJobQueued     = "job.queued"
	EventJobStatus     = "job.status"
	EventJobCompleted  = "job.completed"
	EventJobFailed     = "job.failed"
	EventJobCanceled   = "job.canceled"
	EventBatchProgress = "batch.progress"
	EventBatchFinished = "batch.finished"
)

// JobQueued is emitted when a file is submitted to a batch.
type JobQueued struct {
	BaseEvent
	Path string `json:"path"`
}

// JobStatusChanged is emitted whenever a job enters a stage or records a
// degraded artwork step.
type JobStatusChanged struct {
	BaseEvent
	Path    string `json:"path"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// JobCompleted is emitted when the packer succeeded for a job.
type JobCompleted struct {
	BaseEvent
	Path      string `json:"path"`
	CatalogID string `json:"catalog_id,omitempty"`
	Title     string `json:"title,omitempty"`
	Artwork   bool   `json:"artwork"`
}

// JobFailed is emitted when the packer failed for a job.
type JobFailed struct {
	BaseEvent
	Path  string `json:"path"`
	Error string `json:"error"`
}

// JobCanceled is emitted when cancellation interrupted a job.
type JobCanceled struct {
	BaseEvent
	Path  string `json:"path"`
	Stage string `json:"stage"`
}

// BatchProgress is emitted each time a job reaches a terminal state or a
// new job is submitted.
type BatchProgress struct {
	BaseEvent
	Progress    int `json:"progress"`
	MaxProgress int `json:"max_progress"`
}

// BatchFinished is emitted once all workers have exited.
type BatchFinished struct {
	BaseEvent
	Total      int   `json:"total"`
	Completed  int   `json:"completed"`
	Failed     int   `json:"failed"`
	Canceled   int   `json:"canceled"`
	DurationMs int64 `json:"duration_ms"`
}
