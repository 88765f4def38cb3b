// Package batch runs conversion jobs through a fixed pool of workers, enriching
// each with ScreenScraper artwork before handing it to the packer.
package batch

import "time"

// ConvertJob is one source file queued for conversion.
type ConvertJob struct {
	ID   int64
	Path string // relative to Settings.InputPath
}

// Stage is a step of the per-job workflow.
type Stage string

const (
	StageQueued     Stage = "queued"
	StageHashing    Stage = "hashing"
	StageLookup     Stage = "lookup"
	StageDownload   Stage = "download"
	StageStaging    Stage = "staging"
	StageConverting Stage = "converting"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
	StageCanceled   Stage = "canceled"
)

// IsTerminal reports whether a job in this stage will not change again.
func (s Stage) IsTerminal() bool {
	return s == StageDone || s == StageFailed || s == StageCanceled
}

// JobStatus is an observer's copy of one job's state.
type JobStatus struct {
	JobID     int64     `json:"job_id"`
	Path      string    `json:"path"`
	Stage     Stage     `json:"stage"`
	Message   string    `json:"message"`
	Error     string    `json:"error,omitempty"` // last artwork or conversion error
	CatalogID string    `json:"catalog_id,omitempty"`
	Title     string    `json:"title,omitempty"`
	Artwork   bool      `json:"artwork"`
	UpdatedAt time.Time `json:"updated_at"`
}
