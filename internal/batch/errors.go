package batch

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRunning is returned when Run is called twice on a pool.
	ErrAlreadyRunning = errors.New("batch already running")

	// ErrNoConverter is returned by New when no converter is supplied.
	ErrNoConverter = errors.New("converter is required")
)

// JobError is a failure of the packer for a single job. It is recorded on the
// job's status and never stops the pool.
type JobError struct {
	JobID int64
	Path  string
	Err   error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("convert %s: %v", e.Path, e.Err)
}

func (e *JobError) Unwrap() error { return e.Err }
