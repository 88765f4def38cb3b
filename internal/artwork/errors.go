package artwork

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCatalogID indicates Store was called without a usable catalog id.
	ErrNoCatalogID = errors.New("catalog id is required")

	// ErrStageFailed indicates the per-job resource folder could not be prepared.
	ErrStageFailed = errors.New("failed to stage artwork")

	// ErrPathTraversal indicates a computed path would escape the cache directory.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrUnexpectedStatus is wrapped by RetrievalError for non-2xx responses.
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

// RetrievalError reports a failed artwork download.
type RetrievalError struct {
	URL string
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }
