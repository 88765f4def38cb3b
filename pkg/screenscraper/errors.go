package screenscraper

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials is returned before any request when the developer
	// id or password is empty.
	ErrMissingCredentials = errors.New("screenscraper developer credentials are required")

	// ErrUnexpectedStatus is wrapped by RetrievalError for non-2xx responses.
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

// RetrievalError reports a transport failure, timeout or non-success status.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("failed to retrieve game information: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// ParseError reports a response body that could not be decoded.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse game information: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
