package config

import "errors"

var (
	// ErrNotFound is returned by Discover when no config file exists.
	ErrNotFound = errors.New("config not found")

	// ErrExists is returned by WriteDefault when it would overwrite a file.
	ErrExists = errors.New("config already exists")
)
