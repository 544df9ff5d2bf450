package service

import "errors"

var (
	// ErrNotFound is wrapped by every lookup failure: sessions, configs, tiles
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest is returned for malformed command arguments
	ErrInvalidRequest = errors.New("invalid request")
)
