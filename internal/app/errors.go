package service

import "errors"

var (
	// ErrNotStarted is returned by operations that need a running service.
	ErrNotStarted = errors.New("service not started")
	// ErrDataUnavailable hides backend failures from callers.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrViewNotFound is returned for unknown or foreign view sessions.
	ErrViewNotFound = errors.New("view not found")
	// ErrUnknownColumn is returned for column names outside the catalog.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrInvalidArgument is returned for malformed input.
	ErrInvalidArgument = errors.New("invalid argument")
)
