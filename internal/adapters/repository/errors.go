package repository

import "errors"

// Sentinel kinds for table store errors.
var (
	ErrNotFound       = errors.New("record not found")
	ErrUnknownTable   = errors.New("unknown table")
	ErrUnknownColumn  = errors.New("unknown column")
	ErrInvalidValue   = errors.New("invalid column value")
	ErrMalformedValue = errors.New("malformed stored value")
	ErrClosed         = errors.New("store closed")
)
