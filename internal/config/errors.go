package config

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")

	// ErrUnknownBackend is wrapped together with ErrInvalidConfig.
	ErrUnknownBackend = errors.New("unknown backend")
)
