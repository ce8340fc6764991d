package filter

import "errors"

// ErrUnknownFilter is returned for filter names that are not registered.
var ErrUnknownFilter = errors.New("unknown filter")
