package simulate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/okian/jobdb/internal/domain/model"
)

// ErrMismatch is returned when the report disagrees with the plans.
var ErrMismatch = errors.New("report mismatch")

// Verify checks that every expected kind was observed at least as often as
// planned. Concurrent traffic from other clients may only add events.
func Verify(expected, observed map[model.EventKind]int) error {
	kinds := make([]string, 0, len(expected))
	for k := range expected {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	var errs []error
	for _, k := range kinds {
		kind := model.EventKind(k)
		if got, want := observed[kind], expected[kind]; got < want {
			errs = append(errs, fmt.Errorf("%w: %s observed %d, want at least %d", ErrMismatch, kind, got, want))
		}
	}
	return errors.Join(errs...)
}
