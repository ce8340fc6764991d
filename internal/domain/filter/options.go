package filter

import "github.com/okian/jobdb/internal/domain/value"

// Option configures a Registry.
type Option func(*Registry)

// WithExcluded overrides the value kinds a filter removes.
// Unregistered names are ignored.
func WithExcluded(name string, kinds ...value.Kind) Option {
	return func(r *Registry) {
		f, ok := r.filters[name]
		if !ok {
			return
		}
		f.Excludes = append([]value.Kind(nil), kinds...)
		r.filters[name] = f
	}
}
