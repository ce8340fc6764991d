package sorting

import "golang.org/x/text/language"

// Option configures a Sorter.
type Option func(*Sorter)

// WithLocale sets the collation locale for string columns.
func WithLocale(tag language.Tag) Option {
	return func(s *Sorter) {
		s.locale = tag
	}
}

// WithNumericColumns replaces the set of numerically compared columns.
func WithNumericColumns(names ...string) Option {
	return func(s *Sorter) {
		s.numeric = make(map[string]struct{}, len(names))
		for _, n := range names {
			s.numeric[n] = struct{}{}
		}
	}
}
