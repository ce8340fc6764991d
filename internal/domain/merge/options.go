package merge

import "golang.org/x/text/language"

// Option configures a Merger.
type Option func(*Merger)

// WithLocale sets the locale used for number formatting.
func WithLocale(tag language.Tag) Option {
	return func(m *Merger) {
		m.locale = tag
	}
}
