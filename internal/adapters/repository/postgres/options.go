package postgres

// Option configures a Store.
type Option func(*Store)

// WithIDFunc sets the generator for ids of inserted records.
func WithIDFunc(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}
