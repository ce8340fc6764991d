package auth

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Option configures a Service.
type Option func(*Service)

// WithEmailDomain sets the domain appended to short ids.
func WithEmailDomain(domain string) Option {
	return func(s *Service) {
		if domain != "" {
			s.domain = domain
		}
	}
}

// WithTokenFunc sets the session token generator.
func WithTokenFunc(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newToken = fn
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithCost sets the bcrypt cost used by CreateUser.
func WithCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}
