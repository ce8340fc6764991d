package auth

import "errors"

var (
	// ErrLoginFailed covers unknown users and wrong passwords alike.
	ErrLoginFailed = errors.New("login failed")
	// ErrUnauthenticated means no valid session.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the session lacks admin rights; the session has been cleared.
	ErrForbidden = errors.New("forbidden")
	// ErrUserExists is returned when creating a duplicate user.
	ErrUserExists = errors.New("user already exists")
)
