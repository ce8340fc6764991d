package api

import (
	"errors"
	"net/http"

	service "github.com/okian/jobdb/internal/app"
	"github.com/okian/jobdb/internal/auth"
	"github.com/okian/jobdb/internal/domain/filter"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrInFlight   = errors.New("request in progress")
)

// LoginPath is where clients are sent after an authorization failure.
const LoginPath = "/login"

type apiError struct {
	status   int
	code     string
	message  string
	redirect string
}

// classify maps an error to a fixed public response. Backend error text is
// never exposed.
func classify(err error) apiError {
	switch {
	case errors.Is(err, auth.ErrLoginFailed):
		return apiError{http.StatusUnauthorized, "login_failed", "login failed", ""}
	case errors.Is(err, auth.ErrUnauthenticated):
		return apiError{http.StatusUnauthorized, "unauthorized", "login required", LoginPath}
	case errors.Is(err, auth.ErrForbidden):
		return apiError{http.StatusForbidden, "forbidden", "forbidden", LoginPath}
	case errors.Is(err, filter.ErrUnknownFilter):
		return apiError{http.StatusBadRequest, "unknown_filter", "unknown filter", ""}
	case errors.Is(err, service.ErrUnknownColumn):
		return apiError{http.StatusBadRequest, "bad_request", "unknown column", ""}
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidArgument):
		return apiError{http.StatusBadRequest, "bad_request", "bad request", ""}
	case errors.Is(err, service.ErrViewNotFound):
		return apiError{http.StatusNotFound, "not_found", "view not found", ""}
	case errors.Is(err, ErrInFlight):
		return apiError{http.StatusConflict, "conflict", "request in progress", ""}
	case errors.Is(err, service.ErrDataUnavailable):
		return apiError{http.StatusServiceUnavailable, "data_unavailable", "data unavailable", ""}
	case errors.Is(err, service.ErrNotStarted):
		return apiError{http.StatusServiceUnavailable, "unavailable", "service unavailable", ""}
	default:
		return apiError{http.StatusInternalServerError, "internal_error", "internal error", ""}
	}
}
