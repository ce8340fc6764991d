package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/jobdb/internal/auth"
	"github.com/okian/jobdb/internal/domain/dedupe"
	"github.com/okian/jobdb/pkg/metrics"
)

// HTTP status code constants.
const (
	statusBadRequest      = 400
	statusUnauthorized    = 401
	statusForbidden       = 403
	statusNotFound        = 404
	statusTooManyRequests = 429
	statusInternalError   = 500
)

// IdempotencyHeader names the client-chosen key for replay-safe mutations.
const IdempotencyHeader = "Idempotency-Key"

// ReplayHeader marks responses served from the idempotency cache.
const ReplayHeader = "Idempotent-Replay"

// sessionHandlerFunc is a handler that runs with a resolved session.
type sessionHandlerFunc func(w http.ResponseWriter, r *http.Request, sess auth.Session)

type authenticator interface {
	Authenticate(token string) (auth.Session, error)
	RequireAdmin(ctx context.Context, token string) (auth.Session, error)
}

// MetricsMiddleware wraps HTTP handlers to record Prometheus metrics.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		durationMs := float64(time.Since(start).Milliseconds())
		statusCodeStr := strconv.Itoa(wrapped.statusCode)

		metrics.RecordHTTPRequest(endpoint, r.Method, statusCodeStr)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, statusCodeStr, durationMs)

		if wrapped.statusCode >= statusBadRequest {
			metrics.RecordErrorByEndpoint(endpoint, r.Method, getErrorType(wrapped.statusCode))
		}
	}
}

// AuthMiddleware resolves the session token and rejects anonymous requests.
func AuthMiddleware(deps authenticator, next sessionHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := deps.Authenticate(sessionToken(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		next(w, r, sess)
	}
}

// AdminMiddleware admits admin sessions only. A signed-in non-admin is
// signed out and pointed back to the login page.
func AdminMiddleware(deps authenticator, next sessionHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		sess, err := deps.RequireAdmin(r.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrForbidden) {
				clearSessionCookie(w)
			}
			writeError(w, r, err)
			return
		}
		next(w, r, sess)
	}
}

type idempotencyStore interface {
	Claim(ctx context.Context, key string) (dedupe.Response, bool)
	Complete(ctx context.Context, key string, resp dedupe.Response)
	Release(ctx context.Context, key string)
}

// IdempotencyMiddleware replays the stored response of a repeated
// Idempotency-Key. Keys are scoped per actor. Responses with server errors
// are not stored so the client can retry.
func IdempotencyMiddleware(store idempotencyStore, next sessionHandlerFunc) sessionHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, sess auth.Session) {
		key := r.Header.Get(IdempotencyHeader)
		if key == "" || r.Method == http.MethodGet {
			next(w, r, sess)
			return
		}
		scoped := sess.Actor.ID + ":" + r.Method + ":" + r.URL.Path + ":" + key

		if prev, seen := store.Claim(r.Context(), scoped); seen {
			if prev.Pending() {
				writeError(w, r, ErrInFlight)
				return
			}
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.Header().Set(ReplayHeader, "true")
			w.WriteHeader(prev.Status)
			_, _ = w.Write(prev.Body)
			return
		}

		rec := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
		next(rec, r, sess)
		if rec.status >= statusInternalError {
			store.Release(r.Context(), scoped)
			return
		}
		store.Complete(r.Context(), scoped, dedupe.Response{Status: rec.status, Body: rec.body.Bytes()})
	}
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
}

// getErrorType returns a standardized error type based on HTTP status code.
func getErrorType(statusCode int) string {
	switch {
	case statusCode >= statusInternalError:
		return "server_error"
	case statusCode == statusTooManyRequests:
		return "rate_limit"
	case statusCode == statusNotFound:
		return "not_found"
	case statusCode == statusUnauthorized:
		return "unauthorized"
	case statusCode == statusForbidden:
		return "forbidden"
	case statusCode >= statusBadRequest:
		return "client_error"
	default:
		return "unknown"
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}

// recordingWriter tees the response so it can be replayed.
type recordingWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rw *recordingWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}
