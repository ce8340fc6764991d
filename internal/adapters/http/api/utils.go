package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "jobdb_session"

const maxBodyBytes = 1 << 20

// sessionToken reads a bearer token, falling back to the session cookie.
func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && err != io.EOF {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}
