package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient wraps http.Client with a base URL and session token.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	token   string
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}, baseURL: baseURL}
}

// do sends body as JSON and decodes a JSON response into out when non-nil.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < http.StatusMultipleChoices {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s: %w", path, err)
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	return resp.StatusCode, nil
}

func (c *HTTPClient) login(ctx context.Context, creds Credentials) error {
	var out struct {
		Token string `json:"token"`
	}
	status, err := c.do(ctx, http.MethodPost, "/login", map[string]string{
		"student_id": creds.StudentID,
		"password":   creds.Password,
	}, &out)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("login %s: status %d", creds.StudentID, status)
	}
	c.token = out.Token
	return nil
}

// expect turns a do result into an error unless the status is want.
func expect(want int) func(int, error) error {
	return func(status int, err error) error {
		if err != nil {
			return err
		}
		if status != want {
			return fmt.Errorf("unexpected status %d, want %d", status, want)
		}
		return nil
	}
}
