package importclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the records API on behalf of one member.
type Client struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewClient creates a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Login signs in and keeps the bearer token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrLogin, err)
	}
	var sess Session
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "application/json", bytes.NewReader(body), http.StatusOK, &sess); err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrLogin, err)
	}
	c.token = sess.Token
	return sess, nil
}

// Import uploads the bulk file in r.
func (c *Client) Import(ctx context.Context, r io.Reader) (Report, error) {
	var report Report
	if err := c.do(ctx, http.MethodPost, "/api/records/import", "text/plain; charset=utf-8", r, http.StatusOK, &report); err != nil {
		return Report{}, fmt.Errorf("%w: %w", ErrImport, err)
	}
	return report, nil
}

// Mine lists the member's stored results.
func (c *Client) Mine(ctx context.Context) ([]Record, error) {
	var rows []Record
	if err := c.do(ctx, http.MethodGet, "/api/records/mine", "", nil, http.StatusOK, &rows); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrList, err)
	}
	return rows, nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, want int, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != want {
		apiErr := &APIError{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(data, apiErr); jsonErr != nil || apiErr.Code == "" {
			apiErr.Code = "http_" + fmt.Sprint(resp.StatusCode)
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
