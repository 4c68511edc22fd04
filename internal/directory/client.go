// Package directory is a client for the hosted Hack Club directory API,
// used to prefill club details (location, description) from a join code so
// leaders don't retype what the directory already knows.
//
// The lookup is best-effort decoration: club creation works fine when the
// API key is missing or the service is down.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const requestTimeout = 10 * time.Second

// ClubInfo is the directory's record for a club.
type ClubInfo struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// Client calls the directory API. A nil *Client is valid and means "not
// configured" — every method returns ErrNotConfigured.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// ErrNotConfigured is returned when no API key was provided.
var ErrNotConfigured = fmt.Errorf("directory: client not configured")

// New creates a directory client. Returns nil when apiKey is empty so
// callers can keep a plain nil check instead of a feature flag.
func New(baseURL, apiKey string, logger *slog.Logger) *Client {
	if apiKey == "" {
		return nil
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger: logger,
	}
}

// LookupClub fetches the directory record for a join code. Returns
// ErrNotConfigured on a nil client. An unknown code is an error, not a
// nil record.
func (c *Client) LookupClub(ctx context.Context, code string) (*ClubInfo, error) {
	if c == nil {
		return nil, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	reqURL := fmt.Sprintf("%s/clubs/%s", c.baseURL, url.PathEscape(code))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("directory: building request: %w", err)
	}
	// Key goes in a header, never in the URL, so it can't leak into logs.
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory: looking up club %s: %w", code, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("directory: no club with code %s", code)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Warn("directory lookup failed",
			slog.String("code", code),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return nil, fmt.Errorf("directory: lookup returned status %d", resp.StatusCode)
	}

	var info ClubInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("directory: decoding lookup response: %w", err)
	}
	return &info, nil
}
