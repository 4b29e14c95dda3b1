// Package remote talks to the VFIED API for everything except decisions:
// static catalogs, venue search, auth and event submission.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ErrRejected means the API answered but refused the request; the message
// it gave is in the wrapping error.
var ErrRejected = errors.New("request rejected")

const maxBodyBytes = 4 << 20

type Paths struct {
	LocalItems  string `mapstructure:"local_items"`
	TravelItems string `mapstructure:"travel_items"`
	Events      string `mapstructure:"events"`
	VenueSearch string `mapstructure:"venue_search"`
	Login       string `mapstructure:"login"`
	Register    string `mapstructure:"register"`
	SubmitEvent string `mapstructure:"submit_event"`
}

func DefaultPaths() Paths {
	return Paths{
		LocalItems:  "/data/local_items.json",
		TravelItems: "/data/travel_items.json",
		Events:      "/api/events",
		VenueSearch: "/api/venues/search",
		Login:       "/api/auth/login",
		Register:    "/api/auth/register",
		SubmitEvent: "/api/events/submit",
	}
}

type Client struct {
	http     *http.Client
	baseURL  string
	paths    Paths
	validate *validator.Validate
	logger   *zap.Logger
}

func NewClient(baseURL string, paths Paths, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		http:     httpClient,
		baseURL:  strings.TrimRight(baseURL, "/"),
		paths:    paths,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// getJSON fetches path and decodes the body into dst
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dst any) error {
	target := c.url(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch %s: status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// send posts body and decodes the answer into dst. Non-2xx answers are
// decoded too when possible since the API explains rejections in the body.
func (c *Client) send(ctx context.Context, path, contentType string, body io.Reader, dst any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), body)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(dst); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return resp.StatusCode, fmt.Errorf("failed to post %s: status %d", path, resp.StatusCode)
		}
		return resp.StatusCode, fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return resp.StatusCode, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, dst any) (int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to encode request: %w", err)
	}
	return c.send(ctx, path, "application/json", bytes.NewReader(data), dst)
}

// rejection turns an API refusal into an ErrRejected error
func rejection(message, fallback string) error {
	if message == "" {
		message = fallback
	}
	return fmt.Errorf("%w: %s", ErrRejected, message)
}
