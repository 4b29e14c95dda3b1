package decision

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

	"github.com/google/uuid"
	"github.com/xaenox/vfied-bot/internal/models"
	"go.uber.org/zap"
)

// ErrUnavailable is the only failure FetchDecisions reports. Transport
// errors, bad statuses and malformed bodies all unwrap to it.
var ErrUnavailable = errors.New("decision unavailable")

const (
	DefaultPath    = "/api/decide"
	DefaultTimeout = 15 * time.Second

	maxResponseBytes = 1 << 20
)

type Result struct {
	Decisions    []models.Candidate
	MoodAnalysis *models.MoodAnalysis
}

type response struct {
	Success      bool                 `json:"success"`
	Decisions    *[]models.Candidate  `json:"decisions"`
	MoodAnalysis *models.MoodAnalysis `json:"mood_analysis,omitempty"`
}

type Client struct {
	http     *http.Client
	endpoint string
	logger   *zap.Logger
}

// NewClient posts decision requests to baseURL+path. A nil httpClient gets
// one with DefaultTimeout.
func NewClient(baseURL, path string, httpClient *http.Client, logger *zap.Logger) *Client {
	if path == "" {
		path = DefaultPath
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		http:     httpClient,
		endpoint: strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/"),
		logger:   logger,
	}
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnavailable, fmt.Sprintf(format, args...))
}

// FetchDecisions performs one request. It never retries.
func (c *Client) FetchDecisions(ctx context.Context, req models.DecisionRequest) (Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Result{}, unavailable("encode request: %v", err)
	}

	requestID := uuid.New().String()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, unavailable("build request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("Decision request failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		return Result{}, unavailable("transport: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Decision endpoint returned an error status",
			zap.String("request_id", requestID),
			zap.Int("status", resp.StatusCode))
		return Result{}, unavailable("status %d", resp.StatusCode)
	}

	var parsed response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&parsed); err != nil {
		c.logger.Warn("Failed to parse decision response",
			zap.String("request_id", requestID),
			zap.Error(err))
		return Result{}, unavailable("decode: %v", err)
	}

	if !parsed.Success || parsed.Decisions == nil || len(*parsed.Decisions) == 0 {
		c.logger.Warn("Decision response missing required fields",
			zap.String("request_id", requestID),
			zap.Bool("success", parsed.Success),
			zap.Bool("has_decisions", parsed.Decisions != nil))
		return Result{}, unavailable("response without decisions")
	}

	return Result{
		Decisions:    *parsed.Decisions,
		MoodAnalysis: parsed.MoodAnalysis,
	}, nil
}
