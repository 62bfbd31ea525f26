// ============================================================================
// Dolmetscher - Voice Translation Terminal Client
// ============================================================================
//
// Package:     translation
// Description: HTTP client for the remote translation service
// Author:      Mike Stoffels
// Created:     2026-10-16
// License:     MIT
// ============================================================================

package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/msto63/dolmetscher/pkg/core/cache"
	"github.com/msto63/dolmetscher/pkg/core/logging"
	"github.com/msto63/dolmetscher/pkg/core/version"
)

// Failure is returned for every unsuccessful call: transport errors,
// non-2xx answers and bodies carrying an "error" field.
type Failure struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (f *Failure) Error() string {
	switch {
	case f.StatusCode != 0:
		return fmt.Sprintf("%s: server returned %d: %s", f.Op, f.StatusCode, f.Message)
	case f.Err != nil:
		return fmt.Sprintf("%s: %v", f.Op, f.Err)
	default:
		return fmt.Sprintf("%s: %s", f.Op, f.Message)
	}
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Config holds client configuration
type Config struct {
	BaseURL string
	// Timeout of 0 keeps the net/http default of no deadline
	Timeout time.Duration
}

// DefaultConfig returns default client configuration
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:5000",
	}
}

// Client talks to the translation service. It is safe for concurrent use.
// Only detection results are cached; translations always reach the
// service so history and stats stay complete.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
	detections *cache.Cache[Detection]
}

// NewClient creates a new translation client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultConfig().BaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logging.New("translation"),
		detections: cache.New[Detection](cache.DefaultConfig()),
	}
}

// WithLogger replaces the client's logger
func (c *Client) WithLogger(logger *logging.Logger) *Client {
	c.logger = logger
	return c
}

// BaseURL returns the service base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Translate issues exactly one POST /api/translate. There is no retry.
func (c *Client) Translate(ctx context.Context, req Request) (Result, error) {
	const op = "translate"

	var resp translateResponse
	if err := c.do(ctx, op, http.MethodPost, "/api/translate", req, &resp); err != nil {
		return Result{}, err
	}
	if resp.Error != "" {
		return Result{}, &Failure{Op: op, Message: resp.Error}
	}

	result := resp.Result
	if resp.Pronunciation != nil {
		result.Pronunciation = *resp.Pronunciation
	}
	return result, nil
}

// Languages fetches the code -> name list in service order
func (c *Client) Languages(ctx context.Context) (Languages, error) {
	var langs Languages
	if err := c.do(ctx, "languages", http.MethodGet, "/api/languages", nil, &langs); err != nil {
		return nil, err
	}
	return langs, nil
}

// History fetches the most recent translations
func (c *Client) History(ctx context.Context) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	if err := c.do(ctx, "history", http.MethodGet, "/api/history", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Stats fetches aggregate usage statistics
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	if err := c.do(ctx, "stats", http.MethodGet, "/api/stats", nil, &stats); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// Detect asks the service for the language of text. Answers are cached
// per text for ten minutes, for up to 256 texts; failures are not cached.
func (c *Client) Detect(ctx context.Context, text string) (Detection, error) {
	const op = "detect"

	key := cache.Key(op, text)
	if det, ok := c.detections.Get(key); ok {
		c.logger.Debug("Detection cache hit", "language", det.Language)
		return det, nil
	}

	var resp struct {
		Detection
		Error string `json:"error"`
	}
	body := map[string]string{"text": text}
	if err := c.do(ctx, op, http.MethodPost, "/api/detect", body, &resp); err != nil {
		return Detection{}, err
	}
	if resp.Error != "" {
		return Detection{}, &Failure{Op: op, Message: resp.Error}
	}
	c.detections.Set(key, resp.Detection)
	return resp.Detection, nil
}

// do performs one JSON round trip and decodes the answer into out
func (c *Client) do(ctx context.Context, op, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &Failure{Op: op, Err: fmt.Errorf("failed to marshal request: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Failure{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("X-Request-ID", requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Request failed", "op", op, "request_id", requestID, "error", err)
		return &Failure{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Failure{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("Request completed",
		"op", op,
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Failure{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &Failure{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// errorMessage extracts {"error": "..."} from a failed response
func errorMessage(data []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(data))
}
