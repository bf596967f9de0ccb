package pollws

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pollsearch/internal/domain/record"
	"github.com/kailas-cloud/pollsearch/internal/version"
)

// Request defaults of the poll web service.
const (
	DefaultSize        = 1000
	DefaultSearchOrder = 1 // most recent first; the widget reorders locally
	DefaultTimeout     = 10 * time.Second

	methodPath   = "/GetByQuestionId"
	maxErrorBody = 512
)

// Config holds the poll web service settings.
type Config struct {
	BaseURL     string
	APIKey      string
	Size        int
	SearchOrder int
	Timeout     time.Duration
	HTTPClient  *http.Client
	Logger      *zap.Logger
}

// Client fetches a poll question's full result set from the poll web service.
type Client struct {
	baseURL     string
	apiKey      string
	size        int
	searchOrder int
	http        *http.Client
	logger      *zap.Logger
}

// searchParams is the request body the service expects.
type searchParams struct {
	PollQuestionID string `json:"PollQuestionId"`
	SearchOrder    int    `json:"SearchOrder"`
	SearchTerm     string `json:"SearchTerm"`
	Size           int    `json:"Size"`
}

// searchResponse is the service payload, optionally wrapped in {"d": ...}.
type searchResponse struct {
	D             *searchResponse   `json:"d,omitempty"`
	SearchResults []json.RawMessage `json:"SearchResults"`
}

// NewClient creates a poll web service client.
func NewClient(cfg *Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base url is required")
	}
	c := &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		size:        cfg.Size,
		searchOrder: cfg.SearchOrder,
		http:        cfg.HTTPClient,
		logger:      cfg.Logger,
	}
	if c.size <= 0 {
		c.size = DefaultSize
	}
	if c.searchOrder == 0 {
		c.searchOrder = DefaultSearchOrder
	}
	if c.http == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c, nil
}

// Fetch implements resultcache.Source. The term is always empty: filtering
// happens locally over the complete set.
func (c *Client) Fetch(ctx context.Context, scope string) ([]record.Record, error) {
	body, err := json.Marshal(searchParams{
		PollQuestionID: scope,
		SearchOrder:    c.searchOrder,
		SearchTerm:     "",
		Size:           c.size,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+methodPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll service request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if payload.D != nil {
		payload = *payload.D
	}

	out := make([]record.Record, 0, len(payload.SearchResults))
	for i, raw := range payload.SearchResults {
		var rec record.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode result %d: %w", i, err)
		}
		out = append(out, rec)
	}

	c.logger.Debug("Fetched poll results",
		zap.String("scope", scope),
		zap.Int("records", len(out)),
		zap.Duration("took", time.Since(start)),
	)
	return out, nil
}

// Ping checks that the service answers at all; any HTTP response counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+methodPath, http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("poll service unreachable: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}

// StatusError is a non-200 reply from the poll service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("poll service status %d", e.Code)
	}
	return fmt.Sprintf("poll service status %d: %s", e.Code, e.Body)
}
