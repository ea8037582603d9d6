package evalctl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/peereval/pkg/logger"
)

const maxResponseBody = 4 << 20

// HTTPClient calls the peer evaluation API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	log     logger.Logger
	verbose bool
}

// NewHTTPClient creates a client for cfg.BaseURL.
func NewHTTPClient(cfg *Config, log logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: cfg.Timeout},
		log:     log,
		verbose: cfg.Verbose,
	}
}

// Members lists the roster.
func (c *HTTPClient) Members(ctx context.Context) ([]Member, error) {
	var out []Member
	return out, c.do(ctx, http.MethodGet, "/members", nil, &out)
}

// Next asks who evaluator must score in week.
func (c *HTTPClient) Next(ctx context.Context, week int, evaluator string) (Assignment, error) {
	q := url.Values{}
	q.Set("week", strconv.Itoa(week))
	q.Set("evaluator", evaluator)
	var out Assignment
	return out, c.do(ctx, http.MethodGet, "/next?"+q.Encode(), nil, &out)
}

// Submit records a score for the evaluator's next target.
func (c *HTTPClient) Submit(ctx context.Context, e Evaluation) (Ack, error) {
	var out Ack
	return out, c.do(ctx, http.MethodPost, "/evaluations", e, &out)
}

// Averages lists the averages table.
func (c *HTTPClient) Averages(ctx context.Context) ([]Average, error) {
	var out []Average
	return out, c.do(ctx, http.MethodGet, "/averages", nil, &out)
}

// Average returns one member's row.
func (c *HTTPClient) Average(ctx context.Context, name string) (Average, error) {
	var out Average
	return out, c.do(ctx, http.MethodGet, "/averages/"+url.PathEscape(name), nil, &out)
}

// Refresh forces the service to reload its snapshot.
func (c *HTTPClient) Refresh(ctx context.Context) (SnapshotInfo, error) {
	var out SnapshotInfo
	return out, c.do(ctx, http.MethodPost, "/refresh", nil, &out)
}

// Snapshot reports the state of the served snapshot.
func (c *HTTPClient) Snapshot(ctx context.Context) (SnapshotInfo, error) {
	var out SnapshotInfo
	return out, c.do(ctx, http.MethodGet, "/snapshot", nil, &out)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrRequest, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrRequest, err)
	}
	if c.verbose {
		c.log.Info(ctx, "request",
			logger.String("method", method),
			logger.String("path", path),
			logger.Int("status", resp.StatusCode),
			logger.Duration("elapsed", time.Since(start)),
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Code == "" {
			apiErr.Code = "http_error"
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrRequest, path, err)
	}
	return nil
}
