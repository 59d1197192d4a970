// Package answer provides an HTTP client for the remote question-answering service.
package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dohr-michael/devhelper/internal/events"
)

const (
	askPath    = "/ask"
	searchPath = "/search"
	healthPath = "/api/health"

	maxResponseBytes = 8 << 20
	maxErrorBody     = 512
)

var (
	errNotObject    = errors.New("response body is not a JSON object")
	errTrailingData = errors.New("response body has data after the JSON object")
)

// Client talks to the answer service over JSON/HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the service rooted at baseURL (e.g. http://localhost:8000).
// The default http.Client has no timeout; requests are bounded by their context only.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ask sends a question and returns the answer with its candidate sources.
func (c *Client) Ask(ctx context.Context, req Request) (*Response, error) {
	var resp Response
	if err := c.post(ctx, askPath, req, &resp); err != nil {
		return nil, err
	}
	if resp.Context == nil {
		resp.Context = []Source{}
	}
	return &resp, nil
}

// Search returns the raw retrieval hits for a question, without an answer.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	var resp SearchResponse
	if err := c.post(ctx, searchPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health probes the liveness route exposed by `devhelper serve`. Services
// without that route report a ProtocolError.
func (c *Client) Health(ctx context.Context) error {
	url := c.baseURL + healthPath

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &TransportError{URL: url, Err: err}
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ProtocolError{URL: url, StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	url := c.baseURL + path

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return &TransportError{URL: url, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Debug("answer service request failed",
			"url", url, "submission", events.SubmissionIDFromContext(ctx), "error", err)
		return &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("answer service responded",
		"url", url,
		"submission", events.SubmissionIDFromContext(ctx),
		"status", resp.StatusCode,
		"elapsed", time.Since(start).Truncate(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &ProtocolError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	dec := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes))
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return &ProtocolError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if err := dec.Decode(&json.RawMessage{}); err != io.EOF {
		return &ProtocolError{URL: url, StatusCode: resp.StatusCode, Err: errTrailingData}
	}
	if len(raw) == 0 || raw[0] != '{' {
		return &ProtocolError{URL: url, StatusCode: resp.StatusCode, Err: errNotObject}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ProtocolError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
