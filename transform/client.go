package transform

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

	"go.uber.org/zap"
)

const maxResponseSize = 4 << 20

// Failure is a remote call that did not produce a result. Message is only
// set when the server sent one in its {error} body; it is meant for the user.
type Failure struct {
	Message string
	Status  int
	Timeout bool
	Err     error
}

func (f *Failure) Error() string {
	switch {
	case f.Message != "":
		return f.Message
	case f.Err != nil:
		return "transformation request failed: " + f.Err.Error()
	case f.Status != 0:
		return fmt.Sprintf("transformation request failed with status %d", f.Status)
	default:
		return "transformation request failed"
	}
}

func (f *Failure) Unwrap() error { return f.Err }

type errorBody struct {
	Error string `json:"error"`
}

type resultBody struct {
	Result json.RawMessage `json:"result"`
}

// Client performs one request/response cycle per call against the
// transformation endpoint. It does not retry, cache or deduplicate.
type Client struct {
	endpoint   string
	httpClient *http.Client
	header     http.Header
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.header.Add(key, value) }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient builds a client for an http(s) endpoint.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("endpoint %q must be an absolute http(s) url", endpoint)
	}
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{},
		header:     http.Header{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("transform")
	return c, nil
}

// Transform sends req and returns the raw result field. The shape of the
// result is not checked here. Every error returned is a *Failure.
func (c *Client) Transform(ctx context.Context, req Request) (json.RawMessage, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &Failure{Err: err}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Failure{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for k, vs := range c.header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		timeout := errors.Is(err, context.DeadlineExceeded)
		c.logger.Warn("transform request failed",
			zap.String("action", string(req.Action)), zap.Bool("timeout", timeout), zap.Error(err))
		return nil, &Failure{Timeout: timeout, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &Failure{Status: resp.StatusCode, Timeout: errors.Is(err, context.DeadlineExceeded), Err: err}
	}
	c.logger.Debug("transform response",
		zap.String("action", string(req.Action)),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		return nil, &Failure{Message: strings.TrimSpace(eb.Error), Status: resp.StatusCode}
	}

	var rb resultBody
	if err := json.Unmarshal(data, &rb); err != nil {
		return nil, &Failure{
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%w: invalid response body: %v", ErrMalformedResult, err),
		}
	}
	return rb.Result, nil
}
