// Package httpapi implements pipeline.Pipeline against the platform's HTTP
// import endpoint.
package httpapi

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
	"sync"
	"time"

	"github.com/designcoil/catalog-import/internal/importconfig"
	"github.com/designcoil/catalog-import/internal/pipeline"
)

// DefaultTimeout bounds every request except the import stream, which is
// bounded by its context only.
const DefaultTimeout = 60 * time.Second

// RunIDHeader carries the command's run ID to the platform.
const RunIDHeader = "X-Import-Run-ID"

var (
	// ErrNotConfigured is returned when ValidateSource runs before Configure.
	ErrNotConfigured = errors.New("pipeline not configured")

	// ErrNotValidated is returned when ImportSource or InvalidateIndex runs
	// before a validation session exists.
	ErrNotValidated = errors.New("no validated import session")
)

// APIError is a non-success response from the platform.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("platform request failed; status %d", e.Status)
}

// Client is an HTTP-backed pipeline.Pipeline. A Client drives a single
// validate/import session and is not reused across commands.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	runID      string
	logger     *slog.Logger

	mu           sync.Mutex
	bag          map[string]any
	session      string
	validatedIDs []int
	unique       bool
	counters     pipeline.Counters
	agg          *pipeline.Aggregation
	interceptors []pipeline.BatchInterceptor
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithRunID sets the run ID header value.
func WithRunID(runID string) Option {
	return func(c *Client) {
		c.runID = runID
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a Client for the platform endpoint, e.g. https://shop.example/api.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

var _ pipeline.Pipeline = (*Client)(nil)

// SetArea implements pipeline.Pipeline.
func (c *Client) SetArea(ctx context.Context, area string) error {
	err := c.doJSON(ctx, c.httpClient, "/import/area", areaRequest{Area: area}, nil)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
		return pipeline.ErrAreaAlreadySet
	}
	return err
}

// Configure implements pipeline.Pipeline.
func (c *Client) Configure(cfg importconfig.ImportConfiguration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bag = cfg.Bag()
	return nil
}

// ValidateSource implements pipeline.Pipeline.
func (c *Client) ValidateSource(ctx context.Context, src pipeline.Source) (bool, error) {
	c.mu.Lock()
	bag := c.bag
	c.mu.Unlock()
	if bag == nil {
		return false, ErrNotConfigured
	}

	var resp validateResponse
	if err := c.doJSON(ctx, c.httpClient, "/import/validate", validateRequest{Config: bag, Source: src}, &resp); err != nil {
		return false, err
	}

	c.mu.Lock()
	c.session = resp.Session
	c.validatedIDs = resp.ValidatedIDs
	c.unique = resp.UniqueBunches
	c.counters = resp.Counters
	c.agg = resp.Errors
	c.mu.Unlock()

	c.logger.Debug("source validated",
		"session", resp.Session,
		"result", resp.Result,
		"batches", len(resp.ValidatedIDs))

	return resp.Result, nil
}

// ImportSource implements pipeline.Pipeline. The platform streams one event
// per fetched bunch; each fetch passes through the registered interceptors.
func (c *Client) ImportSource(ctx context.Context) (bool, error) {
	c.mu.Lock()
	session := c.session
	unique := c.unique
	interceptors := append([]pipeline.BatchInterceptor(nil), c.interceptors...)
	c.mu.Unlock()
	if session == "" {
		return false, ErrNotValidated
	}

	// The stream may outlive the per-request timeout.
	streamClient := &http.Client{Transport: c.httpClient.Transport}

	resp, err := c.do(ctx, streamClient, "/import/run", sessionRequest{Session: session})
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	stream := &eventStream{dec: json.NewDecoder(resp.Body)}
	fetched, err := pipeline.Drain(ctx, pipeline.Chain(stream, interceptors...), unique)
	if err != nil {
		return false, err
	}

	done := stream.done
	c.mu.Lock()
	if done.Counters != nil {
		c.counters = *done.Counters
	}
	if done.Errors != nil {
		c.agg = done.Errors
	}
	c.mu.Unlock()

	c.logger.Debug("import stream finished", "batches", fetched, "result", done.Result)

	return done.Result, nil
}

// InvalidateIndex implements pipeline.Pipeline.
func (c *Client) InvalidateIndex(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.mu.Unlock()
	if session == "" {
		return ErrNotValidated
	}
	return c.doJSON(ctx, c.httpClient, "/import/invalidate-index", sessionRequest{Session: session}, nil)
}

// ErrorAggregator implements pipeline.Pipeline.
func (c *Client) ErrorAggregator() pipeline.ErrorAggregator {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.agg == nil {
		return &pipeline.Aggregation{}
	}
	return c.agg
}

// Counters implements pipeline.Pipeline.
func (c *Client) Counters() pipeline.Counters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters
}

// ValidatedIDs implements pipeline.Pipeline.
func (c *Client) ValidatedIDs() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validatedIDs
}

// InterceptBatches implements pipeline.Pipeline.
func (c *Client) InterceptBatches(interceptor pipeline.BatchInterceptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.interceptors = append(c.interceptors, interceptor)
}

func (c *Client) doJSON(ctx context.Context, hc *http.Client, path string, in, out any) error {
	resp, err := c.do(ctx, hc, path, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response; %w", err)
	}

	return nil
}

// do posts in as JSON and returns the response when the status is 2xx. The
// caller closes the body.
func (c *Client) do(ctx context.Context, hc *http.Client, path string, in any) (*http.Response, error) {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return nil, fmt.Errorf("failed to encode request; %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request; %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.runID != "" {
		req.Header.Set(RunIDHeader, c.runID)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to platform; %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		apiErr := &APIError{Status: resp.StatusCode}
		var errResp errorResponse
		if decodeErr := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&errResp); decodeErr == nil {
			apiErr.Message = errResp.Message
		}
		return nil, apiErr
	}

	return resp, nil
}
