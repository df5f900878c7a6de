// Package api is the HTTP client for the student record endpoint.
//
// The endpoint contract:
//
//	GET    /api/mahasiswa?search=&search_method=&sort_by=&order=&algo=  -> [Record]
//	POST   /api/mahasiswa          {Record}  -> Record | {"detail": ...}
//	PUT    /api/mahasiswa/{nim}    {Record}  -> Record | {"detail": ...}
//	DELETE /api/mahasiswa/{nim}              -> any
//
// Any non-2xx answer is a *StatusError. The client never retries.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mahasiswa-app/mhs/internal/types"
)

const (
	// DefaultBaseURL is where the record server listens by default.
	DefaultBaseURL = "http://127.0.0.1:8000"

	// DefaultPath is the record collection path.
	DefaultPath = "/api/mahasiswa"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Config holds client configuration.
type Config struct {
	// BaseURL is scheme://host[:port] of the record server.
	BaseURL string

	// Path is the collection path (default: /api/mahasiswa).
	Path string

	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration

	// HTTPClient overrides the underlying client (tests).
	HTTPClient *http.Client

	// Logger for request tracing (default: log.Default()).
	Logger *log.Logger
}

// DefaultConfig returns the defaults used when no configuration is given.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		Path:    DefaultPath,
		Logger:  log.Default(),
	}
}

// Client talks to the record endpoint.
type Client struct {
	mu      sync.RWMutex
	base    *url.URL
	path    string
	http    *http.Client
	timeout time.Duration
	logger  *log.Logger
}

// New creates a client from config. A nil config uses DefaultConfig().
func New(config *Config) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	path := config.Path
	if path == "" {
		path = DefaultPath
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	base, err := parseBase(baseURL)
	if err != nil {
		return nil, err
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		base:    base,
		path:    "/" + strings.Trim(path, "/"),
		http:    httpClient,
		timeout: config.Timeout,
		logger:  config.Logger,
	}, nil
}

func parseBase(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimRight(raw, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q: missing host", raw)
	}
	return u, nil
}

// SetBaseURL swaps the server address. Requests already in flight keep the
// old address.
func (c *Client) SetBaseURL(raw string) error {
	base, err := parseBase(raw)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.base = base
	c.mu.Unlock()
	return nil
}

// BaseURL returns the current server address.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.base.String()
}

// Endpoint returns the collection URL, or the record URL when nim is given.
func (c *Client) Endpoint(nim string) string {
	endpoint := c.BaseURL() + c.path
	if nim != "" {
		endpoint += "/" + url.PathEscape(nim)
	}
	return endpoint
}

// List fetches the records matching q. Empty query fields are not sent.
func (c *Client) List(ctx context.Context, q types.Query) ([]types.Record, error) {
	target := c.Endpoint("")
	if params := q.Values().Encode(); params != "" {
		target += "?" + params
	}

	var records []types.Record
	if err := c.do(ctx, http.MethodGet, target, nil, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []types.Record{}
	}
	return records, nil
}

// Create posts a new record.
func (c *Client) Create(ctx context.Context, rec types.Record) (*types.Record, error) {
	var out types.Record
	if err := c.do(ctx, http.MethodPost, c.Endpoint(""), rec, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the record identified by nim.
func (c *Client) Update(ctx context.Context, nim string, rec types.Record) (*types.Record, error) {
	var out types.Record
	if err := c.do(ctx, http.MethodPut, c.Endpoint(nim), rec, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the record identified by nim. The response body is ignored.
func (c *Client) Delete(ctx context.Context, nim string) error {
	return c.do(ctx, http.MethodDelete, c.Endpoint(nim), nil, nil)
}

// do sends one request. body, when non-nil, is sent as JSON; out, when
// non-nil, receives the decoded 2xx body.
func (c *Client) do(ctx context.Context, method, target string, body, out interface{}) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, target, err)
	}
	defer resp.Body.Close()

	c.logger.Printf("%s %s -> %d (%v)", method, target, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     method,
			URL:        target,
			StatusCode: resp.StatusCode,
			Detail:     parseDetail(data),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading %s %s: %v", ErrTransport, method, target, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrMalformed, method, target, err)
	}
	return nil
}
