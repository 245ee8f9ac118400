package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ikkim/udonggeum-storefront/pkg/logger"
)

// Observer receives one call per outbound request; status is 0 when no response arrived.
type Observer func(method string, status int, elapsed time.Duration)

// Config represents the configuration for the storefront API client
type Config struct {
	// BaseURL is the API root, e.g. https://api.example.com/api
	BaseURL string

	// Timeout bounds a whole request when HTTPClient is nil
	Timeout time.Duration

	HTTPClient *http.Client
	Observer   Observer
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base URL is required", ErrInvalidConfig)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("%w: base URL must be absolute", ErrInvalidConfig)
	}
	return nil
}

// Request describes one call against the storefront API.
type Request struct {
	Method string
	Path   string
	Query  url.Values

	// Token is forwarded as "Authorization: Bearer <token>" when set
	Token string

	// Cookie is forwarded verbatim as the Cookie header when set
	Cookie string

	// Body is JSON-encoded when non-nil
	Body interface{}
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client represents a storefront API client
type Client struct {
	config     Config
	httpClient *http.Client
}

// New creates a new client with the given configuration
func New(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
	}, nil
}

func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Do performs the request. Any non-2xx status is returned as a *StatusError
// together with the response so callers can still relay headers.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if r.Body != nil {
		reqBody, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(reqBody)
	}

	target := c.config.BaseURL + "/" + strings.TrimLeft(r.Path, "/")
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}
	if r.Cookie != "" {
		req.Header.Set("Cookie", r.Cookie)
	}

	logger.Debug("Upstream request", map[string]interface{}{
		"method":     method,
		"path":       r.Path,
		"with_token": r.Token != "",
	})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(method, 0, time.Since(start))
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, r.Path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	c.observe(method, resp.StatusCode, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s %s: %v", ErrUnavailable, method, r.Path, err)
	}

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &StatusError{
			Method:     method,
			Path:       r.Path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(respBody),
			Body:       respBody,
		}
	}

	return out, nil
}

// GetJSON fetches path and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, path, token string, query url.Values, out interface{}) error {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query, Token: token})
	if err != nil {
		return err
	}
	return decode(resp.Body, out)
}

// SendJSON performs a write and decodes the body into out when out is non-nil
// and the API returned one.
func (c *Client) SendJSON(ctx context.Context, method, path, token string, in, out interface{}) error {
	resp, err := c.Do(ctx, Request{Method: method, Path: path, Token: token, Body: in})
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	return decode(resp.Body, out)
}

// Ping checks GET /health.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/health"})
	return err
}

func (c *Client) observe(method string, status int, elapsed time.Duration) {
	if c.config.Observer != nil {
		c.config.Observer(method, status, elapsed)
	}
}

func decode(body []byte, out interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return nil
}
