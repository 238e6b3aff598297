// Package apiclient talks JSON over HTTP to the pang backend.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const maxResponseBytes = 16 << 20

// TokenSource supplies the bearer token for authenticated requests.
type TokenSource interface {
	Get() (string, bool)
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithTimeout sets a whole-request timeout. Zero means none.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// Client wraps calls to one fixed base origin.
type Client struct {
	base      *url.URL
	http      *http.Client
	tokens    TokenSource
	timeout   time.Duration
	userAgent string
	validate  *validator.Validate
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("apiclient: parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("apiclient: base url %q must be absolute", baseURL)
	}
	c := &Client{
		base:      u,
		http:      http.DefaultClient,
		userAgent: "pang-client/1.0",
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the origin requests are sent to.
func (c *Client) BaseURL() string { return c.base.String() }

// RequestOption adjusts a single request.
type RequestOption func(*requestConfig)

type requestConfig struct {
	auth bool
}

// WithAuth attaches the session token as a bearer credential.
func WithAuth() RequestOption {
	return func(rc *requestConfig) { rc.auth = true }
}

// Post sends body as JSON to path and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body any, out any, opts ...RequestOption) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("apiclient: encode request: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(payload), out, opts)
}

// Get requests path, which may carry a query string, and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodGet, path, nil, out, opts)
}

// ResolveURL returns the absolute URL a request for path is sent to.
func (c *Client) ResolveURL(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
	u.RawQuery = ref.RawQuery
	return u.String(), nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any, opts []RequestOption) error {
	var rc requestConfig
	for _, opt := range opts {
		opt(&rc)
	}

	target, err := c.ResolveURL(path)
	if err != nil {
		return fmt.Errorf("apiclient: resolve %q: %w", path, err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("apiclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if rc.auth && c.tokens != nil {
		if token, ok := c.tokens.Get(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Debug("api request failed", "method", method, "path", path, "error", err)
		return newError(CodeNetworkFailure, "request failed", 0, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Debug("api response body close failed", "error", err)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return newError(CodeNetworkFailure, "read response body", resp.StatusCode, err)
	}

	slog.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"auth", rc.auth,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	return c.decode(raw, out)
}

func (c *Client) decode(raw []byte, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return newError(CodeMalformedResponse, "response is not the expected JSON shape", 0, err)
	}
	if err := c.validate.Struct(out); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return nil
		}
		return newError(CodeMalformedResponse, "response is missing required fields", 0, err)
	}
	return nil
}

type serverMessage struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Msg     string `json:"msg"`
}

func statusError(status int, raw []byte) error {
	msg := fmt.Sprintf("%d %s", status, http.StatusText(status))
	var sm serverMessage
	if err := json.Unmarshal(raw, &sm); err == nil {
		switch {
		case sm.Message != "":
			msg += ": " + sm.Message
		case sm.Error != "":
			msg += ": " + sm.Error
		case sm.Msg != "":
			msg += ": " + sm.Msg
		}
	} else if s := strings.TrimSpace(snippet(raw)); s != "" {
		msg += ": " + s
	}

	code := CodeServerFailure
	if status == http.StatusUnauthorized {
		code = CodeAuthFailure
	}
	return newError(code, msg, status, nil)
}
