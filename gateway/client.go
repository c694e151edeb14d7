package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-sales-client/internal/metrics"
	"github.com/jrsteele09/go-sales-client/token"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// AuthFailure describes a request the backend rejected with 401
type AuthFailure struct {
	Method    string
	Path      string
	RequestID string
}

// Client wraps every outbound request to the backend. It reads the bearer
// token from the token store but never writes to it; teardown on 401 is the
// job of whoever subscribes through OnAuthFailure.
type Client struct {
	baseURL string
	tokens  token.Reader
	base    http.RoundTripper
	timeout time.Duration
	logger  zerolog.Logger
	metrics *metrics.Metrics

	httpClient  *http.Client // bearer + 401 interception
	loginClient *http.Client // neither

	handlersMu      sync.RWMutex
	handlers        []handlerEntry
	nextHandlerID   int
	pendingHandlers []func(AuthFailure)
}

type handlerEntry struct {
	id int
	fn func(AuthFailure)
}

// NewClient creates a gateway client reading bearer tokens from tokens.
func NewClient(tokens token.Reader, opts ...Option) *Client {
	c := &Client{
		baseURL: "http://localhost:8000",
		tokens:  tokens,
		base:    http.DefaultTransport,
		timeout: 10 * time.Second,
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/")

	c.httpClient = &http.Client{
		Timeout: c.timeout,
		Transport: ChainTransport(c.base,
			requestIDTransport,
			bearerTransport(c.tokens, c.logger),
			c.authFailureTransport,
			loggingTransport(c.logger),
			metricsTransport(c.metrics),
		),
	}
	c.loginClient = &http.Client{
		Timeout: c.timeout,
		Transport: ChainTransport(c.base,
			requestIDTransport,
			loggingTransport(c.logger),
			metricsTransport(c.metrics),
		),
	}

	for _, fn := range c.pendingHandlers {
		c.OnAuthFailure(fn)
	}
	c.pendingHandlers = nil
	return c
}

// BaseURL returns the backend address requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// OnAuthFailure subscribes fn to 401 responses. Handlers run synchronously
// in subscription order before the failing call returns.
func (c *Client) OnAuthFailure(fn func(AuthFailure)) (unsubscribe func()) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()

	c.nextHandlerID++
	id := c.nextHandlerID
	c.handlers = append(c.handlers, handlerEntry{id: id, fn: fn})

	return func() {
		c.handlersMu.Lock()
		defer c.handlersMu.Unlock()
		for i, h := range c.handlers {
			if h.id == id {
				c.handlers = append(c.handlers[:i], c.handlers[i+1:]...)
				return
			}
		}
	}
}

func (c *Client) publishAuthFailure(f AuthFailure) {
	c.metrics.AuthFailure()
	c.logger.Warn().Str("method", f.Method).Str("path", f.Path).Str("request_id", f.RequestID).Msg("authorization failure")

	c.handlersMu.RLock()
	handlers := make([]func(AuthFailure), 0, len(c.handlers))
	for _, h := range c.handlers {
		handlers = append(handlers, h.fn)
	}
	c.handlersMu.RUnlock()

	if len(handlers) == 0 {
		c.logger.Warn().Msg("no auth failure subscribers; stored credential left in place")
	}
	for _, fn := range handlers {
		fn(f)
	}
}

// Get sends a GET with optional query parameters and decodes JSON into result
func (c *Client) Get(ctx context.Context, path string, query url.Values, result any) error {
	return c.doRequest(ctx, http.MethodGet, path, query, nil, result)
}

func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.doRequest(ctx, http.MethodPost, path, nil, body, result)
}

func (c *Client) Put(ctx context.Context, path string, body, result any) error {
	return c.doRequest(ctx, http.MethodPut, path, nil, body, result)
}

func (c *Client) Patch(ctx context.Context, path string, body, result any) error {
	return c.doRequest(ctx, http.MethodPatch, path, nil, body, result)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Download returns the raw response body, for file exports
func (c *Client) Download(ctx context.Context, path string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path, nil), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.send(c.httpClient, httpReq)
}

// doRequest performs a JSON request through the authenticated transport chain.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.url(path, query), bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		httpReq.Header.Set(headerContentType, contentTypeJSON)
	}

	respBody, err := c.send(c.httpClient, httpReq)
	if err != nil {
		return err
	}
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}
	return nil
}

func (c *Client) send(hc *http.Client, req *http.Request) ([]byte, error) {
	httpResp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, newAPIError(httpResp.StatusCode, respBody)
	}
	return respBody, nil
}

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}
