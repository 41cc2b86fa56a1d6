package client

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

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTimeout bounds every API call unless WithHTTPClient overrides it.
const DefaultTimeout = 30 * time.Second

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 1 << 20

// Client is the booking API client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokenFn    func() string
	log        *zap.Logger

	mu          sync.RWMutex
	defaultAuth string
}

// Option configures a Client.
type Option func(*Client)

// WithTokenSource installs the outgoing-request hook. It is called before
// every request; a non-empty result is sent as the bearer token and wins over
// the default header set by SetAuthToken.
func WithTokenSource(fn func() string) Option {
	return func(c *Client) { c.tokenFn = fn }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a client rooted at baseURL, e.g. "http://localhost:8000/api/".
func New(baseURL string, opts ...Option) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// MediaURL resolves an image reference from the API against the server
// root. Absolute URLs are returned unchanged.
func (c *Client) MediaURL(ref string) string {
	if ref == "" {
		return ""
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}

// SetAuthToken sets the default Authorization header used when the token
// source has nothing. An empty token removes it.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token == "" {
		c.defaultAuth = ""
		return
	}
	c.defaultAuth = "Bearer " + token
}

func (c *Client) authHeader() string {
	if c.tokenFn != nil {
		if tok := c.tokenFn(); tok != "" {
			return "Bearer " + tok
		}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defaultAuth
}

// Get issues a GET and decodes the JSON response into out (if non-nil).
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// Post issues a JSON POST.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

// Patch issues a JSON PATCH.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPatch, path, body, out)
}

// PostMultipart issues a multipart/form-data POST.
func (c *Client) PostMultipart(ctx context.Context, path string, form *Form, out any) error {
	return c.doForm(ctx, http.MethodPost, path, form, out)
}

// PatchMultipart issues a multipart/form-data PATCH.
func (c *Client) PatchMultipart(ctx context.Context, path string, form *Form, out any) error {
	return c.doForm(ctx, http.MethodPatch, path, form, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	contentType := ""
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.doRequest(ctx, method, path, reqBody, contentType, out)
}

func (c *Client) doForm(ctx context.Context, method, path string, form *Form, out any) error {
	body, contentType, err := form.encode()
	if err != nil {
		return fmt.Errorf("encode form: %w", err)
	}
	return c.doRequest(ctx, method, path, body, contentType, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+strings.TrimPrefix(path, "/"), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if auth := c.authHeader(); auth != "" {
		req.Header.Set("Authorization", auth)
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("api request failed",
			zap.String("method", method), zap.String("path", path),
			zap.String("request_id", reqID), zap.Error(err))
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	c.log.Debug("api request",
		zap.String("method", method), zap.String("path", path),
		zap.Int("status", resp.StatusCode), zap.String("request_id", reqID),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		return newHTTPError(resp.StatusCode, respBody)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
