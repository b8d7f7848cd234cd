// Package medusa is a typed HTTP client for the commerce backend's Store and
// Admin APIs.
package medusa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
)

const publishableKeyHeader = "x-publishable-api-key"

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("medusa: %d %s", e.Status, e.Message)
}

// Unwrap maps backend statuses onto domain sentinels so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	}
	return nil
}

// Message extracts the backend message from err, or err.Error() for other errors.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

type tokenCtxKey struct{}

// WithToken attaches a customer bearer token to ctx for authenticated calls.
func WithToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenCtxKey{}, token)
}

func tokenFrom(ctx context.Context) string {
	v, _ := ctx.Value(tokenCtxKey{}).(string)
	return v
}

// Options configures a Client.
type Options struct {
	BaseURL        string
	PublishableKey string
	Timeout        time.Duration
	HTTPClient     *http.Client
	Logger         *zap.Logger
}

// Client talks to the Store API. It is safe for concurrent use.
type Client struct {
	t transport
}

// New builds a Store API client.
func New(opts Options) *Client {
	t := newTransport(opts)
	key := opts.PublishableKey
	t.authorize = func(ctx context.Context, req *http.Request) {
		req.Header.Set(publishableKeyHeader, key)
		if token := tokenFrom(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return &Client{t: t}
}

type transport struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	authorize  func(ctx context.Context, req *http.Request)
}

func newTransport(opts Options) transport {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return transport{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: hc,
		logger:     logging.OrNop(opts.Logger),
	}
}

func (t transport) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := t.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.authorize != nil {
		t.authorize(ctx, req)
	}

	start := time.Now()
	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.logger.Warn("medusa request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}
	t.logger.Debug("medusa request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

type errorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func decodeError(status int, raw []byte) error {
	apiErr := &APIError{Status: status}
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Type = body.Type
		apiErr.Message = body.Message
		if apiErr.Message == "" {
			apiErr.Message = body.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// Admin talks to the Admin API with a secret API key. It is only used by
// operational commands, never by request handlers.
type Admin struct {
	t transport
}

// NewAdmin builds an Admin API client authenticated with secretKey.
func NewAdmin(opts Options, secretKey string) *Admin {
	t := newTransport(opts)
	auth := "Basic " + base64.StdEncoding.EncodeToString([]byte(secretKey+":"))
	t.authorize = func(_ context.Context, req *http.Request) {
		req.Header.Set("Authorization", auth)
	}
	return &Admin{t: t}
}
