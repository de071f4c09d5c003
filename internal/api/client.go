// Package api is the HTTP client for the storefront REST API.
//
// The client holds no credential of its own: every authenticated call takes
// the bearer credential as an explicit argument.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const (
	AuthorizationKey    = "Authorization"
	ContentType         = "Content-Type"
	ApplicationJSONType = "application/json"

	defaultTimeout = 10 * time.Second
)

// errServerFailure marks 5xx responses so the breaker counts them.
var errServerFailure = errors.New("server failure")

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	client  httpClient
	baseURL url.URL
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

// BreakerSettings configures the circuit breaker in front of the transport.
type BreakerSettings struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

type Option func(*Client)

// WithHTTPClient replaces the default otelhttp-instrumented client.
func WithHTTPClient(c httpClient) Option {
	return func(cl *Client) {
		cl.client = c
	}
}

func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

func WithBreaker(s BreakerSettings) Option {
	return func(cl *Client) {
		cl.breaker = newBreaker(s)
	}
}

// NewClient creates a client for the API rooted at baseURL
// (for example "http://localhost:8001/api").
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("url.Parse: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	c := &Client{
		client:  &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		baseURL: *u,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = newBreaker(BreakerSettings{})
	}
	return c, nil
}

func newBreaker(s BreakerSettings) *gobreaker.CircuitBreaker[*http.Response] {
	if s.MaxFailures == 0 {
		s.MaxFailures = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}

	return gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:    "storefront-api",
		Timeout: s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
}

type request struct {
	method string
	path   []string
	query  url.Values
	cred   domain.Credential
	body   any
}

// do sends r and decodes a 2xx JSON body into out (when out is not nil).
func (c *Client) do(ctx context.Context, r request, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL.JoinPath(r.path...)
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("json.Marshal: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u.String(), body)
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Accept", ApplicationJSONType)
	if r.body != nil {
		req.Header.Set(ContentType, ApplicationJSONType)
	}
	if !r.cred.IsZero() {
		req.Header.Set(AuthorizationKey, "Bearer "+r.cred.String())
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errServerFailure
		}
		return resp, nil
	})
	if err != nil && !errors.Is(err, errServerFailure) {
		return fmt.Errorf("%s %s: %w: %w", r.method, u.Path, ErrUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%s %s: %w", r.method, u.Path, errorFromResponse(resp))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", r.method, u.Path, err)
	}
	return nil
}
