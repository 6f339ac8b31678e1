package apiclient

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

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope used for API call spans.
const TracerName = "prodimport/apiclient"

// DefaultTimeout bounds a single API round trip.
const DefaultTimeout = 30 * time.Second

// Options configures a Client.
type Options struct {
	BaseURL    string        // e.g. http://localhost:8000/api
	Timeout    time.Duration // per request; ignored when HTTPClient is set
	UserAgent  string
	HTTPClient *http.Client
}

// Client talks to the remote product import API.
type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
	tracer    trace.Tracer
}

// NewClient creates a client for the API rooted at opts.BaseURL.
func NewClient(opts *Options) (*Client, error) {
	if opts == nil || opts.BaseURL == "" {
		return nil, errors.New("apiclient: base url is required")
	}
	base := strings.TrimRight(opts.BaseURL, "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("apiclient: invalid base url %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = "prodimport"
	}

	return &Client{
		baseURL:   base,
		http:      httpClient,
		userAgent: ua,
		tracer:    otel.Tracer(TracerName),
	}, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ping checks that the API answers a cheap listing call.
func (c *Client) Ping(ctx context.Context) error {
	q := url.Values{"page": []string{"1"}}
	return c.do(ctx, &request{method: http.MethodGet, path: "/products/", query: q}, nil)
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

func (c *Client) jsonRequest(method, path string, payload any) (*request, error) {
	req := &request{method: method, path: path}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		req.body = bytes.NewReader(data)
		req.contentType = "application/json"
	}
	return req, nil
}

// do sends the request and decodes a successful JSON body into out.
// Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, r *request, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "api "+r.method+" "+r.path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", r.method),
			attribute.String("url.path", r.path),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	target := c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: failed to read response: %w", r.method, r.path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(r.method, r.path, resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: malformed response: %w", r.method, r.path, err)
	}
	return nil
}

func escapeID(id string) string {
	return url.PathEscape(id)
}
