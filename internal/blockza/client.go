// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package blockza

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"

	internallog "github.com/tombee/blockza-mcp/internal/log"
)

const (
	// DefaultTimeout bounds every upstream request.
	DefaultTimeout = 10 * time.Second

	// DefaultBaseURL serves events, podcasts and the company directory.
	DefaultBaseURL = "https://blockza.io/api"

	// DefaultExpertsBaseURL serves experts and bookings.
	DefaultExpertsBaseURL = "https://experts.blockza.io/api"

	defaultUserAgent = "blockza-mcp"
	mediaTypeJSON    = "application/json"

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 10 * 1024 * 1024

	tracerName = "github.com/tombee/blockza-mcp/internal/blockza"
)

// Service names one of the upstream APIs.
type Service string

const (
	ServiceEvents    Service = "events"
	ServicePodcasts  Service = "podcasts"
	ServiceDirectory Service = "directory"
	ServiceExperts   Service = "experts"
	ServiceBookings  Service = "bookings"
)

// BaseURLs holds the base URL of each upstream service.
type BaseURLs struct {
	Events    string
	Podcasts  string
	Directory string
	Experts   string
	Bookings  string
}

// DefaultBaseURLs returns the production Blockza endpoints.
func DefaultBaseURLs() BaseURLs {
	return BaseURLs{
		Events:    DefaultBaseURL,
		Podcasts:  DefaultBaseURL,
		Directory: DefaultBaseURL,
		Experts:   DefaultExpertsBaseURL,
		Bookings:  DefaultExpertsBaseURL,
	}
}

func (b BaseURLs) get(s Service) string {
	switch s {
	case ServiceEvents:
		return b.Events
	case ServicePodcasts:
		return b.Podcasts
	case ServiceDirectory:
		return b.Directory
	case ServiceExperts:
		return b.Experts
	case ServiceBookings:
		return b.Bookings
	default:
		return ""
	}
}

// Option configures a Client.
type Option func(*Client) error

// WithBaseURLs overrides the upstream base URLs. Empty entries keep their
// current value. Every non-empty URL must be http or https.
func WithBaseURLs(urls BaseURLs) Option {
	return func(c *Client) error {
		for _, s := range []Service{ServiceEvents, ServicePodcasts, ServiceDirectory, ServiceExperts, ServiceBookings} {
			raw := urls.get(s)
			if raw == "" {
				continue
			}
			u, err := parseBaseURL(raw)
			if err != nil {
				return fmt.Errorf("%s base URL: %w", s, err)
			}
			c.baseURLs[s] = u
		}
		return nil
	}
}

// WithLogger sets the logger used to report upstream failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger != nil {
			c.logger = internallog.WithComponent(logger, "blockza")
		}
		return nil
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", d)
		}
		c.client.Timeout = d
		return nil
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		c.userAgent = ua
		return nil
	}
}

// WithRateLimit limits outbound requests to perSecond with the given burst.
// Zero disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) error {
		if perSecond <= 0 {
			c.limiter = nil
			return nil
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		return nil
	}
}

// WithClock sets the time source used for upcoming-event filtering.
func WithClock(now func() time.Time) Option {
	return func(c *Client) error {
		if now != nil {
			c.now = now
		}
		return nil
	}
}

// Client talks to the Blockza REST API.
type Client struct {
	client    *http.Client
	baseURLs  map[Service]*url.URL
	userAgent string
	logger    *slog.Logger
	limiter   *rate.Limiter
	now       func() time.Time
}

// NewClient returns a Blockza API client. If httpClient is nil a client with
// DefaultTimeout is used. A supplied client without a timeout gets one.
func NewClient(httpClient *http.Client, opts ...Option) (*Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{}
	} else {
		copied := *httpClient
		httpClient = &copied
	}
	if httpClient.Timeout == 0 {
		httpClient.Timeout = DefaultTimeout
	}

	c := &Client{
		client:    httpClient,
		baseURLs:  make(map[Service]*url.URL),
		userAgent: defaultUserAgent,
		logger:    internallog.WithComponent(slog.Default(), "blockza"),
		now:       time.Now,
	}

	if err := WithBaseURLs(DefaultBaseURLs())(c); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Now returns the client's current time.
func (c *Client) Now() time.Time {
	return c.now()
}

// BaseURL returns the base URL configured for s.
func (c *Client) BaseURL(s Service) string {
	if u, ok := c.baseURLs[s]; ok {
		return u.String()
	}
	return ""
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("must use http or https scheme, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing host in %q", raw)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u, nil
}

// buildURL joins the service base URL, path and encoded query options.
func (c *Client) buildURL(s Service, path string, opts any) (string, error) {
	base, ok := c.baseURLs[s]
	if !ok {
		return "", fmt.Errorf("no base URL for service %q", s)
	}
	u := *base
	u.Path = base.Path + "/" + strings.TrimPrefix(path, "/")
	return addOptions(u.String(), opts)
}

// addOptions adds the parameters in opts as URL query parameters to s.
// opts must be nil or a struct whose fields may contain "url" tags.
func addOptions(s string, opts any) (string, error) {
	if opts == nil {
		return s, nil
	}

	v, err := query.Values(opts)
	if err != nil {
		return s, err
	}

	u, err := url.Parse(s)
	if err != nil {
		return s, err
	}

	if q := v.Encode(); q != "" {
		if u.RawQuery != "" {
			u.RawQuery = u.RawQuery + "&" + q
		} else {
			u.RawQuery = q
		}
	}

	return u.String(), nil
}

// fetch performs one GET and returns the normalized records. endpoint is the
// low-cardinality label used for logs and metrics, e.g. "/experts/{id}".
// On failure it logs, and returns an empty non-nil slice and an *UpstreamError.
func (c *Client) fetch(ctx context.Context, s Service, endpoint, path string, opts any) ([]Record, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "blockza.fetch")
	defer span.End()
	span.SetAttributes(
		attribute.String("blockza.service", string(s)),
		attribute.String("blockza.endpoint", endpoint),
	)

	start := time.Now()
	records, err := c.do(ctx, s, endpoint, path, opts)
	elapsed := time.Since(start)

	if err != nil {
		upErr := err.(*UpstreamError)
		recordRequest(endpoint, string(upErr.Kind), elapsed.Seconds())
		span.RecordError(err)
		span.SetStatus(codes.Error, string(upErr.Kind))
		attrs := []any{
			"endpoint", endpoint,
			"kind", string(upErr.Kind),
			internallog.DurationKey, elapsed.Milliseconds(),
			internallog.Error(upErr.Cause),
		}
		if upErr.StatusCode != 0 {
			attrs = append(attrs, "status", upErr.StatusCode)
		}
		c.logger.Error("blockza request failed: "+upErr.Message, attrs...)
		return []Record{}, err
	}

	recordRequest(endpoint, "ok", elapsed.Seconds())
	recordRecords(endpoint, len(records))
	span.SetAttributes(attribute.Int("blockza.records", len(records)))
	span.SetStatus(codes.Ok, "")
	c.logger.Debug("blockza request completed",
		"endpoint", endpoint,
		"records", len(records),
		internallog.DurationKey, elapsed.Milliseconds(),
	)
	return records, nil
}

// do returns either records or an *UpstreamError.
func (c *Client) do(ctx context.Context, s Service, endpoint, path string, opts any) ([]Record, error) {
	u, err := c.buildURL(s, path, opts)
	if err != nil {
		return nil, &UpstreamError{Kind: KindInvalidRequest, Endpoint: endpoint, Message: err.Error(), Cause: err}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, classifyTransportError(ctx, endpoint, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &UpstreamError{Kind: KindInvalidRequest, Endpoint: endpoint, Message: err.Error(), Cause: err}
	}
	req.Header.Set("Accept", mediaTypeJSON)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, classifyTransportError(ctx, endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{
			Kind:       KindStatus,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Cause:      fmt.Errorf("unexpected status %d for GET %s", resp.StatusCode, req.URL.Path),
		}
	}

	records, err := decodeRecords(body)
	if err != nil {
		return nil, &UpstreamError{Kind: KindDecode, Endpoint: endpoint, Message: err.Error(), Cause: err}
	}
	return records, nil
}

// decodeRecords normalizes the response shapes the API uses into a list:
// a top-level array, {"data": [...]}, {"data": {...}} or a bare object. A bare
// object only counts as a record when it carries an identity; otherwise it is
// an envelope with nothing in it (e.g. {"success": true, "count": 0}).
func decodeRecords(body []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	switch trimmed[0] {
	case '[':
		var items []any
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("invalid JSON array: %w", err)
		}
		return objects(items), nil
	case '{':
		var obj map[string]any
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, fmt.Errorf("invalid JSON object: %w", err)
		}
		data, ok := obj["data"]
		if !ok {
			if Record(obj).ID("_id", "id") == "" {
				return []Record{}, nil
			}
			return []Record{Record(obj)}, nil
		}
		switch d := data.(type) {
		case []any:
			return objects(d), nil
		case map[string]any:
			return []Record{Record(d)}, nil
		case nil:
			return []Record{}, nil
		default:
			return nil, fmt.Errorf("unexpected type %T for data", data)
		}
	default:
		return nil, fmt.Errorf("response is neither a JSON array nor an object")
	}
}

// objects keeps the JSON objects in items.
func objects(items []any) []Record {
	out := make([]Record, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Record(m))
		}
	}
	return out
}
