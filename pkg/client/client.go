// Package client provides the HTTP client for the Art Institute of Chicago
// artworks listing endpoint.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/artwork-table/pkg/artwork"
	"github.com/Sternrassler/artwork-table/pkg/logging"
	"github.com/Sternrassler/artwork-table/pkg/metrics"
)

// Prometheus metrics for listing requests.
var (
	articRequestsTotal = metrics.Factory.NewCounterVec(prometheus.CounterOpts{
		Name: "artic_requests_total",
		Help: "Total artworks listing requests by status",
	}, []string{"status"})

	articRequestDuration = metrics.Factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "artic_request_duration_seconds",
		Help:    "Artworks listing request duration in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	articErrorsTotal = metrics.Factory.NewCounterVec(prometheus.CounterOpts{
		Name: "artic_errors_total",
		Help: "Total failed artworks listing requests by error class",
	}, []string{"class"})
)

const (
	// DefaultBaseURL is the public artworks listing endpoint.
	DefaultBaseURL = "https://api.artic.edu/api/v1/artworks"

	// DefaultPageSize is the number of records requested per page.
	DefaultPageSize = 12
)

// Client fetches pages of artworks. It makes exactly one attempt per call:
// there is no retry, backoff or client-side timeout.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the listing endpoint; page and limit are added as query parameters.
	BaseURL string

	// UserAgent is sent with every request.
	UserAgent string

	// PageSize is the limit used when a caller does not override it.
	PageSize int
}

// DefaultConfig returns the configuration for the public API.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: userAgent,
		PageSize:  DefaultPageSize,
	}
}

// New creates a new listing client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("base url must be absolute (got %q)", cfg.BaseURL)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("page_size must be > 0 (got %d)", cfg.PageSize)
	}

	return &Client{
		httpClient: &http.Client{},
		baseURL:    base,
		config:     cfg,
		logger:     logging.NewLogger(logging.ComponentClient),
	}, nil
}

// PageSize returns the configured default page size.
func (c *Client) PageSize() int {
	return c.config.PageSize
}

// Do executes a request and returns the response when the status is 2xx.
// Any other outcome is returned as an *APIError and the body is closed.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	startTime := time.Now()
	defer func() {
		articRequestDuration.Observe(time.Since(startTime).Seconds())
	}()

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("url", req.URL.String()).
		Str("method", req.Method).
		Msg("Executing listing request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		articErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		articRequestsTotal.WithLabelValues("network_error").Inc()
		return nil, &APIError{
			ErrorClass: ErrorClassNetwork,
			Message:    "request failed",
			Err:        err,
		}
	}

	articRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		errClass := classifyStatus(resp.StatusCode)
		articErrorsTotal.WithLabelValues(string(errClass)).Inc()
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    resp.Status,
		}
	}

	return resp, nil
}

// FetchArtworks requests one page of artworks. A limit <= 0 uses the
// configured page size.
func (c *Client) FetchArtworks(ctx context.Context, page, limit int) (*artwork.Page, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPage, page)
	}
	if limit <= 0 {
		limit = c.config.PageSize
	}

	u := *c.baseURL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result artwork.Page
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		articErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassDecode,
			Message:    "invalid json body",
			Err:        err,
		}
	}

	c.logger.Debug().
		Int("page", page).
		Int("limit", limit).
		Int("records", len(result.Data)).
		Int("total", result.Pagination.Total).
		Msg("Fetched artworks page")

	return &result, nil
}

// GetArtworks is the best-effort form of FetchArtworks: any failure is
// logged and reported as a nil page, which callers treat as "no update".
func (c *Client) GetArtworks(ctx context.Context, page, limit int) *artwork.Page {
	result, err := c.FetchArtworks(ctx, page, limit)
	if err != nil {
		c.logger.Error().
			Err(err).
			Int("page", page).
			Str("error_class", string(ClassOf(err))).
			Msg("Error fetching data")
		return nil
	}
	return result
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
