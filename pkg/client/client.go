// Package client provides the Horizon HTTP client: a cookie-holding session
// with request metrics and error classification.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"path"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/publicsuffix"
)

// Prometheus metrics for Horizon client operations.
var (
	horizonRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "horizon_requests_total",
		Help: "Total Horizon requests by endpoint and status",
	}, []string{"endpoint", "status"})

	horizonRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "horizon_request_duration_seconds",
		Help:    "Horizon request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"endpoint"})

	horizonErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "horizon_errors_total",
		Help: "Total Horizon errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of HTTP errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// Client is a single Horizon session. Each instance owns its cookie jar, so
// one Client must never be shared between tenants.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// User-Agent header sent with every request.
	UserAgent string

	// Timeout per request. Zero disables the timeout.
	Timeout time.Duration
}

// DefaultConfig returns a default configuration.
func DefaultConfig(userAgent string) Config {
	return Config{
		UserAgent: userAgent,
		Timeout:   60 * time.Second,
	}
}

// New creates a new client with an empty cookie jar.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0 (got %s)", cfg.Timeout)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	logger := log.With().Str("component", "horizon-client").Logger()

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
		},
		config: cfg,
		logger: logger,
	}, nil
}

// Do performs an HTTP request. Responses with status >= 400 are returned as
// *HorizonError with the body already closed.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	endpoint := path.Base(req.URL.Path)

	startTime := time.Now()
	defer func() {
		horizonRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/xml, text/xml, */*")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("url", req.URL.String()).
		Msg("Executing Horizon request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errClass := c.classifyError(nil, err)
		horizonErrorsTotal.WithLabelValues(string(errClass)).Inc()
		horizonRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		return nil, &HorizonError{
			ErrorClass: errClass,
			Message:    "request failed",
			Err:        err,
		}
	}

	horizonRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode >= 400 {
		errClass := c.classifyError(resp, nil)
		horizonErrorsTotal.WithLabelValues(string(errClass)).Inc()
		resp.Body.Close()

		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Horizon request error")

		return nil, &HorizonError{
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    resp.Status,
		}
	}

	return resp, nil
}

// classifyError categorizes an error for observability and handling.
func (c *Client) classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil {
		return ErrorClassNetwork
	}

	switch {
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return ErrorClassClient
	case resp.StatusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// Get fetches an absolute URL and returns the response body.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &HorizonError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Message:    "read body",
			Err:        err,
		}
	}
	return body, nil
}

// Login requests a login URL so the server sets the session cookie. The
// response body is discarded.
func (c *Client) Login(ctx context.Context, url string) error {
	if _, err := c.Get(ctx, url); err != nil {
		return fmt.Errorf("%w: %w", ErrAuthenticationFailure, err)
	}
	c.logger.Debug().Str("url", url).Msg("Guest session established")
	return nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
