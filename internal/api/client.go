package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/courtline/courtline/internal/auth"
)

// DefaultTimeout bounds each venue call. It is deliberately shorter than
// the poll interval so one slow call cannot stack into the next cycle.
const DefaultTimeout = 2 * time.Second

// Client provides access to the venue REST API. All mutating and
// portfolio endpoints require a Signer; market-data endpoints work
// unsigned against the public API.
//
// The client does not retry: transient failures surface to the caller,
// which owns the retry policy (the cache keeps serving its previous
// snapshot, the trader skips the cycle).
type Client struct {
	baseURL    string
	signPath   string // path prefix of baseURL, part of every signed message
	signer     *auth.Signer
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a REST API client rooted at baseURL
// (e.g. "https://api.elections.kalshi.com/trade-api/v2").
func NewClient(baseURL string, signer *auth.Signer, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		signer:  signer,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(10), 10),
		logger:  slog.Default(),
	}

	if u, err := url.Parse(baseURL); err == nil {
		c.signPath = u.Path
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRateLimit caps outbound requests per second.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}
