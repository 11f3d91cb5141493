package client

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/naveenspark/marquee/pkg/tokenstore"
)

// DefaultTimeout bounds a single HTTP round trip.
const DefaultTimeout = 10 * time.Second

// Client is the movie-rating API client. It reads the bearer token from a
// token store on every request and refreshes it when the backend rejects
// it.
type Client struct {
	baseURL    string
	store      tokenstore.Store
	httpClient *http.Client
	limiter    *rate.Limiter
	log        zerolog.Logger

	refreshes singleflight.Group

	mu           sync.Mutex
	onInvalidate func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
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

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l.With().Str("component", "client").Logger() }
}

// WithRateLimit caps outbound requests at rps per second. A non-positive
// rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// New creates an API client rooted at baseURL, e.g.
// "http://localhost:8000/api".
func New(baseURL string, store tokenstore.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string { return c.baseURL }

// OnInvalidate registers fn to run after a failed refresh has cleared the
// stored tokens. It replaces any earlier hook.
func (c *Client) OnInvalidate(fn func()) {
	c.mu.Lock()
	c.onInvalidate = fn
	c.mu.Unlock()
}

func (c *Client) invalidated() {
	c.mu.Lock()
	fn := c.onInvalidate
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}
