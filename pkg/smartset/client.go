// Package smartset is the client for the Wolf Smartset monitoring portal.
//
// A Client owns one account's token, one server-side session and the
// in-memory parameter catalog for a single run. All configuration happens
// at construction time; there is no package-level state.
package smartset

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/marcinmaslon/wolf-comm/internal/auth"
	"github.com/marcinmaslon/wolf-comm/internal/core"
	"github.com/marcinmaslon/wolf-comm/internal/syscache"
	"github.com/marcinmaslon/wolf-comm/internal/tokencache"
)

const (
	// DefaultBaseURL is the portal API origin.
	DefaultBaseURL = "https://www.wolf-smartset.com/api"

	// DefaultSessionRefreshInterval matches the portal web app, which pings
	// its session every minute regardless of token lifetime.
	DefaultSessionRefreshInterval = 60 * time.Second
)

// Authenticator produces a fresh token when the cache cannot.
type Authenticator interface {
	Login(ctx context.Context) (tokencache.Token, error)
}

type Client struct {
	username string

	baseURL    string
	httpClient *http.Client

	authenticator Authenticator
	cache         *tokencache.Cache

	// contextCache, when set, persists discovery results across restarts.
	contextCache *syscache.Cache

	refreshInterval time.Duration
	expertMode      bool

	// now is the clock; replaced in tests.
	now func() time.Time

	// mu guards token, session and params. The poll loop is sequential,
	// but write requests arriving over MQTT run on the broker client's
	// goroutine.
	mu      sync.Mutex
	token   *tokencache.Token
	session *session
	systems []core.System
	params  []core.Parameter
}

type Option func(*Client)

// WithBaseURL points the client at a different portal origin.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// WithTokenCachePath overrides the default ~/.wolf_comm_token_cache.json.
func WithTokenCachePath(path string) Option {
	return func(c *Client) {
		c.cache = tokencache.New(path)
	}
}

// WithSessionRefreshInterval overrides the 60s session staleness window.
// Deployments should align this with the upstream session TTL if Wolf ever
// documents one.
func WithSessionRefreshInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.refreshInterval = d
		}
	}
}

// WithSystemContextCache persists the system list and parameter catalog to
// path with a one-day expiry, so restarts within the window skip discovery.
// An empty path uses system_context_cache.json in the working directory.
func WithSystemContextCache(path string) Option {
	return func(c *Client) {
		c.contextCache = syscache.New(path)
	}
}

// WithExpertMode switches parameter discovery to the recursive extraction
// of every descriptor instead of the guided menu traversal.
func WithExpertMode(enabled bool) Option {
	return func(c *Client) {
		c.expertMode = enabled
	}
}

// WithAuthenticator replaces the default login flow.
func WithAuthenticator(a Authenticator) Option {
	return func(c *Client) {
		c.authenticator = a
	}
}

func New(username, password string, opts ...Option) *Client {
	c := &Client{
		username:        username,
		baseURL:         DefaultBaseURL,
		httpClient:      &http.Client{Timeout: 30 * time.Second},
		authenticator:   auth.New(username, password),
		cache:           tokencache.New(""),
		refreshInterval: DefaultSessionRefreshInterval,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
