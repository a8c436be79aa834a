// Package session is the authenticated API client. It owns the session's token
// pair, attaches the access token to every call and renews it with the
// refresh token when the API answers 401, with at most one refresh in flight.
package session

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-course-client/internal/metrics"
	"github.com/jrsteele09/go-course-client/tokens"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	requestIDHeader       = "X-Request-ID"
	defaultRefreshTimeout = 30 * time.Second

	RouteLogin   = "/auth/login"
	RouteRefresh = "/auth/refresh"
)

type Client struct {
	baseURL        string
	http           *http.Client
	repo           tokens.Repo
	log            zerolog.Logger
	metrics        *metrics.Metrics
	limiter        *rate.Limiter
	refreshTimeout time.Duration
	newRequestID   func() string

	// mu guards the in-memory pair and the refresh state below
	mu      sync.Mutex
	pair    tokens.Pair
	state   refreshState
	waiters []chan refreshResult
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.log = logger.With().Str("component", "session").Logger()
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithRateLimiter makes every API call wait for the limiter. The refresh call
// is not limited.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithRefreshTimeout bounds the shared refresh call. Zero or less keeps the default.
func WithRefreshTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.refreshTimeout = d
		}
	}
}

func WithRequestIDFunc(f func() string) Option {
	return func(c *Client) {
		c.newRequestID = f
	}
}

// New creates a client for the API rooted at baseURL. Call Init to load a
// persisted session.
func New(baseURL string, repo tokens.Repo, options ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("session.New: base URL is required")
	}
	if repo == nil {
		return nil, errors.New("session.New: token repo is required")
	}

	c := &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		repo:           repo,
		log:            zerolog.Nop(),
		refreshTimeout: defaultRefreshTimeout,
		newRequestID:   uuid.NewString,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c, nil
}

// Init reads the persisted token pair into the session. It is called once on
// start-up.
func (c *Client) Init(ctx context.Context) error {
	pair, err := c.repo.Get(ctx)
	if err != nil {
		return errors.Wrap(err, "Client.Init Get")
	}
	c.mu.Lock()
	c.pair = pair
	c.mu.Unlock()
	return nil
}

// Teardown ends the session, clearing the pair in memory and in the store.
func (c *Client) Teardown(ctx context.Context) error {
	c.mu.Lock()
	c.pair = tokens.Pair{}
	c.mu.Unlock()
	if err := c.repo.Clear(ctx); err != nil {
		return errors.Wrap(err, "Client.Teardown Clear")
	}
	return nil
}

// SetTokens replaces the session's pair and persists it.
func (c *Client) SetTokens(ctx context.Context, pair tokens.Pair) error {
	c.mu.Lock()
	c.pair = pair
	c.mu.Unlock()
	if err := c.repo.Set(ctx, pair); err != nil {
		return errors.Wrap(err, "Client.SetTokens Set")
	}
	return nil
}

// Tokens returns a copy of the current pair.
func (c *Client) Tokens() tokens.Pair {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pair
}

func (c *Client) Authenticated() bool {
	return c.Tokens().AccessToken != ""
}

// TokenSource exposes the session's current credential as an oauth2.TokenSource.
func (c *Client) TokenSource() oauth2.TokenSource {
	return tokenSource{c: c}
}

type tokenSource struct {
	c *Client
}

func (ts tokenSource) Token() (*oauth2.Token, error) {
	pair := ts.c.Tokens()
	if pair.AccessToken == "" {
		return nil, errors.New("session has no access token")
	}
	return pair.Token(), nil
}

// Login exchanges credentials for a token pair and starts the session. The
// login call is never retried through a refresh.
func (c *Client) Login(ctx context.Context, email, password string) (tokens.Pair, error) {
	p, err := c.prepare(Request{
		Method: http.MethodPost,
		Path:   RouteLogin,
		Body:   map[string]string{"email": email, "password": password},
	})
	if err != nil {
		return tokens.Pair{}, err
	}

	resp, err := c.send(ctx, p, "")
	if err != nil {
		return tokens.Pair{}, err
	}
	if err := c.checkStatus(p, resp); err != nil {
		return tokens.Pair{}, err
	}

	pair, err := tokens.ParseTokenResponse(resp.Body)
	if err != nil {
		return tokens.Pair{}, errors.Wrap(err, "Client.Login")
	}
	if err := c.SetTokens(ctx, pair); err != nil {
		return tokens.Pair{}, err
	}
	c.log.Debug().Bool("refreshable", pair.HasRefresh()).Msg("session started")
	return pair, nil
}

// Do performs an authenticated call. A first 401 is recovered by refreshing the
// access token and replaying the call once; a 401 on the replay is returned.
// Transport errors are returned as they come from the HTTP client.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	p, err := c.prepare(req)
	if err != nil {
		return nil, err
	}

	access := c.Tokens().AccessToken
	resp, err := c.send(ctx, p, access)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, c.checkStatus(p, resp)
	}

	// From here on the call counts as retried: the replay is the last attempt.
	newAccess, err := c.recoverAccess(ctx, access, newStatusError(p.method, p.path, resp.StatusCode, resp.Body))
	if err != nil {
		return nil, err
	}

	c.metrics.ObserveReplay()
	c.log.Debug().Str("method", p.method).Str("path", p.path).Str("request_id", p.requestID).Msg("replaying request with refreshed token")

	resp, err = c.send(ctx, p, newAccess)
	if err != nil {
		return nil, err
	}
	return resp, c.checkStatus(p, resp)
}

// DoJSON performs the call and decodes the JSON response into out.
func (c *Client) DoJSON(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.DoJSON(ctx, Request{Method: http.MethodGet, Path: path}, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.DoJSON(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.DoJSON(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.DoJSON(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

func (c *Client) send(ctx context.Context, p *prepared, access string) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	httpReq, err := p.httpRequest(ctx)
	if err != nil {
		return nil, err
	}
	if access != "" {
		(&oauth2.Token{AccessToken: access, TokenType: "Bearer"}).SetAuthHeader(httpReq)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.metrics.ObserveRequest(p.method, "error")
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.ObserveRequest(p.method, "error")
		return nil, err
	}
	c.metrics.ObserveRequest(p.method, statusClass(resp.StatusCode))

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func (c *Client) checkStatus(p *prepared, resp *Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return newStatusError(p.method, p.path, resp.StatusCode, resp.Body)
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
