package instacrawl

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// Client runs collections against one browser session. Each call owns its
// working exchange pool and pagination state, so a Client is safe to reuse
// sequentially but not to call concurrently (the underlying Browser's
// capture buffer is shared).
type Client struct {
	browser Browser
	cfg     Config
	log     zerolog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithConfig replaces the default protocol configuration.
func WithConfig(cfg Config) Option {
	return func(c *Client) { c.cfg = cfg }
}

// WithLogger replaces the default stderr logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient wraps a Browser in a collection client.
func NewClient(browser Browser, opts ...Option) *Client {
	c := &Client{
		browser: browser,
		cfg:     DefaultConfig(),
		log:     zerolog.New(os.Stderr).With().Timestamp().Str("component", "instacrawl").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// awaitMatch polls the capture buffer until an exchange satisfying the
// criteria appears, the wait budget runs out, or ctx is cancelled. Newly
// captured exchanges are folded into pool (filtered to the criteria's
// content type); a found exchange is popped from the pool so it can never
// match again. A nil exchange with nil error means no match — a normal
// outcome the caller maps to its own empty/degraded result.
//
// This poll replaces the fixed post-action sleeps a scraper would otherwise
// need: the core never proceeds until either a match or a timeout occurred.
func (c *Client) awaitMatch(ctx context.Context, pool *[]*Exchange, criteria MatchCriteria) (*Exchange, error) {
	deadline := time.Now().Add(c.cfg.WaitTimeout)
	for {
		*pool = append(*pool, filterExchanges(c.browser.TakeExchanges(), criteria.ContentType)...)
		if idx := findExchange(*pool, criteria); idx >= 0 {
			var ex *Exchange
			ex, *pool = popExchange(*pool, idx)
			return ex, nil
		}
		if time.Now().After(deadline) {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.cfg.PollInterval):
		}
	}
}

// fetchUserData locates the web_profile_info response produced by profile
// page navigation and returns its data.user object. An empty pool after the
// wait means navigation itself failed (wrong username, login wall) and is
// fatal, distinguished from found-but-empty outcomes downstream.
func (c *Client) fetchUserData(ctx context.Context, pool *[]*Exchange, username string) (gjson.Result, error) {
	target := fmt.Sprintf("%s/%s/users/web_profile_info/?username=%s", c.cfg.BaseURL, apiVersion, username)
	ex, err := c.awaitMatch(ctx, pool, MatchCriteria{URL: target, ContentType: jsonContentType})
	if err != nil {
		return gjson.Result{}, err
	}
	if ex == nil {
		return gjson.Result{}, fmt.Errorf("%w: %q", ErrUserNotFound, username)
	}
	data, err := decodeJSON(ex)
	if err != nil {
		return gjson.Result{}, err
	}
	user := data.Get("data.user")
	if !user.Exists() || user.Type == gjson.Null {
		return gjson.Result{}, fmt.Errorf("%w: %q", ErrUserNotFound, username)
	}
	return user, nil
}

// formValues parses a form-encoded request body. GraphQL calls ship their
// parameters this way, with the interesting bits JSON-encoded inside the
// "variables" field.
func formValues(body []byte) url.Values {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return url.Values{}
	}
	return values
}

// variablesOf extracts the decoded "variables" JSON from a form body.
func variablesOf(body []byte) gjson.Result {
	return gjson.Parse(formValues(body).Get("variables"))
}

// Close releases the underlying browser if it is closeable.
func (c *Client) Close() error {
	if closer, ok := c.browser.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
