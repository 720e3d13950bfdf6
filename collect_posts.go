package instacrawl

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
)

const footerLocator = `//footer`

// postQuery describes one paginated post surface: which profile tab to open,
// which captured endpoint carries the pages, where the connection lives in
// the response, and how to recognize the right request among look-alikes.
// All three surfaces share the GraphQL cursor protocol; they differ only in
// these parameters.
type postQuery struct {
	pagePath    string
	matchURL    string
	contentType string
	dataKey     string
	itemPath    string
	needsUserID bool
	privacyGate bool
	predicate   func(vars gjson.Result, userID, after string) bool
}

// hasFormToken checks the app version form field every GraphQL POST carries.
func (c *Client) hasFormToken(body []byte) bool {
	return formValues(body).Get("av") == c.cfg.AppVersionToken
}

func nonEmptyObject(v gjson.Result) bool {
	return v.IsObject() && len(v.Map()) > 0
}

// collectPostPages drives one post surface through the cursor state machine
// and returns the canonical result plus whether the surface produced no
// data at all (the tagged-posts fallback needs that distinction).
func (c *Client) collectPostPages(ctx context.Context, username string, n int, q postQuery) (Posts, bool, error) {
	empty := Posts{Posts: []Post{}, Count: 0}

	pag, err := newPaginator(n)
	if err != nil {
		return empty, false, err
	}

	c.browser.ClearExchanges()
	if err := c.browser.Navigate(ctx, c.cfg.BaseURL+q.pagePath); err != nil {
		return empty, false, err
	}

	var pool []*Exchange
	userID := ""
	if q.needsUserID {
		user, err := c.fetchUserData(ctx, &pool, username)
		if err != nil {
			return empty, false, err
		}
		userID = extractID(user)
		if q.privacyGate && user.Get("is_private").Bool() {
			c.log.Warn().Str("username", username).Msg("account is private")
			return empty, false, nil
		}
	}

	criteria := MatchCriteria{
		URL:         q.matchURL,
		ContentType: q.contentType,
		Predicate: func(body []byte) bool {
			if !c.hasFormToken(body) {
				return false
			}
			vars := variablesOf(body)
			if !nonEmptyObject(vars) {
				return false
			}
			return q.predicate(vars, userID, pag.cursor())
		},
	}

	pag.beginFirstFetch()
	for {
		ex, err := c.awaitMatch(ctx, &pool, criteria)
		if err != nil {
			return empty, false, err
		}
		if ex == nil {
			// Surfaces that skip the profile fetch still need to tell a
			// nonexistent user apart from an empty one: a page load that
			// produced no matching traffic at all means the former.
			if !q.needsUserID && len(pool) == 0 && len(pag.pages) == 0 {
				return empty, false, fmt.Errorf("%w: %q", ErrUserNotFound, username)
			}
			pag.recordMiss()
			break
		}
		data, err := decodeJSON(ex)
		if err != nil {
			return empty, false, err
		}
		pag.recordPage(parseCursorPage(data.Get("data." + q.dataKey)))

		if !pag.continueFetching() {
			break
		}
		pag.beginLoadMore()
		if err := c.browser.ScrollIntoView(ctx, footerLocator); err != nil {
			return empty, false, err
		}
	}

	if pag.empty() {
		c.log.Warn().Str("username", username).Str("surface", q.dataKey).Msg("no posts found")
		return empty, true, nil
	}

	posts := []Post{}
	for _, item := range pag.items() {
		post, err := extractPost(item.Get(q.itemPath))
		if err != nil {
			return empty, false, err
		}
		posts = append(posts, post)
	}
	posts = clipTo(posts, n)

	result := Posts{Posts: posts, Count: len(posts)}
	if err := validateRecord(result); err != nil {
		return empty, false, err
	}
	return result, false, nil
}

// CollectPostsOfUser collects up to n timeline posts of the given user, in
// profile order. n == 0 collects everything the account exposes.
func (c *Client) CollectPostsOfUser(ctx context.Context, username string, n int) (Posts, error) {
	posts, _, err := c.collectPostPages(ctx, username, n, postQuery{
		pagePath:    fmt.Sprintf("/%s/", username),
		matchURL:    c.cfg.BaseURL + "/api/graphql",
		contentType: jsonContentType,
		dataKey:     "xdt_api__v1__feed__user_timeline_graphql_connection",
		itemPath:    "node",
		predicate: func(vars gjson.Result, _ string, after string) bool {
			return vars.Get("username").String() == username &&
				vars.Get("after").String() == after
		},
	})
	return posts, err
}

// CollectReelsOfUser collects up to n reels of the given user.
func (c *Client) CollectReelsOfUser(ctx context.Context, username string, n int) (Posts, error) {
	posts, _, err := c.collectPostPages(ctx, username, n, postQuery{
		pagePath:    fmt.Sprintf("/%s/reels/", username),
		matchURL:    c.cfg.BaseURL + "/api/graphql",
		contentType: jsonContentType,
		dataKey:     "xdt_api__v1__clips__user__connection_v2",
		itemPath:    "node.media",
		needsUserID: true,
		privacyGate: true,
		predicate: func(vars gjson.Result, userID, after string) bool {
			return vars.Get("data.target_user_id").String() == userID &&
				vars.Get("after").String() == after
		},
	})
	return posts, err
}

// CollectTaggedPostsOfUser collects up to n posts the given user is tagged
// in. The web client serves this connection from two endpoints depending on
// rollout: api/graphql with a javascript content type first, then the older
// graphql/query JSON endpoint. The second is only consulted when the first
// yields nothing, and its failure never masks the first result.
func (c *Client) CollectTaggedPostsOfUser(ctx context.Context, username string, n int) (Posts, error) {
	query := postQuery{
		pagePath:    fmt.Sprintf("/%s/tagged/", username),
		matchURL:    c.cfg.BaseURL + "/api/graphql",
		contentType: javascriptContentType,
		dataKey:     "xdt_api__v1__usertags__user_id__feed_connection",
		itemPath:    "node",
		needsUserID: true,
		privacyGate: true,
		predicate: func(vars gjson.Result, userID, after string) bool {
			return vars.Get("user_id").String() == userID &&
				vars.Get("after").String() == after &&
				vars.Get("count").Exists()
		},
	}

	posts, noData, err := c.collectPostPages(ctx, username, n, query)
	if err != nil || !noData {
		return posts, err
	}

	query.matchURL = c.cfg.BaseURL + "/graphql/query"
	query.contentType = jsonContentType
	retried, _, err := c.collectPostPages(ctx, username, n, query)
	if err != nil {
		c.log.Warn().Err(err).Str("username", username).Msg("tagged posts fallback failed")
		return posts, nil
	}
	return retried, nil
}
