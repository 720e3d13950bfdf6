package instacrawl

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

const commentsDataKey = "xdt_api__v1__media__media_id__comments__connection"

// The comment list markup only offers generated utility classes to hold on
// to; this selects the last rendered comment chunk as the scroll target.
const commentListLocator = `(//div[@class="x78zum5 xdt5ytf x1iyjqo2"]/div[@class="x9f619 xjbqb8w x78zum5 x168nmei x13lgxp2 x5pf9jr xo71vjh x1uhb9sk x1plvlek xryxfnj x1c4vz4f x2lah0s xdt5ytf xqjyukv x1qjc9v5 x1oa3qoh x1nhvcw1"])[last()]`

// jsonObjectAfter finds the JSON object that follows the first occurrence
// of key in s, by matching braces outside of string literals.
func jsonObjectAfter(s, key string) (gjson.Result, bool) {
	idx := strings.Index(s, key)
	if idx < 0 {
		return gjson.Result{}, false
	}
	start := strings.IndexByte(s[idx:], '{')
	if start < 0 {
		return gjson.Result{}, false
	}
	start += idx

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				raw := s[start : i+1]
				if !gjson.Valid(raw) {
					return gjson.Result{}, false
				}
				return gjson.Parse(raw), true
			}
		}
	}
	return gjson.Result{}, false
}

// cachedCommentsPage looks for the first comments page that the server
// rendered straight into a script tag. When present it saves one network
// round and must yield the same records the live response would.
func (c *Client) cachedCommentsPage(ctx context.Context) (pageState, bool) {
	scripts, err := c.browser.ElementsHTML(ctx, `//script[@type="application/json"]`)
	if err != nil {
		return pageState{}, false
	}
	for _, script := range scripts {
		if !strings.Contains(script, commentsDataKey) {
			continue
		}
		if obj, ok := jsonObjectAfter(script, commentsDataKey); ok {
			return parseCursorPage(obj), true
		}
	}
	return pageState{}, false
}

// CollectCommentsOfPost collects up to n comments of the given post, newest
// first as the page serves them. The first page may come from the page's
// embedded cache instead of the network; later pages are always captured
// live.
func (c *Client) CollectCommentsOfPost(ctx context.Context, postCode string, n int) (Comments, error) {
	empty := Comments{Comments: []Comment{}, Count: 0}

	pag, err := newPaginator(n)
	if err != nil {
		return empty, err
	}

	c.browser.ClearExchanges()
	if err := c.browser.Navigate(ctx, fmt.Sprintf("%s/p/%s/", c.cfg.BaseURL, postCode)); err != nil {
		return empty, err
	}

	postID, err := c.postIDFromMeta(ctx)
	if err != nil {
		return empty, err
	}
	if postID == "" {
		c.log.Warn().Str("post_code", postCode).Msg("no post id found")
		return empty, nil
	}

	var pool []*Exchange
	criteria := MatchCriteria{
		URL:         c.cfg.BaseURL + "/graphql/query",
		ContentType: jsonContentType,
		Predicate: func(body []byte) bool {
			if !c.hasFormToken(body) {
				return false
			}
			vars := variablesOf(body)
			return nonEmptyObject(vars) && vars.Get("media_id").String() == postID
		},
	}

	pag.beginFirstFetch()
	if cached, ok := c.cachedCommentsPage(ctx); ok {
		pag.recordPage(cached)
	} else {
		ex, err := c.awaitMatch(ctx, &pool, criteria)
		if err != nil {
			return empty, err
		}
		if ex == nil {
			c.log.Warn().Str("post_code", postCode).Msg("no comments found")
			return empty, nil
		}
		data, err := decodeJSON(ex)
		if err != nil {
			return empty, err
		}
		pag.recordPage(parseCursorPage(data.Get("data." + commentsDataKey)))
	}

	for pag.continueFetching() {
		pag.beginLoadMore()
		if err := c.browser.ScrollIntoView(ctx, commentListLocator); err != nil {
			return empty, err
		}
		ex, err := c.awaitMatch(ctx, &pool, criteria)
		if err != nil {
			return empty, err
		}
		if ex == nil {
			pag.recordMiss()
			break
		}
		data, err := decodeJSON(ex)
		if err != nil {
			return empty, err
		}
		pag.recordPage(parseCursorPage(data.Get("data." + commentsDataKey)))
	}

	comments := []Comment{}
	for _, item := range pag.items() {
		comments = append(comments, extractComment(item.Get("node"), postID))
	}
	comments = clipTo(comments, n)

	result := Comments{Comments: comments, Count: len(comments)}
	if err := validateRecord(result); err != nil {
		return empty, err
	}
	return result, nil
}
