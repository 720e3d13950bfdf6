package instacrawl

import (
	"context"
	"fmt"
	"regexp"
)

var digitsPattern = regexp.MustCompile(`\d+`)

// postIDFromMeta digs the numeric media id out of the post page's app-link
// meta tag. It is the only place the page exposes the id the private API
// uses in its URLs.
func (c *Client) postIDFromMeta(ctx context.Context) (string, error) {
	content, err := c.browser.ElementAttribute(ctx, `//meta[@property='al:ios:url']`, "content")
	if err != nil {
		return "", err
	}
	return digitsPattern.FindString(content), nil
}

// CollectLikersOfPost collects up to n users who liked the given post.
// The likers dialog serves a single page; Instagram exposes at most about
// fifty likers to anyone but the post owner.
func (c *Client) CollectLikersOfPost(ctx context.Context, postCode string, n int) (Users, error) {
	empty := Users{Users: []UserProfile{}, Count: 0}

	if _, err := newPaginator(n); err != nil {
		return empty, err
	}

	c.browser.ClearExchanges()
	if err := c.browser.Navigate(ctx, fmt.Sprintf("%s/p/%s/", c.cfg.BaseURL, postCode)); err != nil {
		return empty, err
	}
	c.browser.ClearExchanges()

	postID, err := c.postIDFromMeta(ctx)
	if err != nil {
		return empty, err
	}
	if postID == "" {
		c.log.Warn().Str("post_code", postCode).Msg("no post id found")
		return empty, nil
	}

	likedByLocator := fmt.Sprintf(`//a[@href='/p/%s/liked_by/'][@role='link']`, postCode)
	if err := c.browser.Click(ctx, likedByLocator); err != nil {
		return empty, err
	}

	var pool []*Exchange
	target := fmt.Sprintf("%s/%s/media/%s/likers/", c.cfg.BaseURL, apiVersion, postID)
	ex, err := c.awaitMatch(ctx, &pool, MatchCriteria{URL: target, ContentType: jsonContentType})
	if err != nil {
		return empty, err
	}
	if ex == nil {
		c.log.Warn().Str("post_code", postCode).Msg("no likers found")
		return empty, nil
	}
	data, err := decodeJSON(ex)
	if err != nil {
		return empty, err
	}

	users := []UserProfile{}
	for _, item := range data.Get("users").Array() {
		users = append(users, extractUserProfile(item))
	}
	users = clipTo(users, n)

	result := Users{Users: users, Count: len(users)}
	if err := validateRecord(result); err != nil {
		return empty, err
	}
	return result, nil
}
