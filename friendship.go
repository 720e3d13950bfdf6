package instacrawl

import (
	"context"
	"fmt"
	"net/url"
)

// followsProbe reports whether owner's following list contains target. It
// types target into the following dialog's search box and reads the search
// subset the server returns. Private owners and missing responses degrade
// to false: absence of evidence is all this surface can offer.
func (c *Client) followsProbe(ctx context.Context, owner, target string) (bool, error) {
	c.browser.ClearExchanges()
	if err := c.browser.Navigate(ctx, fmt.Sprintf("%s/%s/", c.cfg.BaseURL, owner)); err != nil {
		return false, err
	}

	var pool []*Exchange
	user, err := c.fetchUserData(ctx, &pool, owner)
	if err != nil {
		return false, err
	}
	if user.Get("is_private").Bool() {
		c.log.Warn().Str("username", owner).Msg("account is private")
		return false, nil
	}
	userID := extractID(user)

	if err := c.browser.Click(ctx, followingLinkLocator(owner)); err != nil {
		return false, err
	}
	c.browser.ClearExchanges()
	pool = nil
	if err := c.browser.TypeText(ctx, searchInputLocator, target); err != nil {
		return false, err
	}

	query := url.Values{"query": {target}}
	targetURL := fmt.Sprintf("%s/%s/friendships/%s/following/?%s",
		c.cfg.BaseURL, apiVersion, userID, query.Encode())
	ex, err := c.awaitMatch(ctx, &pool, MatchCriteria{URL: targetURL, ContentType: jsonContentType})
	if err != nil {
		return false, err
	}
	if ex == nil {
		c.log.Warn().Str("username", owner).Str("target", target).Msg("following search response not found")
		return false, nil
	}
	data, err := decodeJSON(ex)
	if err != nil {
		return false, err
	}
	for _, item := range data.Get("users").Array() {
		if item.Get("username").String() == target {
			return true, nil
		}
	}
	return false, nil
}

// GetFriendshipStatus resolves who follows whom between two users by
// probing each one's following list for the other. The probes only see the
// server's search subset, so a negative answer is best effort.
func (c *Client) GetFriendshipStatus(ctx context.Context, username1, username2 string) (FriendshipStatus, error) {
	followedBy, err := c.followsProbe(ctx, username1, username2)
	if err != nil {
		return FriendshipStatus{}, err
	}
	following, err := c.followsProbe(ctx, username2, username1)
	if err != nil {
		return FriendshipStatus{}, err
	}
	return FriendshipStatus{Following: following, FollowedBy: followedBy}, nil
}
