package instacrawl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

func followingLinkLocator(username string) string {
	return fmt.Sprintf(`//a[@href='/%s/following/'][@role='link']`, username)
}

func followersLinkLocator(username string) string {
	return fmt.Sprintf(`//a[@href='/%s/followers/'][@role='link']`, username)
}

const hashtagsTabLocator = `//span[text()='Hashtags']`

// followingHashtagsURL builds the GraphQL GET the web client fires when the
// hashtags tab of the following dialog opens. The variables payload is
// compact JSON, query-escaped, with doc_id first.
func (c *Client) followingHashtagsURL(userID string) string {
	variables, _ := json.Marshal(map[string]string{"id": userID})
	query := url.Values{
		"doc_id":    {c.cfg.FollowingHashtagsDocID},
		"variables": {string(variables)},
	}
	return fmt.Sprintf("%s/graphql/query/?%s", c.cfg.BaseURL, query.Encode())
}

// CollectUserInfo returns the full profile of the given user. The count of
// followed hashtags needs an extra dialog interaction and is only reachable
// on public accounts; on private ones it stays zero.
func (c *Client) CollectUserInfo(ctx context.Context, username string) (UserInfo, error) {
	c.browser.ClearExchanges()
	if err := c.browser.Navigate(ctx, fmt.Sprintf("%s/%s/", c.cfg.BaseURL, username)); err != nil {
		return UserInfo{}, err
	}

	var pool []*Exchange
	user, err := c.fetchUserData(ctx, &pool, username)
	if err != nil {
		return UserInfo{}, err
	}

	info := UserInfo{
		UserProfile:    extractUserProfile(user),
		FollowerCount:  user.Get("edge_followed_by.count").Int(),
		FollowingCount: user.Get("edge_follow.count").Int(),
		PostCount:      user.Get("edge_owner_to_timeline_media.count").Int(),
		Biography:      user.Get("biography").String(),
	}

	if !user.Get("is_private").Bool() {
		count, err := c.fetchFollowingHashtagCount(ctx, username, extractID(user))
		if err != nil {
			return UserInfo{}, err
		}
		info.FollowingTagCount = count
	}

	if err := validateRecord(info); err != nil {
		return UserInfo{}, err
	}
	return info, nil
}

// fetchFollowingHashtagCount opens the following dialog, switches to the
// hashtags tab and reads the count from the captured GraphQL response. A
// missing response degrades to zero; the dialog markup shifts often enough
// that this must not sink the whole profile collection.
func (c *Client) fetchFollowingHashtagCount(ctx context.Context, username, userID string) (int64, error) {
	c.browser.ClearExchanges()

	if err := c.browser.Click(ctx, followingLinkLocator(username)); err != nil {
		return 0, err
	}
	if err := c.browser.Click(ctx, hashtagsTabLocator); err != nil {
		return 0, err
	}

	var pool []*Exchange
	ex, err := c.awaitMatch(ctx, &pool, MatchCriteria{
		URL:         c.followingHashtagsURL(userID),
		ContentType: jsonContentType,
	})
	if err != nil {
		return 0, err
	}
	if ex == nil {
		c.log.Warn().Str("username", username).Msg("following hashtag count not found")
		return 0, nil
	}
	data, err := decodeJSON(ex)
	if err != nil {
		return 0, err
	}
	return data.Get("data.user.edge_following_hashtag.count").Int(), nil
}
