package instacrawl

import (
	"context"
	"fmt"
	"net/url"
)

const listProgressLocator = `//div[@class='_aano']//div[@role='progressbar']`

// userListQuery describes one friendships list: the dialog link that opens
// it and the query parameters of each page request. The continuation token
// travels in the URL itself (max_id), so every page has a distinct exact
// URL and no request-body predicate is needed.
type userListQuery struct {
	listKind  string
	openLink  func(username string) string
	pageQuery func(cursor string) url.Values
	endpoint  string
}

func (c *Client) userListURL(q userListQuery, userID, cursor string) string {
	return fmt.Sprintf("%s/%s/friendships/%s/%s/?%s",
		c.cfg.BaseURL, apiVersion, userID, q.endpoint, q.pageQuery(cursor).Encode())
}

// collectUserList drives one friendships list through the max-id state
// machine. Scrolling the dialog's progress sentinel into view is what makes
// the web client request the next page.
func (c *Client) collectUserList(ctx context.Context, username string, n int, q userListQuery) (Users, error) {
	empty := Users{Users: []UserProfile{}, Count: 0}

	pag, err := newPaginator(n)
	if err != nil {
		return empty, err
	}

	c.browser.ClearExchanges()
	if err := c.browser.Navigate(ctx, fmt.Sprintf("%s/%s/", c.cfg.BaseURL, username)); err != nil {
		return empty, err
	}

	var pool []*Exchange
	user, err := c.fetchUserData(ctx, &pool, username)
	if err != nil {
		return empty, err
	}
	userID := extractID(user)
	if user.Get("is_private").Bool() {
		c.log.Warn().Str("username", username).Msg("account is private")
		return empty, nil
	}

	if err := c.browser.Click(ctx, q.openLink(username)); err != nil {
		return empty, err
	}

	pag.beginFirstFetch()
	for {
		ex, err := c.awaitMatch(ctx, &pool, MatchCriteria{
			URL:         c.userListURL(q, userID, pag.cursor()),
			ContentType: jsonContentType,
		})
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
		pag.recordPage(parseMaxIDPage(data))

		if !pag.continueFetching() {
			break
		}
		pag.beginLoadMore()
		if err := c.browser.ScrollIntoView(ctx, listProgressLocator); err != nil {
			return empty, err
		}
	}

	if pag.empty() {
		c.log.Warn().Str("username", username).Str("list", q.listKind).Msg("no users found")
		return empty, nil
	}

	users := []UserProfile{}
	for _, item := range pag.items() {
		users = append(users, extractUserProfile(item))
	}
	users = clipTo(users, n)

	result := Users{Users: users, Count: len(users)}
	if err := validateRecord(result); err != nil {
		return empty, err
	}
	return result, nil
}

// CollectFollowersOfUser collects up to n followers of the given user.
// Instagram caps what non-owners can see of a limited follower list, so the
// result may fall short of n even on public accounts.
func (c *Client) CollectFollowersOfUser(ctx context.Context, username string, n int) (Users, error) {
	return c.collectUserList(ctx, username, n, userListQuery{
		listKind: "followers",
		openLink: followersLinkLocator,
		endpoint: "followers",
		pageQuery: func(cursor string) url.Values {
			values := url.Values{
				"count":          {"12"},
				"search_surface": {"follow_list_page"},
			}
			if cursor != "" {
				values.Set("max_id", cursor)
			}
			return values
		},
	})
}

// CollectFollowingsOfUser collects up to n accounts the given user follows.
func (c *Client) CollectFollowingsOfUser(ctx context.Context, username string, n int) (Users, error) {
	return c.collectUserList(ctx, username, n, userListQuery{
		listKind: "followings",
		openLink: followingLinkLocator,
		endpoint: "following",
		pageQuery: func(cursor string) url.Values {
			values := url.Values{"count": {"12"}}
			if cursor != "" {
				values.Set("max_id", cursor)
			}
			return values
		},
	})
}
