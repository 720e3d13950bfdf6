package instacrawl

import (
	"context"
	"fmt"
)

// CollectFollowingHashtagsOfUser collects up to n hashtags the given user
// follows. The list arrives in one response; there is no pagination on this
// dialog tab.
func (c *Client) CollectFollowingHashtagsOfUser(ctx context.Context, username string, n int) (HashtagBasicInfos, error) {
	empty := HashtagBasicInfos{Hashtags: []HashtagBasicInfo{}, Count: 0}

	if _, err := newPaginator(n); err != nil {
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
	if user.Get("is_private").Bool() {
		c.log.Warn().Str("username", username).Msg("account is private")
		return empty, nil
	}
	userID := extractID(user)

	c.browser.ClearExchanges()
	pool = nil
	if err := c.browser.Click(ctx, followingLinkLocator(username)); err != nil {
		return empty, err
	}
	if err := c.browser.Click(ctx, hashtagsTabLocator); err != nil {
		return empty, err
	}

	ex, err := c.awaitMatch(ctx, &pool, MatchCriteria{
		URL:         c.followingHashtagsURL(userID),
		ContentType: jsonContentType,
	})
	if err != nil {
		return empty, err
	}
	if ex == nil {
		c.log.Warn().Str("username", username).Msg("no following hashtags found")
		return empty, nil
	}
	data, err := decodeJSON(ex)
	if err != nil {
		return empty, err
	}

	hashtags := []HashtagBasicInfo{}
	for _, edge := range data.Get("data.user.edge_following_hashtag.edges").Array() {
		hashtags = append(hashtags, extractHashtagBasicInfo(edge.Get("node")))
	}
	hashtags = clipTo(hashtags, n)

	result := HashtagBasicInfos{Hashtags: hashtags, Count: len(hashtags)}
	if err := validateRecord(result); err != nil {
		return empty, err
	}
	return result, nil
}

// CollectTopPostsOfHashtag returns the hashtag page: its metadata plus the
// posts embedded in the explore grid sections.
func (c *Client) CollectTopPostsOfHashtag(ctx context.Context, hashtag string) (Hashtag, error) {
	c.browser.ClearExchanges()
	if err := c.browser.Navigate(ctx, fmt.Sprintf("%s/explore/tags/%s", c.cfg.BaseURL, hashtag)); err != nil {
		return Hashtag{}, err
	}

	var pool []*Exchange
	target := fmt.Sprintf("%s/%s/tags/web_info/?tag_name=%s", c.cfg.BaseURL, apiVersion, hashtag)
	ex, err := c.awaitMatch(ctx, &pool, MatchCriteria{URL: target, ContentType: jsonContentType})
	if err != nil {
		return Hashtag{}, err
	}
	if ex == nil {
		if len(pool) == 0 {
			return Hashtag{}, fmt.Errorf("%w: %q", ErrHashtagNotFound, hashtag)
		}
		c.log.Warn().Str("hashtag", hashtag).Msg("no data found for hashtag")
		return Hashtag{HashtagBasicInfo: HashtagBasicInfo{Name: hashtag}}, nil
	}
	root, err := decodeJSON(ex)
	if err != nil {
		return Hashtag{}, err
	}
	data := root.Get("data")

	// The grid is delivered as layout sections. The one_by_two_left layout
	// splits its medias between fill items and an embedded clips reel.
	posts := []Post{}
	for _, section := range data.Get("top.sections").Array() {
		items := section.Get("layout_content.medias").Array()
		if section.Get("layout_type").String() == "one_by_two_left" {
			items = section.Get("layout_content.fill_items").Array()
			items = append(items, section.Get("layout_content.one_by_two_item.clips.items").Array()...)
		}
		for _, item := range items {
			post, err := extractPost(item.Get("media"))
			if err != nil {
				return Hashtag{}, err
			}
			posts = append(posts, post)
		}
	}

	relatedTags := []string{}
	for _, tag := range data.Get("related_tags").Array() {
		relatedTags = append(relatedTags, tag.String())
	}

	return Hashtag{
		HashtagBasicInfo: extractHashtagBasicInfo(data),
		IsTrending:       data.Get("is_trending").Bool(),
		RelatedTags:      relatedTags,
		Subtitle:         data.Get("subtitle").String(),
		Posts:            posts,
	}, nil
}
