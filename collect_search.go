package instacrawl

import (
	"context"
)

const (
	searchButtonLocator   = `//a[@href="#"][@role="link"]`
	searchInputLocator    = `//input[@aria-label="Search input"][@placeholder="Search"][@type="text"]`
	notPersonalistLocator = `//div[@aria-label="Not personalised"][@role="button"][@tabindex="0"]//span[text()="Not personalised"]`
)

// SearchWithKeyword runs the search box flow and returns the matched users,
// hashtags and places. With personalised false the non-personalised serp is
// requested instead, which only carries users and without ranking
// positions; they are numbered in arrival order.
func (c *Client) SearchWithKeyword(ctx context.Context, keyword string, personalised bool) (SearchingResult, error) {
	empty := SearchingResult{
		Hashtags:     []SearchingResultHashtag{},
		Users:        []SearchingResultUser{},
		Places:       []SearchingResultPlace{},
		Personalised: personalised,
	}

	c.browser.ClearExchanges()
	if err := c.browser.Navigate(ctx, c.cfg.BaseURL); err != nil {
		return empty, err
	}
	if err := c.browser.Click(ctx, searchButtonLocator); err != nil {
		return empty, err
	}

	c.browser.ClearExchanges()
	if err := c.browser.TypeText(ctx, searchInputLocator, keyword); err != nil {
		return empty, err
	}
	if !personalised {
		c.browser.ClearExchanges()
		if err := c.browser.Click(ctx, notPersonalistLocator); err != nil {
			return empty, err
		}
	}

	var pool []*Exchange
	ex, err := c.awaitMatch(ctx, &pool, MatchCriteria{
		URL:         c.cfg.BaseURL + "/api/graphql",
		ContentType: javascriptContentType,
		Predicate: func(body []byte) bool {
			vars := variablesOf(body)
			if !nonEmptyObject(vars) {
				return false
			}
			if personalised {
				return vars.Get("data.query").String() == keyword
			}
			return vars.Get("query").String() == keyword
		},
	})
	if err != nil {
		return empty, err
	}
	if ex == nil {
		c.log.Warn().Str("keyword", keyword).Msg("no search results found")
		return empty, nil
	}
	root, err := decodeJSON(ex)
	if err != nil {
		return empty, err
	}

	dataKey := "xdt_api__v1__fbsearch__topsearch_connection"
	if !personalised {
		dataKey = "xdt_api__v1__fbsearch__non_profiled_serp"
	}
	data := root.Get("data." + dataKey)

	result := empty
	if personalised {
		for _, entry := range data.Get("hashtags").Array() {
			result.Hashtags = append(result.Hashtags, SearchingResultHashtag{
				Position: entry.Get("position").Int(),
				Hashtag:  extractHashtagBasicInfo(entry.Get("hashtag")),
			})
		}
		for _, entry := range data.Get("places").Array() {
			result.Places = append(result.Places, SearchingResultPlace{
				Position: entry.Get("position").Int(),
				Place: Place{
					Location: LocationBasicInfo{
						ID:   extractID(entry.Get("place.location")),
						Name: entry.Get("place.location.name").String(),
					},
					Subtitle: entry.Get("place.subtitle").String(),
					Title:    entry.Get("place.title").String(),
				},
			})
		}
	}
	for i, entry := range data.Get("users").Array() {
		position := int64(i)
		profile := entry
		if personalised {
			position = entry.Get("position").Int()
			profile = entry.Get("user")
		}
		result.Users = append(result.Users, SearchingResultUser{
			Position: position,
			User:     extractUserProfile(profile),
		})
	}
	return result, nil
}
