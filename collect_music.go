package instacrawl

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
)

// CollectPostsByMusicID collects up to n posts using the given audio track,
// plus the track's own metadata from the audio page. The clips feed speaks
// the more_available/max_id protocol with the continuation token in the
// request form body.
func (c *Client) CollectPostsByMusicID(ctx context.Context, musicID string, n int) (MusicPosts, error) {
	empty := MusicPosts{Posts: []Post{}, Music: Music{MusicBasicInfo: MusicBasicInfo{ID: musicID}}, Count: 0}

	pag, err := newPaginator(n)
	if err != nil {
		return empty, err
	}

	c.browser.ClearExchanges()
	if err := c.browser.Navigate(ctx, fmt.Sprintf("%s/reels/audio/%s/", c.cfg.BaseURL, musicID)); err != nil {
		return empty, err
	}

	var pool []*Exchange
	criteria := MatchCriteria{
		URL:         fmt.Sprintf("%s/%s/clips/music/", c.cfg.BaseURL, apiVersion),
		ContentType: jsonContentType,
		Predicate: func(body []byte) bool {
			form := formValues(body)
			return form.Get("max_id") == pag.cursor() &&
				form.Get("audio_cluster_id") == musicID
		},
	}

	// The first page carries the track metadata alongside the items.
	var firstPage gjson.Result

	pag.beginFirstFetch()
	for {
		ex, err := c.awaitMatch(ctx, &pool, criteria)
		if err != nil {
			return empty, err
		}
		if ex == nil {
			if len(pool) == 0 && len(pag.pages) == 0 {
				return empty, fmt.Errorf("%w: %q", ErrMusicNotFound, musicID)
			}
			pag.recordMiss()
			break
		}
		data, err := decodeJSON(ex)
		if err != nil {
			return empty, err
		}
		if len(pag.pages) == 0 {
			firstPage = data
		}
		pag.recordPage(parseFeedPage(data))

		if !pag.continueFetching() {
			break
		}
		pag.beginLoadMore()
		if err := c.browser.ScrollIntoView(ctx, footerLocator); err != nil {
			return empty, err
		}
	}

	if pag.empty() {
		c.log.Warn().Str("music_id", musicID).Msg("no posts found for music")
		return empty, nil
	}

	posts := []Post{}
	for _, item := range pag.items() {
		post, err := extractPost(item.Get("media"))
		if err != nil {
			return empty, err
		}
		posts = append(posts, post)
	}
	posts = clipTo(posts, n)

	metadata := firstPage.Get("metadata")
	var basic *MusicBasicInfo
	if mi := metadata.Get("music_info"); mi.Exists() && mi.Type != gjson.Null {
		basic = extractLicensedMusic(mi)
	} else {
		basic = extractOriginalSound(metadata.Get("original_sound_info"))
	}
	music := Music{
		MusicBasicInfo: *basic,
		ClipsCount:     firstPage.Get("media_count.clips_count").Int(),
		PhotosCount:    firstPage.Get("media_count.photos_count").Int(),
	}

	result := MusicPosts{Posts: posts, Music: music, Count: len(posts)}
	if err := validateRecord(result); err != nil {
		return empty, err
	}
	return result, nil
}
