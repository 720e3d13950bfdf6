package instacrawl

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// ---------------------------------------------------------------------------
// Scripted browser fake
// ---------------------------------------------------------------------------

// fakeBrowser replays pre-scripted exchanges in reaction to UI actions, the
// way the real adapter would capture them from the network.
type fakeBrowser struct {
	mu         sync.Mutex
	buf        []*Exchange
	onNavigate map[string][]*Exchange
	onClick    map[string][]*Exchange
	onType     map[string][]*Exchange
	onScroll   [][]*Exchange
	scrollIdx  int
	attrs      map[string]string
	htmls      map[string][]string

	navs    []string
	clicks  []string
	scrolls []string
	typed   []string
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{
		onNavigate: map[string][]*Exchange{},
		onClick:    map[string][]*Exchange{},
		onType:     map[string][]*Exchange{},
		attrs:      map[string]string{},
		htmls:      map[string][]string{},
	}
}

func (f *fakeBrowser) capture(batch []*Exchange) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buf = append(f.buf, batch...)
}

func (f *fakeBrowser) Navigate(_ context.Context, url string) error {
	f.navs = append(f.navs, url)
	f.capture(f.onNavigate[url])
	return nil
}

func (f *fakeBrowser) Click(_ context.Context, locator string) error {
	f.clicks = append(f.clicks, locator)
	f.capture(f.onClick[locator])
	return nil
}

func (f *fakeBrowser) TypeText(_ context.Context, locator, text string) error {
	f.typed = append(f.typed, text)
	f.capture(f.onType[locator])
	return nil
}

func (f *fakeBrowser) ScrollIntoView(_ context.Context, locator string) error {
	f.scrolls = append(f.scrolls, locator)
	if f.scrollIdx < len(f.onScroll) {
		f.capture(f.onScroll[f.scrollIdx])
		f.scrollIdx++
	}
	return nil
}

func (f *fakeBrowser) WaitElement(context.Context, string, time.Duration) error { return nil }

func (f *fakeBrowser) ElementAttribute(_ context.Context, locator, name string) (string, error) {
	value, ok := f.attrs[locator+"\x00"+name]
	if !ok {
		return "", ErrElementNotFound
	}
	return value, nil
}

func (f *fakeBrowser) ElementsHTML(_ context.Context, locator string) ([]string, error) {
	return f.htmls[locator], nil
}

func (f *fakeBrowser) TakeExchanges() []*Exchange {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.buf
	f.buf = nil
	return out
}

func (f *fakeBrowser) ClearExchanges() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buf = nil
}

// ---------------------------------------------------------------------------
// Test fixtures
// ---------------------------------------------------------------------------

const testBase = "https://www.instagram.com"

func newTestClient(fb *fakeBrowser) *Client {
	cfg := DefaultConfig()
	cfg.WaitTimeout = 50 * time.Millisecond
	cfg.PollInterval = time.Millisecond
	return NewClient(fb, WithConfig(cfg), WithLogger(zerolog.Nop()))
}

// graphqlForm builds the form-encoded request body the web client sends to
// the GraphQL endpoints.
func graphqlForm(variables string) string {
	return url.Values{
		"av":        {DefaultConfig().AppVersionToken},
		"variables": {variables},
	}.Encode()
}

func webProfileExchange(username, id string, private bool) *Exchange {
	body := fmt.Sprintf(`{"data":{"user":{
		"pk":%s,"username":%q,"full_name":"Full Name","profile_pic_url":"https://pic",
		"is_private":%v,"is_verified":true,"biography":"bio",
		"edge_followed_by":{"count":10},"edge_follow":{"count":5},
		"edge_owner_to_timeline_media":{"count":3}}}}`, id, username, private)
	return jsonExchange(
		fmt.Sprintf("%s/api/v1/users/web_profile_info/?username=%s", testBase, username), body)
}

func photoNodes(start, count int) string {
	nodes := ""
	for i := start; i < start+count; i++ {
		if nodes != "" {
			nodes += ","
		}
		nodes += fmt.Sprintf(`{"node":{"pk":%d,"code":"C%d","media_type":1,
			"user":{"pk":9,"username":"alice"},
			"image_versions2":{"candidates":[{"url":"https://img/%d.jpg"}]}}}`, i, i, i)
	}
	return nodes
}

func connectionPage(dataKey, edges string, hasNext bool, cursor string) string {
	return fmt.Sprintf(`{"data":{%q:{"edges":[%s],"page_info":{"has_next_page":%v,"end_cursor":%q}}}}`,
		dataKey, edges, hasNext, cursor)
}

// ---------------------------------------------------------------------------
// awaitMatch
// ---------------------------------------------------------------------------

func TestAwaitMatchPopsAndTimesOut(t *testing.T) {
	t.Parallel()
	fb := newFakeBrowser()
	c := newTestClient(fb)
	fb.capture([]*Exchange{jsonExchange(testBase+"/x", `{"v":1}`)})

	var pool []*Exchange
	ex, err := c.awaitMatch(context.Background(), &pool, MatchCriteria{URL: testBase + "/x"})
	if err != nil || ex == nil {
		t.Fatalf("expected match, got %v, %v", ex, err)
	}

	// The matched exchange is gone; the same criteria now time out.
	again, err := c.awaitMatch(context.Background(), &pool, MatchCriteria{URL: testBase + "/x"})
	if err != nil {
		t.Fatalf("timeout is not an error: %v", err)
	}
	if again != nil {
		t.Fatal("an exchange must never match twice")
	}
}

func TestAwaitMatchHonorsContext(t *testing.T) {
	t.Parallel()
	fb := newFakeBrowser()
	c := newTestClient(fb)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var pool []*Exchange
	_, err := c.awaitMatch(ctx, &pool, MatchCriteria{URL: testBase + "/never"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// CollectUserInfo
// ---------------------------------------------------------------------------

func TestCollectUserInfo(t *testing.T) {
	t.Parallel()
	fb := newFakeBrowser()
	c := newTestClient(fb)

	fb.onNavigate[testBase+"/alice/"] = []*Exchange{webProfileExchange("alice", "9", false)}
	fb.onClick[hashtagsTabLocator] = []*Exchange{jsonExchange(
		c.followingHashtagsURL("9"),
		`{"data":{"user":{"edge_following_hashtag":{"count":7}}}}`)}

	info, err := c.CollectUserInfo(context.Background(), "alice")
	if err != nil {
		t.Fatalf("CollectUserInfo: %v", err)
	}
	if info.ID != "9" || info.Username != "alice" {
		t.Errorf("unexpected identity: %+v", info.UserProfile)
	}
	if info.FollowerCount != 10 || info.FollowingCount != 5 || info.PostCount != 3 {
		t.Errorf("unexpected counters: %+v", info)
	}
	if info.FollowingTagCount != 7 {
		t.Errorf("following tag count = %d, want 7", info.FollowingTagCount)
	}
	if len(fb.clicks) != 2 {
		t.Errorf("expected following link + hashtags tab clicks, got %v", fb.clicks)
	}
}

func TestCollectUserInfoPrivateSkipsHashtags(t *testing.T) {
	t.Parallel()
	fb := newFakeBrowser()
	c := newTestClient(fb)
	fb.onNavigate[testBase+"/alice/"] = []*Exchange{webProfileExchange("alice", "9", true)}

	info, err := c.CollectUserInfo(context.Background(), "alice")
	if err != nil {
		t.Fatalf("CollectUserInfo: %v", err)
	}
	if info.FollowingTagCount != 0 {
		t.Errorf("private account must report 0 followed hashtags, got %d", info.FollowingTagCount)
	}
	if len(fb.clicks) != 0 {
		t.Errorf("private account must not open the following dialog, clicked %v", fb.clicks)
	}
}

func TestCollectUserInfoNotFound(t *testing.T) {
	t.Parallel()
	fb := newFakeBrowser()
	c := newTestClient(fb)

	_, err := c.CollectUserInfo(context.Background(), "ghost")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
