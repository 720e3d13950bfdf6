package instacrawl

import (
	"errors"
	"fmt"
	"testing"

	"github.com/tidwall/gjson"
)

func page(count int, hasMore bool, cursor string) pageState {
	items := make([]gjson.Result, count)
	for i := range items {
		items[i] = gjson.Parse(fmt.Sprintf(`{"n":%d}`, i))
	}
	return pageState{items: items, hasMore: hasMore, cursor: cursor}
}

// ---------------------------------------------------------------------------
// Page parsers
// ---------------------------------------------------------------------------

func TestParseCursorPage(t *testing.T) {
	t.Parallel()
	ps := parseCursorPage(gjson.Parse(
		`{"edges":[{"node":{}},{"node":{}}],"page_info":{"has_next_page":true,"end_cursor":"abc"}}`))
	if len(ps.items) != 2 || !ps.hasMore || ps.cursor != "abc" {
		t.Errorf("unexpected page: %+v", ps)
	}
	last := parseCursorPage(gjson.Parse(
		`{"edges":[],"page_info":{"has_next_page":false,"end_cursor":""}}`))
	if len(last.items) != 0 || last.hasMore {
		t.Errorf("unexpected last page: %+v", last)
	}
}

func TestParseMaxIDPagePresenceIsTheSignal(t *testing.T) {
	t.Parallel()
	withNext := parseMaxIDPage(gjson.Parse(`{"users":[{"pk":1}],"next_max_id":"50"}`))
	if !withNext.hasMore || withNext.cursor != "50" {
		t.Errorf("expected continuation, got %+v", withNext)
	}
	withoutNext := parseMaxIDPage(gjson.Parse(`{"users":[{"pk":1}]}`))
	if withoutNext.hasMore {
		t.Errorf("expected terminal page, got %+v", withoutNext)
	}
}

func TestParseFeedPage(t *testing.T) {
	t.Parallel()
	ps := parseFeedPage(gjson.Parse(
		`{"items":[{"media":{}}],"paging_info":{"more_available":true,"max_id":"m1"}}`))
	if len(ps.items) != 1 || !ps.hasMore || ps.cursor != "m1" {
		t.Errorf("unexpected page: %+v", ps)
	}
}

// ---------------------------------------------------------------------------
// Budget machine
// ---------------------------------------------------------------------------

func TestNewPaginatorRejectsNegative(t *testing.T) {
	t.Parallel()
	if _, err := newPaginator(-1); !errors.Is(err, ErrInvalidCount) {
		t.Fatalf("expected ErrInvalidCount, got %v", err)
	}
	if _, err := newPaginator(0); err != nil {
		t.Fatalf("n=0 must be valid (collect all), got %v", err)
	}
}

func TestPaginatorBudgetStopsAfterEnough(t *testing.T) {
	t.Parallel()
	pag, err := newPaginator(20)
	if err != nil {
		t.Fatal(err)
	}
	pag.beginFirstFetch()
	pag.recordPage(page(12, true, "c1"))
	if !pag.continueFetching() {
		t.Fatal("expected to continue after 12 of 20")
	}
	if pag.cursor() != "c1" {
		t.Fatalf("cursor = %q, want c1", pag.cursor())
	}
	pag.beginLoadMore()
	pag.recordPage(page(12, true, "c2"))
	if pag.continueFetching() {
		t.Fatal("expected to stop after 24 >= 20, even with more pages available")
	}
	if got := len(pag.items()); got != 24 {
		t.Errorf("accumulated %d items, want 24 (truncation happens later)", got)
	}
}

func TestPaginatorUnboundedFollowsProtocol(t *testing.T) {
	t.Parallel()
	pag, _ := newPaginator(0)
	pag.beginFirstFetch()
	pag.recordPage(page(12, true, "c1"))
	pag.recordPage(page(12, true, "c2"))
	if !pag.continueFetching() {
		t.Fatal("n=0 must keep going while the protocol has more")
	}
	pag.recordPage(page(3, false, ""))
	if pag.continueFetching() {
		t.Fatal("expected stop when protocol says no more")
	}
	if got := len(pag.items()); got != 27 {
		t.Errorf("accumulated %d items, want 27", got)
	}
}

func TestPaginatorMiss(t *testing.T) {
	t.Parallel()
	first, _ := newPaginator(10)
	first.beginFirstFetch()
	first.recordMiss()
	if !first.empty() {
		t.Error("miss on first fetch must mean empty")
	}

	later, _ := newPaginator(0)
	later.beginFirstFetch()
	later.recordPage(page(5, true, "c1"))
	later.beginLoadMore()
	later.recordMiss()
	if later.empty() {
		t.Error("miss on a later page is truncation, not empty")
	}
	if got := len(later.items()); got != 5 {
		t.Errorf("expected the fetched 5 items kept, got %d", got)
	}
}

func TestPaginatorCursorBeforeFirstPage(t *testing.T) {
	t.Parallel()
	pag, _ := newPaginator(5)
	if pag.cursor() != "" {
		t.Errorf("cursor before first page = %q, want empty", pag.cursor())
	}
}

func TestClipTo(t *testing.T) {
	t.Parallel()
	list := []int{1, 2, 3, 4, 5}
	if got := clipTo(list, 3); len(got) != 3 || got[2] != 3 {
		t.Errorf("clipTo(5 items, 3) = %v", got)
	}
	if got := clipTo(list, 0); len(got) != 5 {
		t.Errorf("clipTo with n=0 must keep everything, got %v", got)
	}
	if got := clipTo(list, 9); len(got) != 5 {
		t.Errorf("clipTo beyond length must keep everything, got %v", got)
	}
}
