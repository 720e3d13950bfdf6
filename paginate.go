package instacrawl

import "github.com/tidwall/gjson"

// The pagination driver is a small family of state machines, one per
// continuation protocol the web client speaks. "More pages available" is
// always derived from the protocol's own field, never from item counts —
// the three protocols disagree on everything else.

type driverState int

const (
	stateInit driverState = iota
	stateFetchingFirst
	stateFetchedPage
	stateLoadingMore
	stateDone
	stateEmpty
)

// pageState is one successfully fetched page: its raw items plus the
// protocol's continuation signal, normalized to a hasMore/cursor pair.
type pageState struct {
	items   []gjson.Result
	hasMore bool
	cursor  string
}

// parseCursorPage reads the GraphQL edge shape:
// {edges, page_info: {has_next_page, end_cursor}}.
func parseCursorPage(data gjson.Result) pageState {
	return pageState{
		items:   data.Get("edges").Array(),
		hasMore: data.Get("page_info.has_next_page").Bool(),
		cursor:  data.Get("page_info.end_cursor").String(),
	}
}

// parseMaxIDPage reads the friendships list shape: {users, next_max_id?}.
// Mere presence of next_max_id is the continuation signal.
func parseMaxIDPage(data gjson.Result) pageState {
	next := data.Get("next_max_id")
	return pageState{
		items:   data.Get("users").Array(),
		hasMore: next.Exists(),
		cursor:  next.String(),
	}
}

// parseFeedPage reads the clips feed shape:
// {items, paging_info: {more_available, max_id}}.
func parseFeedPage(data gjson.Result) pageState {
	return pageState{
		items:   data.Get("items").Array(),
		hasMore: data.Get("paging_info.more_available").Bool(),
		cursor:  data.Get("paging_info.max_id").String(),
	}
}

// paginator owns the accumulating page list of one collection call and
// decides when to stop. Budget semantics: n > 0 stops once at least n items
// are accumulated (the result is then truncated to exactly n, never
// mid-page); n == 0 collects until the protocol says there is no more.
type paginator struct {
	state     driverState
	budget    int
	remaining int
	pages     []pageState
}

// newPaginator validates the caller's budget. n < 0 is a contract violation
// and must be rejected before any navigation happens.
func newPaginator(n int) (*paginator, error) {
	if n < 0 {
		return nil, ErrInvalidCount
	}
	return &paginator{state: stateInit, budget: n, remaining: n}, nil
}

func (p *paginator) beginFirstFetch() {
	p.state = stateFetchingFirst
}

func (p *paginator) beginLoadMore() {
	p.state = stateLoadingMore
}

// recordPage accumulates one fetched page and advances the machine.
func (p *paginator) recordPage(ps pageState) {
	p.pages = append(p.pages, ps)
	p.remaining -= len(ps.items)
	p.state = stateFetchedPage
	if !ps.hasMore || (p.budget > 0 && p.remaining <= 0) {
		p.state = stateDone
	}
}

// recordMiss handles a fetch cycle whose expected response never appeared.
// On the first fetch that means the entity has nothing for us (EMPTY); on a
// later page it means graceful truncation: keep what we have.
func (p *paginator) recordMiss() {
	if len(p.pages) == 0 {
		p.state = stateEmpty
		return
	}
	p.state = stateDone
}

// continueFetching reports whether another load-more cycle should run.
func (p *paginator) continueFetching() bool {
	return p.state == stateFetchedPage
}

func (p *paginator) empty() bool {
	return p.state == stateEmpty
}

// cursor returns the last page's continuation token, or "" before the
// first page — which is exactly the value the first request carries.
func (p *paginator) cursor() string {
	if len(p.pages) == 0 {
		return ""
	}
	return p.pages[len(p.pages)-1].cursor
}

// items returns all accumulated raw items, in page order.
func (p *paginator) items() []gjson.Result {
	var out []gjson.Result
	for _, ps := range p.pages {
		out = append(out, ps.items...)
	}
	return out
}

// clipTo truncates the final record list to the requested count. Truncation
// happens after full accumulation, so a page's tail is sliced off at most
// once, at the very end.
func clipTo[T any](list []T, n int) []T {
	if n > 0 && len(list) > n {
		return list[:n]
	}
	return list
}
