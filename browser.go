package instacrawl

import (
	"context"
	"time"
)

// Browser is the capability surface the collection code needs from a real
// browser: navigation, a handful of UI actions to trigger lazy-loaded
// requests, and access to the captured network exchanges. Locators are
// XPath expressions. Concrete adapters (see RodBrowser) implement it; the
// core never touches a driver library directly.
//
// A single Browser must not be driven by two collection calls concurrently:
// the capture buffer is a per-session resource. Two independent Browser
// instances are fine.
type Browser interface {
	// Navigate loads the given URL and returns once the page settled.
	Navigate(ctx context.Context, url string) error

	// Click clicks the first element matching the locator.
	Click(ctx context.Context, locator string) error

	// TypeText types text into the first element matching the locator.
	TypeText(ctx context.Context, locator, text string) error

	// ScrollIntoView scrolls the first matching element into the viewport,
	// which is what triggers the next page's request on infinite lists.
	ScrollIntoView(ctx context.Context, locator string) error

	// WaitElement blocks until an element matching the locator exists, or
	// fails with ErrElementNotFound after the timeout.
	WaitElement(ctx context.Context, locator string, timeout time.Duration) error

	// ElementAttribute returns the named attribute of the first matching
	// element, or ErrElementNotFound.
	ElementAttribute(ctx context.Context, locator, name string) (string, error)

	// ElementsHTML returns the inner HTML of every matching element.
	ElementsHTML(ctx context.Context, locator string) ([]string, error)

	// TakeExchanges drains and returns all exchanges captured since the
	// last take, in capture order.
	TakeExchanges() []*Exchange

	// ClearExchanges drops all pending exchanges. Collection code clears
	// before each UI action so a stale response from an earlier action can
	// never satisfy a later match.
	ClearExchanges()
}
