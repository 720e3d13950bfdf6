package instacrawl

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// RodBrowser adapts a headless Chrome driven by go-rod to the Browser
// interface. It subscribes to CDP network events and feeds every completed
// request/response pair into an owned ExchangeBuffer.
type RodBrowser struct {
	browser *rod.Browser
	page    *rod.Page
	buffer  ExchangeBuffer
	proxy   string
	headful bool
}

// RodOption customizes browser launch.
type RodOption func(*RodBrowser)

// WithProxy routes all browser traffic through the given proxy address.
func WithProxy(addr string) RodOption {
	return func(b *RodBrowser) { b.proxy = addr }
}

// WithHeadful launches a visible browser window, useful for manual login
// and for debugging challenges/captchas.
func WithHeadful() RodOption {
	return func(b *RodBrowser) { b.headful = true }
}

// NewRodBrowser launches a stealth Chrome instance and starts capturing
// network traffic.
func NewRodBrowser(opts ...RodOption) (*RodBrowser, error) {
	b := &RodBrowser{}
	for _, opt := range opts {
		opt(b)
	}

	l := launcher.New().Headless(!b.headful)
	if b.proxy != "" {
		l = l.Proxy(b.proxy)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := stealth.Page(browser)
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("create stealth page: %w", err)
	}

	b.browser = browser
	b.page = page
	b.blockStaticResources()

	if err := b.startCapture(); err != nil {
		browser.Close()
		return nil, err
	}
	return b, nil
}

// blockStaticResources drops media and telemetry requests the scraper never
// reads. Less bandwidth, and fewer exchanges to sift through.
func (b *RodBrowser) blockStaticResources() {
	router := b.browser.HijackRequests()
	blocked := []string{"*.css", "*.png", "*.jpg", "*.jpeg", "*.mp4", "*.woff*", "*.svg", "*analytics*"}
	for _, pattern := range blocked {
		router.MustAdd(pattern, func(ctx *rod.Hijack) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
		})
	}
	go router.Run()
}

// startCapture subscribes to CDP network events. An exchange enters the
// buffer only once its body has finished loading, so collection code never
// observes a half-read response.
func (b *RodBrowser) startCapture() error {
	if err := (proto.NetworkEnable{}).Call(b.page); err != nil {
		return fmt.Errorf("enable network capture: %w", err)
	}

	inflight := map[proto.NetworkRequestID]*Exchange{}

	wait := b.page.EachEvent(
		func(e *proto.NetworkRequestWillBeSent) {
			inflight[e.RequestID] = &Exchange{
				URL:         e.Request.URL,
				Method:      e.Request.Method,
				RequestBody: postData(e.Request),
			}
		},
		func(e *proto.NetworkResponseReceived) {
			ex, ok := inflight[e.RequestID]
			if !ok {
				return
			}
			ex.StatusCode = e.Response.Status
			ex.ResponseHeaders = map[string]string{}
			for k, v := range e.Response.Headers {
				key := http.CanonicalHeaderKey(k)
				// CDP hands back bodies already decompressed; advertising
				// the original Content-Encoding would make the decoder try
				// to decompress plain JSON.
				if key == "Content-Encoding" {
					continue
				}
				ex.ResponseHeaders[key] = v.Str()
			}
		},
		func(e *proto.NetworkLoadingFinished) {
			ex, ok := inflight[e.RequestID]
			if !ok || ex.ResponseHeaders == nil {
				return
			}
			delete(inflight, e.RequestID)
			reply, err := proto.NetworkGetResponseBody{RequestID: e.RequestID}.Call(b.page)
			if err != nil {
				return
			}
			body := []byte(reply.Body)
			if reply.Base64Encoded {
				if decoded, err := base64.StdEncoding.DecodeString(reply.Body); err == nil {
					body = decoded
				}
			}
			ex.ResponseBody = body
			ex.HasResponse = true
			b.buffer.Append(ex)
		},
	)
	go wait()
	return nil
}

func postData(req *proto.NetworkRequest) []byte {
	if len(req.PostDataEntries) > 0 {
		var body []byte
		for _, entry := range req.PostDataEntries {
			if decoded, err := base64.StdEncoding.DecodeString(string(entry.Bytes)); err == nil {
				body = append(body, decoded...)
			}
		}
		return body
	}
	return nil
}

// Navigate implements Browser.
func (b *RodBrowser) Navigate(ctx context.Context, url string) error {
	page := b.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := page.WaitStable(2 * time.Second); err != nil {
		return fmt.Errorf("wait for page stable: %w", err)
	}
	return nil
}

func (b *RodBrowser) element(ctx context.Context, locator string, timeout time.Duration) (*rod.Element, error) {
	el, err := b.page.Context(ctx).Timeout(timeout).ElementX(locator)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, locator)
	}
	return el, nil
}

// Click implements Browser.
func (b *RodBrowser) Click(ctx context.Context, locator string) error {
	el, err := b.element(ctx, locator, 10*time.Second)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %s: %w", locator, err)
	}
	return nil
}

// TypeText implements Browser.
func (b *RodBrowser) TypeText(ctx context.Context, locator, text string) error {
	el, err := b.element(ctx, locator, 10*time.Second)
	if err != nil {
		return err
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("type into %s: %w", locator, err)
	}
	return nil
}

// ScrollIntoView implements Browser.
func (b *RodBrowser) ScrollIntoView(ctx context.Context, locator string) error {
	el, err := b.element(ctx, locator, 10*time.Second)
	if err != nil {
		return err
	}
	if err := el.ScrollIntoView(); err != nil {
		return fmt.Errorf("scroll to %s: %w", locator, err)
	}
	return nil
}

// WaitElement implements Browser.
func (b *RodBrowser) WaitElement(ctx context.Context, locator string, timeout time.Duration) error {
	_, err := b.element(ctx, locator, timeout)
	return err
}

// ElementAttribute implements Browser.
func (b *RodBrowser) ElementAttribute(ctx context.Context, locator, name string) (string, error) {
	el, err := b.element(ctx, locator, 10*time.Second)
	if err != nil {
		return "", err
	}
	attr, err := el.Attribute(name)
	if err != nil || attr == nil {
		return "", fmt.Errorf("%w: attribute %q of %s", ErrElementNotFound, name, locator)
	}
	return *attr, nil
}

// ElementsHTML implements Browser.
func (b *RodBrowser) ElementsHTML(ctx context.Context, locator string) ([]string, error) {
	els, err := b.page.Context(ctx).ElementsX(locator)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", locator, err)
	}
	out := make([]string, 0, len(els))
	for _, el := range els {
		html, err := el.HTML()
		if err != nil {
			continue
		}
		out = append(out, html)
	}
	return out, nil
}

// TakeExchanges implements Browser.
func (b *RodBrowser) TakeExchanges() []*Exchange {
	return b.buffer.Take()
}

// ClearExchanges implements Browser.
func (b *RodBrowser) ClearExchanges() {
	b.buffer.Clear()
}

// Close shuts the page and browser down.
func (b *RodBrowser) Close() error {
	if b.page != nil {
		if err := b.page.Close(); err != nil {
			return fmt.Errorf("close page: %w", err)
		}
		b.page = nil
	}
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			return fmt.Errorf("close browser: %w", err)
		}
		b.browser = nil
	}
	return nil
}
