package instacrawl

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"fmt"
	"io"
	"sync"

	"github.com/tidwall/gjson"
)

// Exchange is one request/response pair captured from the browser's network
// traffic. Exchanges are created by the Browser adapter and read-only here.
type Exchange struct {
	URL             string
	Method          string
	RequestBody     []byte
	StatusCode      int
	ResponseHeaders map[string]string
	ResponseBody    []byte
	HasResponse     bool
}

// ContentType returns the response Content-Type header, or "" if the
// exchange has no response or the header is missing.
func (ex *Exchange) ContentType() string {
	if !ex.HasResponse {
		return ""
	}
	return ex.ResponseHeaders["Content-Type"]
}

// MatchCriteria identifies one logical request among captured exchanges.
// URL matching is exact by design: the platform's endpoint URLs are stable
// within one protocol version, and loose matching has bitten before when
// two endpoints differ only in a trailing path segment.
type MatchCriteria struct {
	URL         string
	ContentType string // "" matches any content type
	Predicate   func(requestBody []byte) bool
}

// findExchange returns the index of the first exchange satisfying all
// criteria, in capture order, or -1 if none does. Pure; callers own the pop.
func findExchange(exchanges []*Exchange, criteria MatchCriteria) int {
	for i, ex := range exchanges {
		if ex.URL != criteria.URL {
			continue
		}
		if !ex.HasResponse {
			continue
		}
		ct, ok := ex.ResponseHeaders["Content-Type"]
		if !ok {
			continue
		}
		if criteria.ContentType != "" && ct != criteria.ContentType {
			continue
		}
		if criteria.Predicate != nil && !criteria.Predicate(ex.RequestBody) {
			continue
		}
		return i
	}
	return -1
}

// filterExchanges keeps exchanges that carry a response with the given
// content type ("" keeps any response-bearing exchange).
func filterExchanges(exchanges []*Exchange, contentType string) []*Exchange {
	var out []*Exchange
	for _, ex := range exchanges {
		if !ex.HasResponse {
			continue
		}
		ct, ok := ex.ResponseHeaders["Content-Type"]
		if !ok {
			continue
		}
		if contentType != "" && ct != contentType {
			continue
		}
		out = append(out, ex)
	}
	return out
}

// popExchange removes and returns the exchange at idx. The pop is what keeps
// one response from being matched twice across pagination rounds.
func popExchange(exchanges []*Exchange, idx int) (*Exchange, []*Exchange) {
	ex := exchanges[idx]
	return ex, append(exchanges[:idx], exchanges[idx+1:]...)
}

// decodeJSON decompresses the response body per its Content-Encoding header
// and parses it as JSON. A body that is not valid JSON after decompression
// signals a protocol break and is fatal for the current fetch.
func decodeJSON(ex *Exchange) (gjson.Result, error) {
	if !ex.HasResponse {
		return gjson.Result{}, fmt.Errorf("%w: exchange for %q has no response", ErrInvalidResponse, ex.URL)
	}

	body, err := decodeBody(ex.ResponseBody, ex.ResponseHeaders["Content-Encoding"])
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%w: not valid json for %q", ErrInvalidResponse, ex.URL)
	}
	return gjson.ParseBytes(body), nil
}

func decodeBody(body []byte, encoding string) ([]byte, error) {
	switch encoding {
	case "", "identity":
		return body, nil
	case "gzip":
		r, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return out, nil
	case "deflate":
		// Servers disagree on whether "deflate" means zlib-wrapped or raw.
		if r, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
			defer r.Close()
			if out, err := io.ReadAll(r); err == nil {
				return out, nil
			}
		}
		r := flate.NewReader(bytes.NewReader(body))
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("deflate: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported content-encoding %q", encoding)
	}
}

// ExchangeBuffer is the owned capture buffer a Browser adapter feeds and the
// collection code drains. Take and Clear replace the ambient "delete the
// driver's request list" of less careful designs, so a stale response from
// an earlier UI action can never leak into a later matching step.
type ExchangeBuffer struct {
	mu       sync.Mutex
	pending  []*Exchange
	taken    int64
	captured int64
}

// Append records one captured exchange.
func (b *ExchangeBuffer) Append(ex *Exchange) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, ex)
	b.captured++
}

// Take drains and returns all pending exchanges in capture order.
func (b *ExchangeBuffer) Take() []*Exchange {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.pending
	b.pending = nil
	b.taken += int64(len(out))
	return out
}

// Clear drops all pending exchanges.
func (b *ExchangeBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = nil
}

// Len reports the number of pending exchanges.
func (b *ExchangeBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
