package instacrawl

import "errors"

var (
	ErrUserNotFound       = errors.New("instacrawl: user not found")
	ErrPostNotFound       = errors.New("instacrawl: post not found")
	ErrHashtagNotFound    = errors.New("instacrawl: hashtag not found")
	ErrMusicNotFound      = errors.New("instacrawl: music not found")
	ErrInvalidCount       = errors.New("instacrawl: count must not be negative")
	ErrInvalidMediaType   = errors.New("instacrawl: invalid media_type")
	ErrInvalidProductType = errors.New("instacrawl: invalid product_type")
	ErrInvalidResponse    = errors.New("instacrawl: invalid response body")
	ErrInvalidRecord      = errors.New("instacrawl: record violates its invariants")
	ErrElementNotFound    = errors.New("instacrawl: page element not found")
	ErrBrowserNotReady    = errors.New("instacrawl: browser not initialized")
)
