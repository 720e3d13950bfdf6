package instacrawl

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-rod/rod/lib/proto"
)

// Login signs in through the regular login form. Instagram may still demand
// a checkpoint or two-factor step; when it does, run headful and finish the
// challenge by hand, then save the cookies for later sessions.
func (b *RodBrowser) Login(ctx context.Context, username, password string) error {
	if err := b.Navigate(ctx, defaultBaseURL+"/accounts/login/"); err != nil {
		return err
	}

	if err := b.TypeText(ctx, `//input[@name="username"]`, username); err != nil {
		return fmt.Errorf("fill username: %w", err)
	}
	if err := b.TypeText(ctx, `//input[@name="password"]`, password); err != nil {
		return fmt.Errorf("fill password: %w", err)
	}
	if err := b.Click(ctx, `//button[@type="submit"]`); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}

	// The home feed search icon only renders for an authenticated session.
	if err := b.WaitElement(ctx, `//*[name()="svg"][@aria-label="Search"]`, 30*time.Second); err != nil {
		return fmt.Errorf("login did not reach home feed: %w", err)
	}
	b.ClearExchanges()
	return nil
}

// SaveCookies writes the session cookies to a JSON file so the next run can
// skip the login form.
func (b *RodBrowser) SaveCookies(path string) error {
	cookies, err := b.page.Cookies([]string{defaultBaseURL})
	if err != nil {
		return fmt.Errorf("read cookies: %w", err)
	}
	data, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cookies: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write cookie file: %w", err)
	}
	return nil
}

// LoadCookies restores a previously saved session. The caller should
// navigate to the site afterwards to confirm the session is still valid.
func (b *RodBrowser) LoadCookies(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read cookie file: %w", err)
	}
	var cookies []*proto.NetworkCookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return fmt.Errorf("decode cookie file: %w", err)
	}
	params := make([]*proto.NetworkCookieParam, 0, len(cookies))
	for _, c := range cookies {
		params = append(params, &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: c.SameSite,
			Expires:  c.Expires,
		})
	}
	if err := b.page.SetCookies(params); err != nil {
		return fmt.Errorf("set cookies: %w", err)
	}
	return nil
}

// LoginWithCookies restores a saved session and verifies it by loading the
// home page. Falls back to an error rather than a silent anonymous session.
func (b *RodBrowser) LoginWithCookies(ctx context.Context, path string) error {
	if err := b.LoadCookies(path); err != nil {
		return err
	}
	if err := b.Navigate(ctx, defaultBaseURL+"/"); err != nil {
		return err
	}
	if err := b.WaitElement(ctx, `//*[name()="svg"][@aria-label="Search"]`, 15*time.Second); err != nil {
		return fmt.Errorf("saved session rejected: %w", err)
	}
	b.ClearExchanges()
	return nil
}
