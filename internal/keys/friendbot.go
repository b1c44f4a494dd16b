package keys

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Funder creates and funds a new account on a test network. The production
// implementation is friendbot; tests substitute a counting fake.
type Funder interface {
	Fund(ctx context.Context, accountID string) error
}

// Friendbot funds testnet accounts via the public friendbot service.
type Friendbot struct {
	URL  string
	HTTP *http.Client
}

// NewFriendbot returns a funder pointed at the given friendbot endpoint.
func NewFriendbot(rawURL string, client *http.Client) *Friendbot {
	if client == nil {
		client = http.DefaultClient
	}
	return &Friendbot{URL: rawURL, HTTP: client}
}

// Fund requests funding for the account. Any non-2xx response is a funding
// failure; it is reported, never retried here.
func (f *Friendbot) Fund(ctx context.Context, accountID string) error {
	u, err := url.Parse(f.URL)
	if err != nil {
		return fmt.Errorf("friendbot url: %w", err)
	}
	q := u.Query()
	q.Set("addr", accountID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("friendbot request: %w", err)
	}
	resp, err := f.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("friendbot request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		detail := strings.TrimSpace(string(body))
		if detail == "" {
			detail = resp.Status
		}
		return fmt.Errorf("friendbot returned %d: %s", resp.StatusCode, detail)
	}
	return nil
}
