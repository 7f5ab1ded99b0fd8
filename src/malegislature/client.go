package malegislature

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/community-clarity/civic-sync/src/webclient"
)

const (
	DefaultListingURL = "https://malegislature.gov/Events"
	DefaultAPIBaseURL = "https://malegislature.gov/api"

	listingAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
)

// Client talks to the Massachusetts Legislature portal.
type Client struct {
	web        *webclient.Client
	listingURL string
	apiBaseURL string
}

func NewClient(web *webclient.Client, listingURL, apiBaseURL string) *Client {
	if listingURL == "" {
		listingURL = DefaultListingURL
	}
	if apiBaseURL == "" {
		apiBaseURL = DefaultAPIBaseURL
	}
	return &Client{
		web:        web,
		listingURL: listingURL,
		apiBaseURL: strings.TrimRight(apiBaseURL, "/"),
	}
}

// FetchListing returns the raw events listing markup. Transient upstream
// failures are retried here because the caller has no per-identifier scope
// to isolate them to; a persistent failure degrades to the fallback batch.
func (c *Client) FetchListing(ctx context.Context) (string, error) {
	status, body, err := c.web.GetWithRetry(ctx, c.listingURL, listingAccept, 3, 2*time.Second)
	if err != nil {
		return "", fmt.Errorf("fetch listing: %w", err)
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("fetch listing: status %d", status)
	}
	return string(body), nil
}

// FetchHearing performs exactly one request for a hearing detail payload.
// Failures are per-identifier: the caller counts them and moves on.
func (c *Client) FetchHearing(ctx context.Context, id string) (*RawHearing, error) {
	url := fmt.Sprintf("%s/Hearings/%s", c.apiBaseURL, id)
	status, body, err := c.web.Get(ctx, url, "application/json")
	if err != nil {
		return nil, fmt.Errorf("hearing %s: %w", id, err)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("hearing %s: status %d", id, status)
	}
	raw, err := ParseHearing(body)
	if err != nil {
		return nil, fmt.Errorf("hearing %s: %w", id, err)
	}
	return raw, nil
}

// ParseHearing decodes a detail payload. JSON is the current response shape;
// bodies that do not parse as JSON are tried as the legacy XML document.
func ParseHearing(body []byte) (*RawHearing, error) {
	var raw RawHearing
	if err := json.Unmarshal(body, &raw); err == nil {
		return &raw, nil
	}
	var legacy legacyHearing
	if err := xml.Unmarshal(body, &legacy); err != nil {
		return nil, fmt.Errorf("unparseable hearing payload")
	}
	return legacy.toRaw(), nil
}
