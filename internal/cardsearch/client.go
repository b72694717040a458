// Package cardsearch queries the remote SWU card search endpoint.
//
// The endpoint returns an HTML page; results live in the first <ul> block,
// one card per <li>. There is no JSON API.
package cardsearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Card is a single search result. The search endpoint only exposes ability
// text; card ids and images are not available from this data source.
type Card struct {
	Ability string `json:"ability"`
	Raw     string `json:"raw"`
}

// Client searches for cards against the remote HTML endpoint.
type Client struct {
	searchURL  string
	httpClient *http.Client
}

// NewClient creates a card search client.
func NewClient(searchURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		searchURL: searchURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Search posts the query and scrapes the result list out of the response.
//
// A page with no <ul> block means zero results, not an error. Items that are
// empty after markup stripping are dropped. Document order is preserved; it
// defines the 1-based indices users reference later.
func (c *Client) Search(ctx context.Context, query string) ([]Card, error) {
	form := url.Values{"searchInput": {query}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.searchURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("search endpoint returned %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	list := doc.Find("ul").First()
	if list.Length() == 0 {
		return nil, nil
	}

	var cards []Card
	list.Find("li").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		cards = append(cards, Card{Ability: text, Raw: text})
	})

	return cards, nil
}
