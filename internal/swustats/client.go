// Package swustats is a client for the SWU stats deck API.
package swustats

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DeckSummary is one row from the deck list endpoint.
type DeckSummary struct {
	ID         int    `json:"deckID"`
	Name       string `json:"name"`
	IsFavorite bool   `json:"isFavorite"`
}

// CardRef identifies a single card by its set id.
type CardRef struct {
	ID string `json:"id"`
}

// DeckEntry is one card slot in a deck, with its copy count.
type DeckEntry struct {
	Card  json.RawMessage `json:"card"`
	Count int             `json:"count"`
}

// Deck is the full contents of one deck as returned by the load endpoint.
// Fields missing from the response decode to their zero values.
type Deck struct {
	DeckID   int `json:"deckID"`
	Metadata struct {
		Name string `json:"name"`
	} `json:"metadata"`
	Leader    *CardRef    `json:"leader"`
	Base      *CardRef    `json:"base"`
	Deck      []DeckEntry `json:"deck"`
	Sideboard []DeckEntry `json:"sideboard"`
}

// Name returns the deck's display name, or a placeholder for unnamed decks.
func (d *Deck) Name() string {
	if d.Metadata.Name != "" {
		return d.Metadata.Name
	}
	return fmt.Sprintf("Unnamed Deck #%d", d.DeckID)
}

// Client talks to the SWU stats REST API. All requests carry the access
// token as a query parameter.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewClient creates a deck API client for the given base URL and token.
func NewClient(baseURL, accessToken string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListDecks fetches all decks for the configured account.
func (c *Client) ListDecks(ctx context.Context) ([]DeckSummary, error) {
	var result struct {
		Decks []DeckSummary `json:"decks"`
	}
	params := url.Values{"access_token": {c.accessToken}}
	if err := c.get(ctx, "/UserAPIs/GetUserDecks.php", params, &result); err != nil {
		return nil, err
	}
	return result.Decks, nil
}

// LoadDeck fetches the full contents of one deck by id.
func (c *Client) LoadDeck(ctx context.Context, deckID int) (*Deck, error) {
	params := url.Values{
		"access_token": {c.accessToken},
		"deckID":       {strconv.Itoa(deckID)},
	}
	var deck Deck
	if err := c.get(ctx, "/LoadDeck.php", params, &deck); err != nil {
		return nil, err
	}
	if deck.DeckID == 0 {
		deck.DeckID = deckID
	}
	return &deck, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deck api request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("deck api returned %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
