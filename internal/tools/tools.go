// Package tools implements the assistant's tool layer. Each tool takes a
// thread id, touches the shared state store and the remote clients, and
// returns a text reply plus an optional widget. Remote failures become an
// "Error: ..." reply; a tool never panics a conversation turn.
package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/swubot/swubot/internal/cardsearch"
	"github.com/swubot/swubot/internal/logging"
	"github.com/swubot/swubot/internal/state"
	"github.com/swubot/swubot/internal/swustats"
	"github.com/swubot/swubot/internal/widget"
)

// Max decks named in the get_user_decks text reply. The widget always
// carries the full list.
const deckTextLimit = 10

// CardSearcher is the card search client surface the tools need.
type CardSearcher interface {
	Search(ctx context.Context, query string) ([]cardsearch.Card, error)
}

// DeckAPI is the deck client surface the tools need.
type DeckAPI interface {
	ListDecks(ctx context.Context) ([]swustats.DeckSummary, error)
	LoadDeck(ctx context.Context, deckID int) (*swustats.Deck, error)
}

// Dependencies carries everything the tools operate on.
type Dependencies struct {
	Store  *state.Store
	Search CardSearcher
	Decks  DeckAPI

	// OnDeckChange, if set, is called after a thread's active deck changes.
	OnDeckChange func(threadID string)
}

// Result is one tool invocation's reply.
type Result struct {
	Text   string
	Widget *widget.Widget
}

func errorResult(err error) Result {
	return Result{Text: "Error: " + err.Error()}
}

// Toolset exposes the assistant's tools over a Dependencies bundle.
type Toolset struct {
	deps Dependencies
}

// New creates a toolset.
func New(deps Dependencies) *Toolset {
	return &Toolset{deps: deps}
}

// SearchCards runs a card search and replaces the thread's result set.
// State is untouched when the remote call fails.
func (t *Toolset) SearchCards(ctx context.Context, threadID, query string) Result {
	cards, err := t.deps.Search.Search(ctx, query)
	if err != nil {
		logging.Info("tools", "card search failed: %v", err)
		return errorResult(err)
	}

	t.deps.Store.SetSearchResults(threadID, query, cards)
	logging.Debug("tools", "thread %s: %d results for %q", threadID, len(cards), logging.Truncate(query, 80))

	if len(cards) == 0 {
		return Result{Text: fmt.Sprintf("No cards found matching '%s'.", query)}
	}

	st := t.deps.Store.SearchState(threadID)
	w := widget.CardList(query, st.Results)
	return Result{
		Text:   fmt.Sprintf("Found %d card(s) matching '%s':", len(cards), query),
		Widget: &w,
	}
}

// GetUserDecks lists the user's decks. The text names at most ten; the
// widget carries all of them, favorites first.
func (t *Toolset) GetUserDecks(ctx context.Context, threadID string) Result {
	decks, err := t.deps.Decks.ListDecks(ctx)
	if err != nil {
		logging.Info("tools", "deck list failed: %v", err)
		return errorResult(err)
	}
	if len(decks) == 0 {
		return Result{Text: "No decks found."}
	}

	active := t.deps.Store.ActiveDeck(threadID)
	w := widget.DeckList(decks, active)
	rows := w.Payload.(widget.DeckListPayload).Decks

	var b strings.Builder
	fmt.Fprintf(&b, "You have %d deck(s):\n", len(rows))
	for i, row := range rows {
		if i == deckTextLimit {
			fmt.Fprintf(&b, "...and %d more", len(rows)-deckTextLimit)
			break
		}
		marker := ""
		if row.IsFavorite {
			marker = " ★"
		}
		fmt.Fprintf(&b, "- %s (ID: %d)%s\n", row.Name, row.ID, marker)
	}

	return Result{Text: strings.TrimRight(b.String(), "\n"), Widget: &w}
}

// GetCardFromResults returns one card from the thread's most recent search
// by its 1-based index.
func (t *Toolset) GetCardFromResults(threadID string, index int) Result {
	if !t.deps.Store.HasResults(threadID) {
		return Result{Text: "No search results yet. Search for cards first."}
	}
	card := t.deps.Store.CardByIndex(threadID, index)
	if card == nil {
		n := t.deps.Store.ResultCount(threadID)
		return Result{Text: fmt.Sprintf("Card %d is out of range. Valid range is 1 to %d.", index, n)}
	}
	return Result{Text: fmt.Sprintf("Card %d: %s", card.Index, card.Ability)}
}

// SetActiveDeck records the thread's deck selection, then fetches and caches
// the deck's contents. A failed fetch is logged but does not undo the
// selection; the next read retries.
func (t *Toolset) SetActiveDeck(ctx context.Context, threadID string, deckID int, name string) Result {
	t.deps.Store.SetActiveDeck(threadID, deckID, name)

	deck, err := t.deps.Decks.LoadDeck(ctx, deckID)
	if err != nil {
		logging.Info("tools", "thread %s: deck %d contents fetch failed: %v", threadID, deckID, err)
	} else {
		t.deps.Store.CacheDeckContents(threadID, deckID, deck)
	}

	if t.deps.OnDeckChange != nil {
		t.deps.OnDeckChange(threadID)
	}
	return Result{Text: fmt.Sprintf("Active deck set to: **%s** (ID: %d)", name, deckID)}
}

// GetActiveDeck reports the thread's current deck selection.
func (t *Toolset) GetActiveDeck(threadID string) Result {
	active := t.deps.Store.ActiveDeck(threadID)
	if active == nil {
		return Result{Text: "No active deck is set. Pick one from your deck list."}
	}
	return Result{Text: fmt.Sprintf("Active deck: **%s** (ID: %d)", active.Name, active.ID)}
}

// ClearActiveDeck removes the thread's deck selection.
func (t *Toolset) ClearActiveDeck(threadID string) Result {
	name, ok := t.deps.Store.ClearActiveDeck(threadID)
	if !ok {
		return Result{Text: "No active deck to clear."}
	}
	if t.deps.OnDeckChange != nil {
		t.deps.OnDeckChange(threadID)
	}
	return Result{Text: fmt.Sprintf("Cleared active deck: **%s**", name)}
}

// LoadDeckContents summarizes a deck's contents. Deck id 0 means the
// thread's active deck; the cache is used when it matches that deck.
func (t *Toolset) LoadDeckContents(ctx context.Context, threadID string, deckID int) Result {
	useActive := deckID == 0
	if useActive {
		active := t.deps.Store.ActiveDeck(threadID)
		if active == nil {
			return Result{Text: "No active deck is set. Provide a deck ID or select a deck first."}
		}
		deckID = active.ID
	}

	var deck *swustats.Deck
	if useActive {
		deck = t.deps.Store.DeckContents(threadID)
	}
	if deck == nil {
		var err error
		deck, err = t.deps.Decks.LoadDeck(ctx, deckID)
		if err != nil {
			logging.Info("tools", "deck %d load failed: %v", deckID, err)
			return errorResult(err)
		}
		if useActive {
			t.deps.Store.CacheDeckContents(threadID, deckID, deck)
		}
	}

	mainTotal := 0
	for _, e := range deck.Deck {
		mainTotal += e.Count
	}
	sideTotal := 0
	for _, e := range deck.Sideboard {
		sideTotal += e.Count
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Deck: **%s** (ID: %d)\n", deck.Name(), deckID)
	if deck.Leader != nil {
		fmt.Fprintf(&b, "Leader: %s\n", deck.Leader.ID)
	}
	if deck.Base != nil {
		fmt.Fprintf(&b, "Base: %s\n", deck.Base.ID)
	}
	fmt.Fprintf(&b, "Main deck: %d cards (%d unique)\n", mainTotal, len(deck.Deck))
	fmt.Fprintf(&b, "Sideboard: %d cards (%d unique)", sideTotal, len(deck.Sideboard))

	return Result{Text: b.String()}
}
