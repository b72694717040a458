// Package state holds per-thread conversation state: the most recent card
// search results and the active deck selection. Everything lives in memory
// for the lifetime of the process; a restart starts every thread fresh.
package state

import (
	"sync"

	"github.com/swubot/swubot/internal/cardsearch"
	"github.com/swubot/swubot/internal/swustats"
)

// CardSearchResult is one indexed card from a search. Indices are 1-based
// and contiguous so users can refer to "card 3" in a follow-up turn.
type CardSearchResult struct {
	Index   int    `json:"index"`
	Ability string `json:"ability"`
	Raw     string `json:"raw"`
}

// CardSearchState is a thread's most recent search and its results.
type CardSearchState struct {
	Query   string             `json:"query"`
	Results []CardSearchResult `json:"results"`
}

// ActiveDeck is a thread's deck selection as seen by callers.
type ActiveDeck struct {
	ID   int
	Name string
}

// DeckSnapshot is the full deck state for one thread, used by the read API.
type DeckSnapshot struct {
	Active   *ActiveDeck
	Contents *swustats.Deck
}

type deckEntry struct {
	activeID       int
	activeName     string
	hasActive      bool
	contents       *swustats.Deck
	contentsDeckID int
}

// Store keeps per-thread state in two maps keyed by thread id. Entries are
// created lazily on first write and never evicted.
type Store struct {
	mu       sync.RWMutex
	searches map[string]*CardSearchState
	decks    map[string]*deckEntry
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		searches: make(map[string]*CardSearchState),
		decks:    make(map[string]*deckEntry),
	}
}

// SetSearchResults replaces a thread's search state with a fresh result set.
// Cards are reindexed from 1; cards with no ability text keep a placeholder
// so indices stay contiguous.
func (s *Store) SetSearchResults(threadID, query string, cards []cardsearch.Card) {
	results := make([]CardSearchResult, 0, len(cards))
	for i, card := range cards {
		ability := card.Ability
		if ability == "" {
			ability = "(no text)"
		}
		results = append(results, CardSearchResult{
			Index:   i + 1,
			Ability: ability,
			Raw:     card.Raw,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.searches[threadID] = &CardSearchState{Query: query, Results: results}
}

// SearchState returns a copy of a thread's search state, or nil if the
// thread has not searched yet.
func (s *Store) SearchState(threadID string) *CardSearchState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.searches[threadID]
	if !ok {
		return nil
	}
	out := &CardSearchState{Query: st.Query, Results: make([]CardSearchResult, len(st.Results))}
	copy(out.Results, st.Results)
	return out
}

// CardByIndex returns the card at a 1-based index from the thread's most
// recent search, or nil when the index is out of range or nothing has been
// searched.
func (s *Store) CardByIndex(threadID string, index int) *CardSearchResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.searches[threadID]
	if !ok || index < 1 || index > len(st.Results) {
		return nil
	}
	result := st.Results[index-1]
	return &result
}

// ResultCount returns how many results the thread's most recent search had.
func (s *Store) ResultCount(threadID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if st, ok := s.searches[threadID]; ok {
		return len(st.Results)
	}
	return 0
}

// HasResults reports whether the thread has a non-empty search result set.
func (s *Store) HasResults(threadID string) bool {
	return s.ResultCount(threadID) > 0
}

// SetActiveDeck records the thread's deck selection. Any cached contents are
// discarded, even when the same deck is selected again, so the next read
// fetches fresh data.
func (s *Store) SetActiveDeck(threadID string, deckID int, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.deckEntryLocked(threadID)
	entry.activeID = deckID
	entry.activeName = name
	entry.hasActive = true
	entry.contents = nil
	entry.contentsDeckID = 0
}

// ActiveDeck returns the thread's deck selection, or nil when none is set.
func (s *Store) ActiveDeck(threadID string) *ActiveDeck {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.decks[threadID]
	if !ok || !entry.hasActive {
		return nil
	}
	return &ActiveDeck{ID: entry.activeID, Name: entry.activeName}
}

// ClearActiveDeck removes the thread's deck selection and cached contents.
// It returns the name of the deck that was active, and whether one was.
func (s *Store) ClearActiveDeck(threadID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.decks[threadID]
	if !ok || !entry.hasActive {
		return "", false
	}
	name := entry.activeName
	entry.activeID = 0
	entry.activeName = ""
	entry.hasActive = false
	entry.contents = nil
	entry.contentsDeckID = 0
	return name, true
}

// CacheDeckContents stores fetched deck contents for a thread, tagged with
// the deck id they belong to.
func (s *Store) CacheDeckContents(threadID string, deckID int, contents *swustats.Deck) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.deckEntryLocked(threadID)
	entry.contents = contents
	entry.contentsDeckID = deckID
}

// DeckContents returns the cached contents for the thread's active deck.
// It returns nil when no deck is active, nothing is cached, or the cache
// belongs to a different deck id than the current selection.
func (s *Store) DeckContents(threadID string) *swustats.Deck {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.decks[threadID]
	if !ok || !entry.hasActive || entry.contents == nil {
		return nil
	}
	if entry.contentsDeckID != entry.activeID {
		return nil
	}
	return entry.contents
}

// Snapshot returns the thread's full deck state in one read.
func (s *Store) Snapshot(threadID string) DeckSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.decks[threadID]
	if !ok || !entry.hasActive {
		return DeckSnapshot{}
	}
	snap := DeckSnapshot{
		Active: &ActiveDeck{ID: entry.activeID, Name: entry.activeName},
	}
	if entry.contents != nil && entry.contentsDeckID == entry.activeID {
		snap.Contents = entry.contents
	}
	return snap
}

// Counts reports how many threads hold search state and deck state.
func (s *Store) Counts() (searches, decks int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.searches), len(s.decks)
}

func (s *Store) deckEntryLocked(threadID string) *deckEntry {
	entry, ok := s.decks[threadID]
	if !ok {
		entry = &deckEntry{}
		s.decks[threadID] = entry
	}
	return entry
}
