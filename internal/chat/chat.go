// Package chat turns user messages and widget actions into ordered event
// streams. The Responder interface is the orchestration boundary; Server is
// the built-in rule-based implementation over the tool layer.
package chat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/swubot/swubot/internal/logging"
	"github.com/swubot/swubot/internal/state"
	"github.com/swubot/swubot/internal/tools"
	"github.com/swubot/swubot/internal/widget"
)

// Event types emitted during a turn.
const (
	EventItemDone     = "item_done"     // a new item finished rendering
	EventItemReplaced = "item_replaced" // an existing item was re-rendered in place
)

// Item is one rendered conversation item.
type Item struct {
	ID     string         `json:"id"`
	Role   string         `json:"role"`
	Text   string         `json:"text,omitempty"`
	Widget *widget.Widget `json:"widget,omitempty"`
}

// Event is one entry in a turn's ordered event stream.
type Event struct {
	Type string `json:"type"`
	Item Item   `json:"item"`
}

// Action is a widget interaction sent by the frontend.
type Action struct {
	Type    string          `json:"type"`
	ItemID  string          `json:"item_id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Responder handles one conversation turn. External orchestrators implement
// this to take over from the built-in router.
type Responder interface {
	Respond(ctx context.Context, threadID, userText string) []Event
	HandleAction(ctx context.Context, threadID string, action Action) []Event
}

// Server routes messages to tools and renders the results as events.
type Server struct {
	tools  *tools.Toolset
	decks  tools.DeckAPI
	store  *state.Store
	router *Router

	mu              sync.Mutex
	deckWidgetItems map[string]string // threadID -> item id of the last deck list widget
}

// NewServer creates a chat server over a toolset.
func NewServer(ts *tools.Toolset, decks tools.DeckAPI, store *state.Store) *Server {
	s := &Server{
		tools:           ts,
		decks:           decks,
		store:           store,
		deckWidgetItems: make(map[string]string),
	}
	s.router = newRouter(s)
	return s
}

// Respond handles one user message and returns the turn's events.
func (s *Server) Respond(ctx context.Context, threadID, userText string) []Event {
	logging.Debug("chat", "thread %s: %s", threadID, logging.Truncate(userText, 120))

	result := s.router.dispatch(ctx, threadID, userText)
	return s.renderResult(threadID, result)
}

func (s *Server) renderResult(threadID string, result tools.Result) []Event {
	var events []Event
	if result.Text != "" {
		events = append(events, Event{
			Type: EventItemDone,
			Item: Item{ID: newItemID(), Role: "assistant", Text: result.Text},
		})
	}
	if result.Widget != nil {
		id := newItemID()
		if result.Widget.Type == widget.TypeDeckList {
			s.mu.Lock()
			s.deckWidgetItems[threadID] = id
			s.mu.Unlock()
		}
		events = append(events, Event{
			Type: EventItemDone,
			Item: Item{ID: id, Role: "assistant", Widget: result.Widget},
		})
	}
	return events
}

// HandleAction handles a widget interaction. For select_deck the deck list
// widget is re-rendered in place with the new active row, then a
// confirmation message is appended.
func (s *Server) HandleAction(ctx context.Context, threadID string, action Action) []Event {
	if action.Type != "select_deck" {
		return []Event{textEvent(fmt.Sprintf("Unknown action: %s", action.Type))}
	}

	var payload struct {
		DeckID   json.Number `json:"deck_id"`
		DeckName string      `json:"deck_name"`
	}
	if len(action.Payload) > 0 {
		if err := json.Unmarshal(action.Payload, &payload); err != nil {
			return []Event{textEvent("Error: could not read the deck selection.")}
		}
	}
	deckID, err := strconv.Atoi(payload.DeckID.String())
	if err != nil || deckID == 0 || payload.DeckName == "" {
		return []Event{textEvent("Error: deck selection is missing deck_id or deck_name.")}
	}

	confirm := s.tools.SetActiveDeck(ctx, threadID, deckID, payload.DeckName)

	var events []Event
	if replaced := s.replaceDeckWidget(ctx, threadID, action.ItemID); replaced != nil {
		events = append(events, *replaced)
	}
	events = append(events, textEvent(confirm.Text))
	return events
}

// replaceDeckWidget rebuilds the deck list widget so the newly active deck is
// highlighted, keeping the original item id. Returns nil when there is no
// widget to replace or the deck list cannot be re-fetched.
func (s *Server) replaceDeckWidget(ctx context.Context, threadID, itemID string) *Event {
	if itemID == "" {
		s.mu.Lock()
		itemID = s.deckWidgetItems[threadID]
		s.mu.Unlock()
	}
	if itemID == "" {
		return nil
	}

	decks, err := s.decks.ListDecks(ctx)
	if err != nil {
		logging.Info("chat", "deck widget refresh failed: %v", err)
		return nil
	}
	w := widget.DeckList(decks, s.store.ActiveDeck(threadID))
	return &Event{
		Type: EventItemReplaced,
		Item: Item{ID: itemID, Role: "assistant", Widget: &w},
	}
}

func textEvent(text string) Event {
	return Event{
		Type: EventItemDone,
		Item: Item{ID: newItemID(), Role: "assistant", Text: text},
	}
}

func newItemID() string {
	var b [8]byte
	rand.Read(b[:])
	return "item_" + hex.EncodeToString(b[:])
}
