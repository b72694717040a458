package chat

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/swubot/swubot/internal/cardsearch"
	"github.com/swubot/swubot/internal/state"
	"github.com/swubot/swubot/internal/swustats"
	"github.com/swubot/swubot/internal/tools"
	"github.com/swubot/swubot/internal/widget"
)

type fakeSearch struct {
	cards []cardsearch.Card
	err   error
}

func (f *fakeSearch) Search(ctx context.Context, query string) ([]cardsearch.Card, error) {
	return f.cards, f.err
}

type fakeDecks struct {
	decks []swustats.DeckSummary
}

func (f *fakeDecks) ListDecks(ctx context.Context) ([]swustats.DeckSummary, error) {
	return f.decks, nil
}

func (f *fakeDecks) LoadDeck(ctx context.Context, deckID int) (*swustats.Deck, error) {
	return &swustats.Deck{DeckID: deckID}, nil
}

func newTestServer(search *fakeSearch, decks *fakeDecks) (*Server, *state.Store) {
	store := state.NewStore()
	ts := tools.New(tools.Dependencies{Store: store, Search: search, Decks: decks})
	return NewServer(ts, decks, store), store
}

func TestRespondSearch(t *testing.T) {
	s, _ := newTestServer(&fakeSearch{cards: []cardsearch.Card{{Ability: "Heal 2."}}}, &fakeDecks{})

	events := s.Respond(context.Background(), "t1", "search for cards that heal")
	if len(events) != 2 {
		t.Fatalf("got %d events, want text + widget", len(events))
	}
	if events[0].Item.Text != "Found 1 card(s) matching 'heal':" {
		t.Errorf("text = %q", events[0].Item.Text)
	}
	if events[1].Item.Widget == nil || events[1].Item.Widget.Type != widget.TypeCardList {
		t.Errorf("widget = %+v", events[1].Item.Widget)
	}
	if events[0].Item.ID == events[1].Item.ID {
		t.Error("items share an id")
	}
}

func TestRespondRouting(t *testing.T) {
	s, store := newTestServer(
		&fakeSearch{cards: []cardsearch.Card{{Ability: "a"}, {Ability: "b"}}},
		&fakeDecks{decks: []swustats.DeckSummary{{ID: 1, Name: "Aggro"}}},
	)
	ctx := context.Background()

	s.Respond(ctx, "t1", "find cards with a")
	events := s.Respond(ctx, "t1", "show me card 2")
	if len(events) != 1 || events[0].Item.Text != "Card 2: b" {
		t.Errorf("card lookup events = %+v", events)
	}

	events = s.Respond(ctx, "t1", "show my decks")
	if len(events) != 2 || events[1].Item.Widget.Type != widget.TypeDeckList {
		t.Fatalf("deck list events = %+v", events)
	}

	store.SetActiveDeck("t1", 1, "Aggro")
	events = s.Respond(ctx, "t1", "which deck is active?")
	if events[0].Item.Text != "Active deck: **Aggro** (ID: 1)" {
		t.Errorf("active deck text = %q", events[0].Item.Text)
	}

	events = s.Respond(ctx, "t1", "clear my deck")
	if events[0].Item.Text != "Cleared active deck: **Aggro**" {
		t.Errorf("clear text = %q", events[0].Item.Text)
	}

	events = s.Respond(ctx, "t1", "hello")
	if !strings.Contains(events[0].Item.Text, "search cards") {
		t.Errorf("fallback text = %q", events[0].Item.Text)
	}
}

func TestSelectDeckActionReplacesWidget(t *testing.T) {
	decks := &fakeDecks{decks: []swustats.DeckSummary{
		{ID: 1, Name: "Aggro"},
		{ID: 42, Name: "Mill Deck"},
	}}
	s, store := newTestServer(&fakeSearch{}, decks)
	ctx := context.Background()

	events := s.Respond(ctx, "t1", "show my decks")
	widgetID := events[1].Item.ID

	actions := s.HandleAction(ctx, "t1", Action{
		Type:    "select_deck",
		Payload: json.RawMessage(`{"deck_id":42,"deck_name":"Mill Deck"}`),
	})
	if len(actions) != 2 {
		t.Fatalf("got %d events, want replace + confirm", len(actions))
	}

	replaced := actions[0]
	if replaced.Type != EventItemReplaced {
		t.Errorf("first event type = %q", replaced.Type)
	}
	if replaced.Item.ID != widgetID {
		t.Errorf("replaced item id = %q, want %q", replaced.Item.ID, widgetID)
	}
	payload := replaced.Item.Widget.Payload.(widget.DeckListPayload)
	for _, row := range payload.Decks {
		if row.ID == 42 && !row.IsActive {
			t.Error("selected deck not marked active in replaced widget")
		}
	}

	confirm := actions[1]
	if confirm.Type != EventItemDone || confirm.Item.Text != "Active deck set to: **Mill Deck** (ID: 42)" {
		t.Errorf("confirm = %+v", confirm)
	}

	active := store.ActiveDeck("t1")
	if active == nil || active.ID != 42 {
		t.Errorf("active deck = %+v", active)
	}
}

func TestSelectDeckActionMissingPayload(t *testing.T) {
	s, _ := newTestServer(&fakeSearch{}, &fakeDecks{})

	events := s.HandleAction(context.Background(), "t1", Action{
		Type:    "select_deck",
		Payload: json.RawMessage(`{"deck_id":42}`),
	})
	if len(events) != 1 || !strings.HasPrefix(events[0].Item.Text, "Error: ") {
		t.Errorf("events = %+v", events)
	}

	events = s.HandleAction(context.Background(), "t1", Action{Type: "select_deck"})
	if len(events) != 1 || !strings.HasPrefix(events[0].Item.Text, "Error: ") {
		t.Errorf("empty payload events = %+v", events)
	}
}

func TestUnknownAction(t *testing.T) {
	s, _ := newTestServer(&fakeSearch{}, &fakeDecks{})
	events := s.HandleAction(context.Background(), "t1", Action{Type: "launch"})
	if len(events) != 1 || events[0].Item.Text != "Unknown action: launch" {
		t.Errorf("events = %+v", events)
	}
}
