package widget

import (
	"testing"

	"github.com/swubot/swubot/internal/state"
	"github.com/swubot/swubot/internal/swustats"
)

func TestDeckListSort(t *testing.T) {
	decks := []swustats.DeckSummary{
		{ID: 1, Name: "Zed Rush"},
		{ID: 2, Name: "Mill Deck", IsFavorite: true},
		{ID: 3, Name: ""},
		{ID: 4, Name: "Aggro"},
		{ID: 5, Name: "Boba Control", IsFavorite: true},
	}

	w := DeckList(decks, &state.ActiveDeck{ID: 3, Name: "Unnamed Deck #3"})
	payload := w.Payload.(DeckListPayload)

	wantOrder := []string{"Boba Control", "Mill Deck", "Aggro", "Unnamed Deck #3", "Zed Rush"}
	if len(payload.Decks) != len(wantOrder) {
		t.Fatalf("got %d rows, want %d", len(payload.Decks), len(wantOrder))
	}
	for i, want := range wantOrder {
		if payload.Decks[i].Name != want {
			t.Errorf("row %d = %q, want %q", i, payload.Decks[i].Name, want)
		}
	}

	for _, row := range payload.Decks {
		if row.ID == 3 && !row.IsActive {
			t.Error("active deck row not flagged")
		}
		if row.ID != 3 && row.IsActive {
			t.Errorf("deck %d flagged active", row.ID)
		}
	}
}

func TestCardList(t *testing.T) {
	results := []state.CardSearchResult{
		{Index: 1, Ability: "a"},
		{Index: 2, Ability: "b"},
	}
	w := CardList("luke", results)
	if w.Type != TypeCardList {
		t.Errorf("type = %q", w.Type)
	}
	payload := w.Payload.(CardListPayload)
	if payload.Query != "luke" || len(payload.Cards) != 2 || payload.Cards[1].Index != 2 {
		t.Errorf("payload = %+v", payload)
	}
}
