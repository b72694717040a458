// Package widget builds the structured payloads rendered by chat frontends.
package widget

import (
	"fmt"
	"sort"

	"github.com/swubot/swubot/internal/state"
	"github.com/swubot/swubot/internal/swustats"
)

const (
	TypeCardList = "card_list"
	TypeDeckList = "deck_list"
)

// Widget is a renderable payload attached to a chat item.
type Widget struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// CardRow is one card in a card list widget.
type CardRow struct {
	Index   int    `json:"index"`
	Ability string `json:"ability"`
}

// CardListPayload lists the results of one search.
type CardListPayload struct {
	Query string    `json:"query"`
	Cards []CardRow `json:"cards"`
}

// CardList builds a card list widget from indexed search results.
func CardList(query string, results []state.CardSearchResult) Widget {
	rows := make([]CardRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, CardRow{Index: r.Index, Ability: r.Ability})
	}
	return Widget{Type: TypeCardList, Payload: CardListPayload{Query: query, Cards: rows}}
}

// DeckRow is one deck in a deck list widget. Each row carries a select_deck
// action target on the frontend.
type DeckRow struct {
	ID         int    `json:"deck_id"`
	Name       string `json:"name"`
	IsFavorite bool   `json:"is_favorite"`
	IsActive   bool   `json:"is_active"`
}

// DeckListPayload lists the user's decks with the active one highlighted.
type DeckListPayload struct {
	Decks []DeckRow `json:"decks"`
}

// DeckList builds a deck list widget. Favorites sort ahead of the rest;
// within each group decks sort by name. Unnamed decks get a placeholder.
func DeckList(decks []swustats.DeckSummary, active *state.ActiveDeck) Widget {
	rows := make([]DeckRow, 0, len(decks))
	for _, d := range decks {
		name := d.Name
		if name == "" {
			name = fmt.Sprintf("Unnamed Deck #%d", d.ID)
		}
		row := DeckRow{ID: d.ID, Name: name, IsFavorite: d.IsFavorite}
		if active != nil && active.ID == d.ID {
			row.IsActive = true
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].IsFavorite != rows[j].IsFavorite {
			return rows[i].IsFavorite
		}
		return rows[i].Name < rows[j].Name
	})

	return Widget{Type: TypeDeckList, Payload: DeckListPayload{Decks: rows}}
}
