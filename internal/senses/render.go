package senses

import (
	"fmt"
	"strings"

	"github.com/swubot/swubot/internal/widget"
)

func renderWidget(w *widget.Widget) string {
	switch payload := w.Payload.(type) {
	case widget.CardListPayload:
		var b strings.Builder
		for _, card := range payload.Cards {
			fmt.Fprintf(&b, "%d. %s\n", card.Index, card.Ability)
		}
		return strings.TrimRight(b.String(), "\n")
	case widget.DeckListPayload:
		var b strings.Builder
		for _, deck := range payload.Decks {
			marker := ""
			if deck.IsFavorite {
				marker = " ★"
			}
			if deck.IsActive {
				marker += " (active)"
			}
			fmt.Fprintf(&b, "- %s (ID: %d)%s\n", deck.Name, deck.ID, marker)
		}
		return strings.TrimRight(b.String(), "\n")
	default:
		return ""
	}
}
