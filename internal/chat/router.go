package chat

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/swubot/swubot/internal/tools"
)

// rule maps a message pattern to a tool call. Rules are checked in order;
// the first match wins.
type rule struct {
	pattern *regexp.Regexp
	handle  func(ctx context.Context, threadID string, m []string) tools.Result
}

// Router dispatches user messages to tools by pattern matching.
type Router struct {
	rules []rule
}

func newRouter(s *Server) *Router {
	return &Router{rules: []rule{
		{
			// "show card 3", "card 2", "tell me about result 5"
			pattern: regexp.MustCompile(`(?i)\b(?:card|result)\s+#?(\d+)\b`),
			handle: func(ctx context.Context, threadID string, m []string) tools.Result {
				index, _ := strconv.Atoi(m[1])
				return s.tools.GetCardFromResults(threadID, index)
			},
		},
		{
			pattern: regexp.MustCompile(`(?i)\b(?:clear|unset|deselect)\b.*\bdeck\b`),
			handle: func(ctx context.Context, threadID string, m []string) tools.Result {
				return s.tools.ClearActiveDeck(threadID)
			},
		},
		{
			// "what's in deck 42", "load deck 42", "deck 42 contents"
			pattern: regexp.MustCompile(`(?i)\bdeck\s+#?(\d+)\b`),
			handle: func(ctx context.Context, threadID string, m []string) tools.Result {
				deckID, _ := strconv.Atoi(m[1])
				return s.tools.LoadDeckContents(ctx, threadID, deckID)
			},
		},
		{
			// "what's in my deck", "deck contents", "show my active deck list"
			pattern: regexp.MustCompile(`(?i)\b(?:contents|what'?s in)\b.*\bdeck\b|\bdeck\b.*\bcontents\b`),
			handle: func(ctx context.Context, threadID string, m []string) tools.Result {
				return s.tools.LoadDeckContents(ctx, threadID, 0)
			},
		},
		{
			pattern: regexp.MustCompile(`(?i)\b(?:which|what|current|active)\b.*\bdeck\b`),
			handle: func(ctx context.Context, threadID string, m []string) tools.Result {
				return s.tools.GetActiveDeck(threadID)
			},
		},
		{
			pattern: regexp.MustCompile(`(?i)\b(?:my|list|show|get)\b.*\bdecks\b`),
			handle: func(ctx context.Context, threadID string, m []string) tools.Result {
				return s.tools.GetUserDecks(ctx, threadID)
			},
		},
		{
			// "search for X", "find cards that X", "search X"
			pattern: regexp.MustCompile(`(?i)^(?:search|find|look up|lookup)(?:\s+for)?(?:\s+cards?)?(?:\s+(?:that|matching|named|with|about))?\s+(.+)$`),
			handle: func(ctx context.Context, threadID string, m []string) tools.Result {
				return s.tools.SearchCards(ctx, threadID, strings.TrimSpace(m[1]))
			},
		},
	}}
}

func (r *Router) dispatch(ctx context.Context, threadID, userText string) tools.Result {
	text := strings.TrimSpace(userText)
	for _, rule := range r.rules {
		if m := rule.pattern.FindStringSubmatch(text); m != nil {
			return rule.handle(ctx, threadID, m)
		}
	}
	return tools.Result{Text: "I can search cards (\"search for heal\"), list your decks " +
		"(\"show my decks\"), pick a card from results (\"card 3\"), or manage your active deck " +
		"(\"which deck is active?\", \"clear my deck\")."}
}
