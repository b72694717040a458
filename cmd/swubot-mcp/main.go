// swubot-mcp exposes the card assistant's tools over stdio MCP, so external
// agent runtimes can search cards and manage decks directly.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/swubot/swubot/internal/cardsearch"
	"github.com/swubot/swubot/internal/config"
	"github.com/swubot/swubot/internal/state"
	"github.com/swubot/swubot/internal/swustats"
	"github.com/swubot/swubot/internal/tools"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	store := state.NewStore()
	toolset := tools.New(tools.Dependencies{
		Store:  store,
		Search: cardsearch.NewClient(cfg.CardSearchURL, cfg.RequestTimeout),
		Decks:  swustats.NewClient(cfg.StatsAPIBase, cfg.AccessToken, cfg.RequestTimeout),
	})

	s := server.NewMCPServer(
		"swubot-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.AddTool(searchCardsTool(), handleSearchCards(toolset))
	s.AddTool(getUserDecksTool(), handleGetUserDecks(toolset))
	s.AddTool(getCardFromResultsTool(), handleGetCardFromResults(toolset))
	s.AddTool(setActiveDeckTool(), handleSetActiveDeck(toolset))
	s.AddTool(getActiveDeckTool(), handleGetActiveDeck(toolset))
	s.AddTool(clearActiveDeckTool(), handleClearActiveDeck(toolset))
	s.AddTool(loadDeckContentsTool(), handleLoadDeckContents(toolset))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

// threadArg reads the optional thread_id argument. MCP sessions that don't
// track threads share one default thread.
func threadArg(args map[string]any) string {
	if id, ok := args["thread_id"].(string); ok && id != "" {
		return id
	}
	return "mcp"
}

func arguments(req mcp.CallToolRequest) map[string]any {
	args, _ := req.Params.Arguments.(map[string]any)
	return args
}

func searchCardsTool() mcp.Tool {
	return mcp.NewTool("search_cards",
		mcp.WithDescription("Search for cards by ability text or name. Results are stored per thread and can be referenced by index afterwards."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search text, passed verbatim to the card search engine"),
		),
		mcp.WithString("thread_id",
			mcp.Description("Conversation thread id (default: mcp)"),
		),
	)
}

func handleSearchCards(ts *tools.Toolset) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := arguments(req)
		query, _ := args["query"].(string)
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		res := ts.SearchCards(ctx, threadArg(args), query)
		return mcp.NewToolResultText(res.Text), nil
	}
}

func getUserDecksTool() mcp.Tool {
	return mcp.NewTool("get_user_decks",
		mcp.WithDescription("List the user's decks from the stats service, favorites first."),
		mcp.WithString("thread_id",
			mcp.Description("Conversation thread id (default: mcp)"),
		),
	)
}

func handleGetUserDecks(ts *tools.Toolset) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res := ts.GetUserDecks(ctx, threadArg(arguments(req)))
		return mcp.NewToolResultText(res.Text), nil
	}
}

func getCardFromResultsTool() mcp.Tool {
	return mcp.NewTool("get_card_from_results",
		mcp.WithDescription("Get one card from the thread's most recent search results by its 1-based index."),
		mcp.WithNumber("index",
			mcp.Required(),
			mcp.Description("1-based result index"),
		),
		mcp.WithString("thread_id",
			mcp.Description("Conversation thread id (default: mcp)"),
		),
	)
}

func handleGetCardFromResults(ts *tools.Toolset) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := arguments(req)
		index, ok := args["index"].(float64)
		if !ok {
			return mcp.NewToolResultError("index is required"), nil
		}
		res := ts.GetCardFromResults(threadArg(args), int(index))
		return mcp.NewToolResultText(res.Text), nil
	}
}

func setActiveDeckTool() mcp.Tool {
	return mcp.NewTool("set_active_deck",
		mcp.WithDescription("Set the thread's active deck. Contents are fetched and cached for later reads."),
		mcp.WithNumber("deck_id",
			mcp.Required(),
			mcp.Description("Deck id from get_user_decks"),
		),
		mcp.WithString("deck_name",
			mcp.Required(),
			mcp.Description("Deck display name"),
		),
		mcp.WithString("thread_id",
			mcp.Description("Conversation thread id (default: mcp)"),
		),
	)
}

func handleSetActiveDeck(ts *tools.Toolset) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := arguments(req)
		deckID, ok := args["deck_id"].(float64)
		if !ok {
			return mcp.NewToolResultError("deck_id is required"), nil
		}
		name, _ := args["deck_name"].(string)
		if name == "" {
			return mcp.NewToolResultError("deck_name is required"), nil
		}
		res := ts.SetActiveDeck(ctx, threadArg(args), int(deckID), name)
		return mcp.NewToolResultText(res.Text), nil
	}
}

func getActiveDeckTool() mcp.Tool {
	return mcp.NewTool("get_active_deck",
		mcp.WithDescription("Report the thread's current active deck, if any."),
		mcp.WithString("thread_id",
			mcp.Description("Conversation thread id (default: mcp)"),
		),
	)
}

func handleGetActiveDeck(ts *tools.Toolset) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res := ts.GetActiveDeck(threadArg(arguments(req)))
		return mcp.NewToolResultText(res.Text), nil
	}
}

func clearActiveDeckTool() mcp.Tool {
	return mcp.NewTool("clear_active_deck",
		mcp.WithDescription("Clear the thread's active deck selection."),
		mcp.WithString("thread_id",
			mcp.Description("Conversation thread id (default: mcp)"),
		),
	)
}

func handleClearActiveDeck(ts *tools.Toolset) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res := ts.ClearActiveDeck(threadArg(arguments(req)))
		return mcp.NewToolResultText(res.Text), nil
	}
}

func loadDeckContentsTool() mcp.Tool {
	return mcp.NewTool("load_deck_contents",
		mcp.WithDescription("Summarize a deck's contents. Defaults to the thread's active deck when deck_id is omitted."),
		mcp.WithNumber("deck_id",
			mcp.Description("Deck id; omit to use the active deck"),
		),
		mcp.WithString("thread_id",
			mcp.Description("Conversation thread id (default: mcp)"),
		),
	)
}

func handleLoadDeckContents(ts *tools.Toolset) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := arguments(req)
		deckID := 0
		if id, ok := args["deck_id"].(float64); ok {
			deckID = int(id)
		}
		res := ts.LoadDeckContents(ctx, threadArg(args), deckID)
		return mcp.NewToolResultText(res.Text), nil
	}
}
