// swubot is the card assistant backend: an HTTP chat API over the card
// search and deck tools, with an optional Discord ingress.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/swubot/swubot/internal/cardsearch"
	"github.com/swubot/swubot/internal/chat"
	"github.com/swubot/swubot/internal/config"
	"github.com/swubot/swubot/internal/httpapi"
	"github.com/swubot/swubot/internal/logging"
	"github.com/swubot/swubot/internal/senses"
	"github.com/swubot/swubot/internal/state"
	"github.com/swubot/swubot/internal/swustats"
	"github.com/swubot/swubot/internal/tools"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	if cfg.LogFile != "" {
		logging.UseFile(cfg.LogFile)
	}

	persona, err := config.LoadPersona(cfg.PersonaPath)
	if err != nil {
		logging.Info("main", "persona load failed, using default: %v", err)
	}

	store := state.NewStore()
	searchClient := cardsearch.NewClient(cfg.CardSearchURL, cfg.RequestTimeout)
	deckClient := swustats.NewClient(cfg.StatsAPIBase, cfg.AccessToken, cfg.RequestTimeout)

	toolset := tools.New(tools.Dependencies{
		Store:  store,
		Search: searchClient,
		Decks:  deckClient,
	})
	chatServer := chat.NewServer(toolset, deckClient, store)
	api := httpapi.New(chatServer, store, deckClient, persona)

	var discord *senses.DiscordSense
	if cfg.DiscordToken != "" {
		discord, err = senses.NewDiscordSense(senses.DiscordConfig{
			Token:     cfg.DiscordToken,
			ChannelID: cfg.DiscordChannel,
		}, chatServer)
		if err != nil {
			logging.Info("main", "discord setup failed: %v", err)
		} else if err := discord.Start(); err != nil {
			logging.Info("main", "discord connect failed: %v", err)
			discord = nil
		}
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.Handler(),
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logging.Info("main", "Shutting down...")
		if discord != nil {
			discord.Stop()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	logging.Info("main", "%s listening on :%s", persona.Name, cfg.Port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logging.Info("main", "Server error: %v", err)
		os.Exit(1)
	}
}
