// Package config holds shared configuration for the swubot backend.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default access token for the SWU stats API, used when
// SWUSTATS_ACCESS_TOKEN is not set.
const defaultAccessToken = "4fd1d0367088595aa4466645d495fc8e471e24f2"

// Config holds service configuration, populated from environment variables.
type Config struct {
	Port           string        // HTTP port (default "8080")
	AccessToken    string        // SWU stats API access token
	StatsAPIBase   string        // SWU stats API base URL
	CardSearchURL  string        // Card search HTML endpoint
	RequestTimeout time.Duration // Per-request timeout for remote calls
	DiscordToken   string        // Discord bot token (optional)
	DiscordChannel string        // Discord channel allowlist (optional)
	LogFile        string        // Rotating log file path (optional)
	PersonaPath    string        // Assistant persona YAML (optional)
}

// Load reads configuration from the environment.
func Load() Config {
	return Config{
		Port:           envOr("PORT", "8080"),
		AccessToken:    envOr("SWUSTATS_ACCESS_TOKEN", defaultAccessToken),
		StatsAPIBase:   envOr("SWUSTATS_API_BASE", "https://swustats.net/TCGEngine/APIs"),
		CardSearchURL:  envOr("CARD_SEARCH_URL", "http://142.11.210.6/es/swucardsearch.php"),
		RequestTimeout: 10 * time.Second,
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordChannel: os.Getenv("DISCORD_CHANNEL_ID"),
		LogFile:        os.Getenv("LOG_FILE"),
		PersonaPath:    envOr("PERSONA_PATH", "persona.yaml"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Persona describes the assistant as presented to users and to the
// conversation orchestrator.
type Persona struct {
	Name         string   `yaml:"name"`
	Instructions string   `yaml:"instructions"`
	Starters     []string `yaml:"starters"`
}

// DefaultPersona is used when no persona file is present.
func DefaultPersona() Persona {
	return Persona{
		Name: "Card Search & Deck Assistant",
		Instructions: "You are an expert Star Wars Unlimited card game assistant. " +
			"You help players search for cards and manage their deck lists.",
		Starters: []string{
			"Find cards that deal damage",
			"Show my decks",
			"Which deck is active?",
		},
	}
}

// LoadPersona reads a persona YAML file. A missing file is not an error;
// the default persona is returned instead.
func LoadPersona(path string) (Persona, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultPersona(), nil
	}
	if err != nil {
		return DefaultPersona(), fmt.Errorf("read persona: %w", err)
	}

	p := DefaultPersona()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return DefaultPersona(), fmt.Errorf("parse persona: %w", err)
	}
	return p, nil
}
