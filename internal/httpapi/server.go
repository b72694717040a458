// Package httpapi exposes the chat server and deck state over HTTP.
package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/swubot/swubot/internal/chat"
	"github.com/swubot/swubot/internal/config"
	"github.com/swubot/swubot/internal/logging"
	"github.com/swubot/swubot/internal/state"
	"github.com/swubot/swubot/internal/swustats"
	"github.com/swubot/swubot/internal/tools"
)

// Server is the HTTP facade over the chat responder and state store.
type Server struct {
	responder chat.Responder
	store     *state.Store
	decks     tools.DeckAPI
	persona   config.Persona
}

// New creates the HTTP facade.
func New(responder chat.Responder, store *state.Store, decks tools.DeckAPI, persona config.Persona) *Server {
	return &Server{responder: responder, store: store, decks: decks, persona: persona}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /api/deck-state/{threadID}", s.handleDeckState)
	mux.HandleFunc("GET /api/deck/{deckID}", s.handleDeck)
	mux.HandleFunc("GET /api/persona", s.handlePersona)
	mux.HandleFunc("GET /health", s.handleHealth)
	return withCORS(mux)
}

// ChatRequest is the request body for POST /chat. Exactly one of Message or
// Action should be set.
type ChatRequest struct {
	ThreadID string       `json:"thread_id"`
	Message  string       `json:"message,omitempty"`
	Action   *chat.Action `json:"action,omitempty"`
}

// handleChat runs one conversation turn and streams the resulting events as
// SSE, one event per item.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.ThreadID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "thread_id is required"})
		return
	}
	if req.Message == "" && req.Action == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message or action is required"})
		return
	}

	var events []chat.Event
	if req.Action != nil {
		events = s.responder.HandleAction(r.Context(), req.ThreadID, *req.Action)
	} else {
		events = s.responder.Respond(r.Context(), req.ThreadID, req.Message)
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"events": events})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for _, ev := range events {
		data, err := json.Marshal(ev)
		if err != nil {
			logging.Info("httpapi", "marshal event failed: %v", err)
			continue
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
		flusher.Flush()
	}
	fmt.Fprint(w, "event: done\ndata: {}\n\n")
	flusher.Flush()
}

// DeckStateResponse is the body for GET /api/deck-state/{threadID}.
type DeckStateResponse struct {
	ThreadID   string          `json:"thread_id"`
	ActiveDeck *ActiveDeckInfo `json:"active_deck"`
	Contents   *swustats.Deck  `json:"contents,omitempty"`
}

// ActiveDeckInfo identifies the active deck in API responses.
type ActiveDeckInfo struct {
	ID   int    `json:"deck_id"`
	Name string `json:"name"`
}

// handleDeckState returns a thread's deck state. When a deck is active but
// its contents are not cached, they are fetched and cached here.
func (s *Server) handleDeckState(w http.ResponseWriter, r *http.Request) {
	threadID := r.PathValue("threadID")
	snap := s.store.Snapshot(threadID)

	resp := DeckStateResponse{ThreadID: threadID}
	if snap.Active != nil {
		resp.ActiveDeck = &ActiveDeckInfo{ID: snap.Active.ID, Name: snap.Active.Name}
		resp.Contents = snap.Contents
		if resp.Contents == nil {
			deck, err := s.decks.LoadDeck(r.Context(), snap.Active.ID)
			if err != nil {
				logging.Info("httpapi", "lazy contents fetch for deck %d failed: %v", snap.Active.ID, err)
			} else {
				s.store.CacheDeckContents(threadID, snap.Active.ID, deck)
				resp.Contents = deck
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleDeck returns raw contents for any deck id, bypassing thread state.
func (s *Server) handleDeck(w http.ResponseWriter, r *http.Request) {
	deckID, err := strconv.Atoi(r.PathValue("deckID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "deck id must be an integer"})
		return
	}
	deck, err := s.decks.LoadDeck(r.Context(), deckID)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

// handlePersona exposes the assistant's name and starter prompts for
// frontend greeting screens.
func (s *Server) handlePersona(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":     s.persona.Name,
		"starters": s.persona.Starters,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	searches, decks := s.store.Counts()
	health := map[string]any{
		"status":         "ok",
		"search_threads": searches,
		"deck_threads":   decks,
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if cpu, err := proc.CPUPercent(); err == nil {
			health["cpu_percent"] = cpu
		}
		if mem, err := proc.MemoryInfo(); err == nil {
			health["rss_bytes"] = mem.RSS
		}
	}

	writeJSON(w, http.StatusOK, health)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
