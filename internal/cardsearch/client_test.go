package cardsearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSearchExtractsListItems(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotQuery = r.FormValue("searchInput")
		w.Write([]byte(`<html><body>
			<h1>Results</h1>
			<ul>
				<li>Luke Skywalker: When played, deal 2 damage.</li>
				<li><b>Luke's</b> Lightsaber: Attach to a unit.</li>
				<li>   </li>
				<li>Red Five: Restore 1.</li>
			</ul>
			<ul><li>footer link</li></ul>
		</body></html>`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	cards, err := c.Search(context.Background(), "Luke")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if gotQuery != "Luke" {
		t.Errorf("posted query = %q, want Luke", gotQuery)
	}
	if len(cards) != 3 {
		t.Fatalf("got %d cards, want 3", len(cards))
	}
	if cards[0].Ability != "Luke Skywalker: When played, deal 2 damage." {
		t.Errorf("card 1 = %q", cards[0].Ability)
	}
	if cards[1].Ability != "Luke's Lightsaber: Attach to a unit." {
		t.Errorf("card 2 markup not stripped: %q", cards[1].Ability)
	}
	if cards[2].Ability != "Red Five: Restore 1." {
		t.Errorf("card 3 = %q", cards[2].Ability)
	}
}

func TestSearchNoList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>nothing here</p></body></html>`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	cards, err := c.Search(context.Background(), "zzz")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(cards) != 0 {
		t.Errorf("got %d cards, want 0", len(cards))
	}
}

func TestSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if _, err := c.Search(context.Background(), "Luke"); err == nil {
		t.Fatal("expected error for 500 response")
	}
}
