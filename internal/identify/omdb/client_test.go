package omdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestByIMDBIDParsesEnrichment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("i"); got != "tt0499549" {
			t.Errorf("i = %q", got)
		}
		w.Write([]byte(`{"Response":"True","Director":"James Cameron","Rated":"PG-13"}`))
	}))
	defer server.Close()

	client, err := New("key", server.URL)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	enrichment, err := client.ByIMDBID(context.Background(), "tt0499549")
	if err != nil {
		t.Fatalf("ByIMDBID failed: %v", err)
	}
	if enrichment.Director != "James Cameron" || enrichment.Rating != "PG-13" {
		t.Fatalf("unexpected enrichment: %#v", enrichment)
	}
}

func TestByIMDBIDSurfacesInBandError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":"False","Error":"Incorrect IMDb ID."}`))
	}))
	defer server.Close()

	client, err := New("key", server.URL)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := client.ByIMDBID(context.Background(), "tt0000000"); err == nil {
		t.Fatal("expected error for Response=False payload")
	}
}

func TestByIMDBIDDropsNAPlaceholders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":"True","Director":"N/A","Rated":"N/A"}`))
	}))
	defer server.Close()

	client, err := New("key", server.URL)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	enrichment, err := client.ByIMDBID(context.Background(), "tt0499549")
	if err != nil {
		t.Fatalf("ByIMDBID failed: %v", err)
	}
	if enrichment.Director != "" || enrichment.Rating != "" {
		t.Fatalf("expected N/A fields cleared, got %#v", enrichment)
	}
}
