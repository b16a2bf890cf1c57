package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"cycle-radar/internal/domain"
	"cycle-radar/internal/storage/memory"
)

func newFearGreedServer(t *testing.T, body string, lastLimit *string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*lastLimit = r.URL.Query().Get("limit")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestFearGreed_ParsesStringFields(t *testing.T) {
	var lastLimit string
	server := newFearGreedServer(t, `{"data":[
		{"value":"72","value_classification":"Greed","timestamp":"1761955200"},
		{"value":"65","value_classification":"Greed","timestamp":"1761868800"}
	]}`, &lastLimit)

	sentiment := memory.NewSentimentStore()
	if err := sentiment.AppendRows(context.Background(), []domain.Row{
		domain.SentimentObservation{Timestamp: 1, Value: 50, Classification: "Neutral"}.Row(),
	}); err != nil {
		t.Fatalf("seed sentiment: %v", err)
	}

	source := NewFearGreed(FearGreedOptions{
		BaseURL:        server.URL,
		SentimentStore: sentiment,
		Limit:          7,
	})
	batches, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if lastLimit != "7" {
		t.Errorf("limit param = %q, want 7 on a seeded store", lastLimit)
	}
	if len(batches) != 1 || batches[0].Table != domain.SentimentTable.Name {
		t.Fatalf("Unexpected batches: %+v", batches)
	}
	rows := batches[0].Rows
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0]["timestamp"] != int64(1761955200) {
		t.Errorf("timestamp = %v", rows[0]["timestamp"])
	}
	if rows[0]["value"] != float64(72) {
		t.Errorf("value = %v", rows[0]["value"])
	}
	if rows[0]["value_classification"] != "Greed" {
		t.Errorf("classification = %v", rows[0]["value_classification"])
	}
}

// An empty store requests the full history instead of the incremental tail.
func TestFearGreed_EmptyStoreFetchesFullHistory(t *testing.T) {
	var lastLimit string
	server := newFearGreedServer(t, `{"data":[]}`, &lastLimit)

	source := NewFearGreed(FearGreedOptions{
		BaseURL:        server.URL,
		SentimentStore: memory.NewSentimentStore(),
		Limit:          7,
	})
	batches, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if lastLimit != "0" {
		t.Errorf("limit param = %q, want 0 on an empty store", lastLimit)
	}
	if len(batches) != 0 {
		t.Errorf("Expected no batches from empty data, got %+v", batches)
	}
}

func TestFearGreed_UnparseableValueFails(t *testing.T) {
	var lastLimit string
	server := newFearGreedServer(t, `{"data":[
		{"value":"not-a-number","value_classification":"Greed","timestamp":"1761955200"}
	]}`, &lastLimit)

	source := NewFearGreed(FearGreedOptions{
		BaseURL:        server.URL,
		SentimentStore: memory.NewSentimentStore(),
	})
	if _, err := source.Fetch(context.Background()); err == nil {
		t.Error("Expected parse error")
	}
}

func TestFearGreed_UpstreamErrorFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	source := NewFearGreed(FearGreedOptions{
		BaseURL:        server.URL,
		SentimentStore: memory.NewSentimentStore(),
	})
	if _, err := source.Fetch(context.Background()); err == nil {
		t.Error("Expected error on 502")
	}
}
