package mcpadapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/askcampus/askcampus/internal/core/domain"
)

func TestHTTPQueryClientAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/qa/query" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req["question"] != "fee?" {
			t.Errorf("question not forwarded: %v", req)
		}
		_ = json.NewEncoder(w).Encode(domain.Answer{Text: "120000 rupees", Grounded: true})
	}))
	defer server.Close()

	client := NewHTTPQueryClient(server.URL, time.Second)
	answer, err := client.Answer(context.Background(), "fee?", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Text != "120000 rupees" || !answer.Grounded {
		t.Errorf("unexpected answer: %+v", answer)
	}
}

func TestHTTPQueryClientServiceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "try again"})
	}))
	defer server.Close()

	client := NewHTTPQueryClient(server.URL, time.Second)
	_, err := client.Answer(context.Background(), "fee?", 0)
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}

func TestHTTPQueryClientConnectionRefused(t *testing.T) {
	client := NewHTTPQueryClient("http://127.0.0.1:1", 100*time.Millisecond)
	_, err := client.Answer(context.Background(), "fee?", 0)
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}
