package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNotify_PostsToWebhook(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content-type = %q, want application/json", r.Header.Get("Content-Type"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL)
	err := n.Notify(context.Background(), "user-42", "Acme recalls frozen peas", "Acme")
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if got["owner_id"] != "user-42" {
		t.Errorf("owner_id = %v, want user-42", got["owner_id"])
	}
	if got["recall_title"] != "Acme recalls frozen peas" {
		t.Errorf("recall_title = %v", got["recall_title"])
	}
	if got["matched_value"] != "Acme" {
		t.Errorf("matched_value = %v, want Acme", got["matched_value"])
	}
	if got["sent_at"] == "" {
		t.Error("sent_at missing from payload")
	}
}

func TestNotify_NoOpWithoutURL(t *testing.T) {
	t.Parallel()

	n := New("")
	if err := n.Notify(context.Background(), "user-42", "title", "value"); err != nil {
		t.Fatalf("Notify with empty URL should be no-op, got: %v", err)
	}
}

func TestNotify_Non2xxIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	n := New(srv.URL)
	if err := n.Notify(context.Background(), "user-42", "title", "value"); err == nil {
		t.Fatal("want error on non-2xx response")
	}
}
