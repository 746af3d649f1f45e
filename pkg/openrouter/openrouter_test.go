package openrouter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewWithoutAPIKey(t *testing.T) {
	t.Parallel()

	cfg := Config{Model: "some/model"}
	if _, err := cfg.New(context.Background()); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("New() error = %v, want ErrMissingAPIKey", err)
	}
}

func TestNewClientWithoutAPIKey(t *testing.T) {
	t.Parallel()

	if client := NewClient(Config{APIKey: "   "}); client != nil {
		t.Fatal("expected nil client for blank api key")
	}
}

func TestCheckModel(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"vendor/model-a","object":"model","created":0,"owned_by":"vendor"}`)
	}))
	t.Cleanup(server.Close)

	id, err := CheckModel(context.Background(), Config{
		BaseURL: server.URL,
		APIKey:  "key",
		Model:   "vendor/model-a",
	})
	if err != nil {
		t.Fatalf("CheckModel() error = %v", err)
	}
	if id != "vendor/model-a" {
		t.Fatalf("CheckModel() = %q, want %q", id, "vendor/model-a")
	}
	if gotPath != "/models/vendor/model-a" {
		t.Fatalf("request path = %q", gotPath)
	}
	if gotAuth != "Bearer key" {
		t.Fatalf("authorization header = %q", gotAuth)
	}
}
