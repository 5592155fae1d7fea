package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"telemed-ai/internal/consultation"
)

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	if _, err := NewGeminiClient(context.Background(), "", ""); !errors.Is(err, consultation.ErrMissingCredential) {
		t.Errorf("Expected ErrMissingCredential, got %v", err)
	}
}

func TestGeminiClient_Complete(t *testing.T) {
	var path string
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Stay hydrated."}]}}]}`))
	}))
	defer srv.Close()

	g, err := NewGeminiClient(context.Background(), "test-key", srv.URL)
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}

	text, err := g.Complete(context.Background(), consultation.ChatRequest{
		Model: "google/gemini-2.5-flash",
		Messages: []consultation.Message{
			{Role: consultation.RoleSystem, Content: "be brief"},
			{Role: consultation.RoleUser, Content: "fever"},
		},
		Temperature: 0.7,
		MaxTokens:   200,
	})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if text != "Stay hydrated." {
		t.Errorf("Unexpected text %q", text)
	}
	if !strings.HasSuffix(path, "/models/gemini-2.5-flash:generateContent") {
		t.Errorf("Unexpected path %q", path)
	}
	if _, ok := body["systemInstruction"]; !ok {
		t.Errorf("Expected systemInstruction in request, got %v", body)
	}
	contents, _ := body["contents"].([]any)
	if len(contents) != 1 {
		t.Errorf("Expected a single user content, got %v", body["contents"])
	}
}

func TestGeminiClient_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"API key not valid","status":"PERMISSION_DENIED"}}`))
	}))
	defer srv.Close()

	g, err := NewGeminiClient(context.Background(), "bad-key", srv.URL)
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}

	_, err = g.Complete(context.Background(), consultation.ChatRequest{
		Model:    "gemini-2.5-flash",
		Messages: []consultation.Message{{Role: consultation.RoleUser, Content: "fever"}},
	})
	var upstream *consultation.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("Expected *UpstreamError, got %T %v", err, err)
	}
	if upstream.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", upstream.StatusCode)
	}
}
