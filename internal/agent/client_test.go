package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"telemed-ai/internal/consultation"
)

func TestGatewayClient_Complete(t *testing.T) {
	var got chatRequest
	var auth, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Rest and drink fluids."}}]}`))
	}))
	defer srv.Close()

	c := NewGatewayClient(srv.URL+"/v1/", "test-key")
	text, err := c.Complete(context.Background(), consultation.ChatRequest{
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
	if text != "Rest and drink fluids." {
		t.Errorf("Unexpected text %q", text)
	}
	if path != "/v1/chat/completions" {
		t.Errorf("Unexpected path %q", path)
	}
	if auth != "Bearer test-key" {
		t.Errorf("Unexpected Authorization %q", auth)
	}
	if got.Model != "google/gemini-2.5-flash" || got.Temperature != 0.7 || got.MaxTokens != 200 {
		t.Errorf("Unexpected payload %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "fever" {
		t.Errorf("Unexpected messages %+v", got.Messages)
	}
}

func TestGatewayClient_Errors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		_, err := NewGatewayClient("http://unused", "").Complete(context.Background(), consultation.ChatRequest{})
		if !errors.Is(err, consultation.ErrMissingCredential) {
			t.Errorf("Expected ErrMissingCredential, got %v", err)
		}
	})

	t.Run("non-2xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"slow down"}`))
		}))
		defer srv.Close()

		_, err := NewGatewayClient(srv.URL, "k").Complete(context.Background(), consultation.ChatRequest{})
		var upstream *consultation.UpstreamError
		if !errors.As(err, &upstream) {
			t.Fatalf("Expected *UpstreamError, got %v", err)
		}
		if upstream.StatusCode != 429 || !strings.Contains(upstream.Body, "slow down") {
			t.Errorf("Unexpected upstream error %+v", upstream)
		}
	})

	t.Run("no choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		_, err := NewGatewayClient(srv.URL, "k").Complete(context.Background(), consultation.ChatRequest{})
		if !errors.Is(err, consultation.ErrEmptyCompletion) {
			t.Errorf("Expected ErrEmptyCompletion, got %v", err)
		}
	})
}

// The relay endpoint backed by a real gateway client against a fake provider.
func TestRelayThroughGateway(t *testing.T) {
	tests := []struct {
		name       string
		upstream   int
		wantStatus int
		wantBody   string
	}{
		{"ok", 200, 200, `{"response":"Rest and drink fluids."}`},
		{"rate limited", 429, 429, `{"error":"Rate limit exceeded. Please try again later.","category":"rate_limited"}`},
		{"payment required", 402, 402, `{"error":"Service temporarily unavailable. Please contact support.","category":"unavailable"}`},
		{"server error", 503, 500, `{"error":"AI API returned 503","category":"generic"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var prompt chatRequest
			provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewDecoder(r.Body).Decode(&prompt)
				w.WriteHeader(tt.upstream)
				if tt.upstream == 200 {
					w.Write([]byte(`{"choices":[{"message":{"content":"Rest and drink fluids."}}]}`))
				}
			}))
			defer provider.Close()

			svc := consultation.NewService(NewGatewayClient(provider.URL, "k"), nil, consultation.DefaultRelayConfig())
			r := chi.NewRouter()
			consultation.RegisterRelay(r, consultation.NewHandler(svc, nil))

			req := httptest.NewRequest(http.MethodPost, "/functions/v1/ai-consultation",
				strings.NewReader(`{"query":"fever and headache","language":"english"}`))
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("Expected %d, got %d", tt.wantStatus, rr.Code)
			}
			if got := strings.TrimSpace(rr.Body.String()); got != tt.wantBody {
				t.Errorf("Unexpected body:\n got %s\nwant %s", got, tt.wantBody)
			}
			if len(prompt.Messages) != 2 || strings.Contains(prompt.Messages[0].Content, "Patient History") {
				t.Errorf("Unexpected prompt %+v", prompt.Messages)
			}
		})
	}
}
