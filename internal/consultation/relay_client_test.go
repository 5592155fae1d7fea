package consultation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRelayClient_Success(t *testing.T) {
	var got Request
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Write([]byte(`{"response":"Drink fluids."}`))
	}))
	defer srv.Close()

	c := NewRelayClient(srv.URL, "anon-key", time.Second)
	reply, err := c.Consult(context.Background(), Request{
		Query:          "fever",
		Language:       Hindi,
		PatientHistory: json.RawMessage(`{"condition":"asthma"}`),
	})
	if err != nil {
		t.Fatalf("Consult returned error: %v", err)
	}
	if reply != "Drink fluids." {
		t.Errorf("Unexpected reply %q", reply)
	}
	if auth != "Bearer anon-key" {
		t.Errorf("Unexpected Authorization header %q", auth)
	}
	if got.Query != "fever" || got.Language != Hindi || string(got.PatientHistory) != `{"condition":"asthma"}` {
		t.Errorf("Unexpected request %+v", got)
	}
}

func TestRelayClient_ErrorStatuses(t *testing.T) {
	tests := []struct {
		status       int
		body         string
		wantCategory Category
		wantMessage  string
	}{
		{429, `{"error":"Rate limit exceeded. Please try again later.","category":"rate_limited"}`, CategoryRateLimited, msgRateLimited},
		{402, `{"error":"Service temporarily unavailable. Please contact support."}`, CategoryUnavailable, msgUnavailable},
		{504, `{"error":"Consultation timed out. Please try again."}`, CategoryTimeout, msgTimeout},
		{500, `{"error":"AI API returned 500"}`, CategoryGeneric, "AI API returned 500"},
		{502, `<html>bad gateway</html>`, CategoryGeneric, "relay returned 502 Bad Gateway"},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(tt.body))
		}))

		_, err := NewRelayClient(srv.URL, "", time.Second).Consult(context.Background(), Request{Query: "cough", Language: English})
		srv.Close()

		var relayErr *RelayError
		if !errors.As(err, &relayErr) {
			t.Errorf("status %d: expected *RelayError, got %v", tt.status, err)
			continue
		}
		if relayErr.Category != tt.wantCategory || relayErr.Message != tt.wantMessage || relayErr.Status != tt.status {
			t.Errorf("status %d: got %+v, want category=%s message=%q", tt.status, relayErr, tt.wantCategory, tt.wantMessage)
		}
	}
}

func TestRelayClient_Timeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	_, err := NewRelayClient(srv.URL, "", 30*time.Millisecond).Consult(context.Background(), Request{Query: "cough", Language: English})
	var relayErr *RelayError
	if !errors.As(err, &relayErr) {
		t.Fatalf("Expected *RelayError, got %v", err)
	}
	if relayErr.Category != CategoryTimeout {
		t.Errorf("Expected timeout category, got %s", relayErr.Category)
	}
}
