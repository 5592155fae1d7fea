package consultation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// ChatCompleter sends one chat-completion request upstream and returns the
// first choice's text. Non-2xx answers come back as *UpstreamError.
type ChatCompleter interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// RateLimiter decides whether a caller may issue another consultation.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type Service interface {
	// Consult answers one request. Validation failures are ErrEmptyQuery or
	// ErrUnsupportedLang; everything else is a *RelayError.
	Consult(ctx context.Context, req Request, callerKey string) (string, error)
}

type RelayConfig struct {
	Model           string
	Temperature     float64
	MaxTokens       int
	Timeout         time.Duration
	HistoryMaxBytes int
}

func DefaultRelayConfig() RelayConfig {
	return RelayConfig{
		Model:           "google/gemini-2.5-flash",
		Temperature:     0.7,
		MaxTokens:       200,
		Timeout:         30 * time.Second,
		HistoryMaxBytes: 4096,
	}
}

type service struct {
	ai      ChatCompleter
	limiter RateLimiter
	cfg     RelayConfig
}

// NewService builds the relay. limiter may be nil.
func NewService(ai ChatCompleter, limiter RateLimiter, cfg RelayConfig) Service {
	return &service{ai: ai, limiter: limiter, cfg: cfg}
}

func (s *service) Consult(ctx context.Context, req Request, callerKey string) (string, error) {
	if strings.TrimSpace(req.Query) == "" {
		return "", ErrEmptyQuery
	}
	if !req.Language.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLang, req.Language)
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, callerKey)
		if err != nil {
			log.Printf("[RELAY] rate limiter unavailable, allowing request: %v", err)
		} else if !allowed {
			return "", &RelayError{Category: CategoryRateLimited, Status: http.StatusTooManyRequests, Message: msgRateLimited}
		}
	}

	log.Printf("[RELAY] Processing AI consultation: language=%s hasHistory=%t", req.Language, HasHistory(req.PatientHistory))

	system, user := BuildPrompts(req, s.cfg.HistoryMaxBytes)

	callCtx := ctx
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	text, err := s.ai.Complete(callCtx, ChatRequest{
		Model: s.cfg.Model,
		Messages: []Message{
			{Role: RoleSystem, Content: system},
			{Role: RoleUser, Content: user},
		},
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		return "", s.mapError(callCtx, err)
	}

	log.Println("[RELAY] AI consultation completed successfully")
	return text, nil
}

func (s *service) mapError(ctx context.Context, err error) *RelayError {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		switch upstream.StatusCode {
		case http.StatusTooManyRequests:
			return &RelayError{Category: CategoryRateLimited, Status: http.StatusTooManyRequests, Message: msgRateLimited}
		case http.StatusPaymentRequired:
			return &RelayError{Category: CategoryUnavailable, Status: http.StatusPaymentRequired, Message: msgUnavailable}
		default:
			log.Printf("[RELAY] AI API error: status=%d body=%s", upstream.StatusCode, upstream.Body)
			return &RelayError{Category: CategoryGeneric, Status: http.StatusInternalServerError, Message: upstream.Error()}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		log.Printf("[RELAY] AI API call timed out: %v", err)
		return &RelayError{Category: CategoryTimeout, Status: http.StatusGatewayTimeout, Message: msgTimeout}
	}

	log.Printf("[RELAY] Error in ai-consultation: %v", err)
	return &RelayError{Category: CategoryGeneric, Status: http.StatusInternalServerError, Message: err.Error()}
}
