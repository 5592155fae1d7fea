package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"telemed-ai/internal/consultation"
)

// GeminiClient answers consultations through the Gemini API directly.
type GeminiClient struct {
	client *genai.Client
}

func NewGeminiClient(ctx context.Context, apiKey, baseURL string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, consultation.ErrMissingCredential
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init genai client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

func NewGeminiClientFromClient(c *genai.Client) *GeminiClient {
	return &GeminiClient{client: c}
}

func (g *GeminiClient) Complete(ctx context.Context, req consultation.ChatRequest) (string, error) {
	var system []string
	var contents []*genai.Content
	for _, m := range req.Messages {
		switch m.Role {
		case consultation.RoleSystem:
			system = append(system, m.Content)
		case consultation.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if len(system) > 0 {
		cfg.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n"), genai.RoleUser)
	}

	model := strings.TrimPrefix(req.Model, "google/")
	result, err := g.client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		if code := apiErrorCode(err); code != 0 {
			return "", &consultation.UpstreamError{StatusCode: code, Body: err.Error()}
		}
		return "", err
	}

	text := result.Text()
	if text == "" {
		return "", consultation.ErrEmptyCompletion
	}
	return text, nil
}

func apiErrorCode(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code
	}
	return 0
}
