package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiClient implements Generator using Google GenAI Gemini.
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGemini creates a Gemini generator; cfg.BaseURL is ignored.
func NewGemini(ctx context.Context, cfg Config) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: api key not set")
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-pro"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiClient{client: client, model: model, temperature: cfg.Temperature}, nil
}

func (g *GeminiClient) Model() string { return g.model }

func (g *GeminiClient) Generate(ctx context.Context, req Request) (Response, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 300*time.Second)
		defer cancel()
	}
	model := req.Model
	if model == "" {
		model = g.model
	}
	temp := req.Temperature
	if temp == 0 {
		temp = g.temperature
	}
	var gc *genai.GenerateContentConfig
	if temp != 0 {
		gc = &genai.GenerateContentConfig{Temperature: genai.Ptr(temp)}
	}
	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(fullPrompt(req)), gc)
	if err != nil {
		slog.Error("gemini: generate error", "model", model, "err", err)
		return Response{}, fmt.Errorf("gemini generate failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Response{}, errors.New("gemini: no response")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	return Response{
		Content:   strings.TrimSpace(b.String()),
		ModelUsed: model,
		Timestamp: time.Now().UTC(),
	}, nil
}
