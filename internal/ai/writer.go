package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"thread-digest/internal/digest"
	"thread-digest/internal/model"
)

// DefaultPrompt asks for a LinkedIn post built around the thread's debate.
const DefaultPrompt = "Generate a short LinkedIn post from this conversation. " +
	"Extract the debate or lightbulb moment from this thread and present it. " +
	"Make it engaging and professional for a LinkedIn audience."

// PostOptions override the writer defaults for one call.
type PostOptions struct {
	Prompt      string
	Model       string
	Temperature float32
}

// Writer turns post summaries into generated posts.
type Writer struct {
	Generator Generator
	Prompt    string // default prompt; empty means DefaultPrompt
}

// WritePost renders s as YAML context and asks the generator for a post.
func (w *Writer) WritePost(ctx context.Context, s model.PostSummary, opts PostOptions) (Response, error) {
	if w == nil || w.Generator == nil {
		return Response{}, errors.New("ai: no generator configured")
	}
	prompt := strings.TrimSpace(opts.Prompt)
	if prompt == "" {
		prompt = strings.TrimSpace(w.Prompt)
	}
	if prompt == "" {
		prompt = DefaultPrompt
	}
	yml, err := digest.MarshalYAML(s)
	if err != nil {
		return Response{}, fmt.Errorf("ai: encode summary: %w", err)
	}
	resp, err := w.Generator.Generate(ctx, Request{
		Prompt:      prompt,
		Context:     string(yml),
		Model:       opts.Model,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return Response{}, fmt.Errorf("error querying LLM: %w", err)
	}
	return resp, nil
}
