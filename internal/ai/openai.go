package ai

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient implements Generator using OpenAI Chat Completions API.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
}

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string // optional
	Temperature float32
}

func NewOpenAI(cfg Config) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("openai: model must be specified")
	}
	var c *openai.Client
	if cfg.BaseURL != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		cc.BaseURL = cfg.BaseURL
		c = openai.NewClientWithConfig(cc)
	} else {
		c = openai.NewClient(cfg.APIKey)
	}
	return &OpenAIClient{client: c, model: cfg.Model, temperature: cfg.Temperature}, nil
}

func (o *OpenAIClient) Model() string { return o.model }

func (o *OpenAIClient) Generate(ctx context.Context, req Request) (Response, error) {
	// Default timeout guard, if caller didn't set one
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 300*time.Second)
		defer cancel()
	}
	model := req.Model
	if model == "" {
		model = o.model
	}
	temp := req.Temperature
	if temp == 0 {
		temp = o.temperature
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fullPrompt(req)},
		},
		Temperature: temp,
	})
	if err != nil {
		slog.Error("openai: generate error", "model", model, "err", err)
		return Response{}, err
	}
	out := Response{ModelUsed: model, Timestamp: time.Now().UTC()}
	if len(resp.Choices) > 0 {
		out.Content = strings.TrimSpace(resp.Choices[0].Message.Content)
	}
	return out, nil
}
