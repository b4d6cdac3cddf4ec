package ai

import (
	"context"
	"time"
)

// Request is one text generation call: a prompt plus the YAML thread context.
type Request struct {
	Prompt      string
	Context     string
	Model       string  // empty uses the generator's default
	Temperature float32 // zero uses the generator's default
}

// Response is the generated text and the model that produced it.
type Response struct {
	Content   string    `json:"content"`
	ModelUsed string    `json:"model_used"`
	Timestamp time.Time `json:"timestamp"`
}

// Generator produces text from a Request.
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
	// Model is the default model name.
	Model() string
}

// fullPrompt joins the instruction and the thread context.
func fullPrompt(req Request) string {
	return req.Prompt + "\n\nContext:\n" + req.Context
}
