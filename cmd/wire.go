package cmd

import (
	"context"
	"fmt"
	"time"

	"thread-digest/internal/ai"
	"thread-digest/internal/config"
	"thread-digest/internal/digest"
	"thread-digest/internal/hackernews"
	"thread-digest/internal/pipeline"
	"thread-digest/internal/reddit"
	"thread-digest/internal/redisclient"
	"thread-digest/internal/source"
	"thread-digest/internal/storage"

	"github.com/redis/go-redis/v9"
)

func digestOptions(cfg config.Config) digest.Options {
	return digest.Options{
		TopN:        cfg.Digest.TopN,
		ReplyWeight: cfg.Digest.ReplyWeight,
		MaxDepth:    cfg.Digest.MaxDepth,
		Strict:      cfg.Digest.Strict,
	}
}

func newSource(cfg config.Config) (source.Source, error) {
	switch cfg.Source.Name {
	case "reddit":
		return reddit.NewClient(cfg.Reddit.BaseURL, cfg.Reddit.UserAgent), nil
	case "hackernews":
		return hackernews.NewClient(cfg.HackerNews.BaseAPI, cfg.HackerNews.MaxComments), nil
	default:
		return nil, fmt.Errorf("unknown source %q", cfg.Source.Name)
	}
}

func newGenerator(ctx context.Context, cfg config.Config) (ai.Generator, error) {
	switch cfg.LLM.Provider {
	case "openai":
		c, err := ai.NewOpenAI(ai.Config{
			APIKey:      cfg.OpenAI.APIKey,
			BaseURL:     cfg.OpenAI.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case "gemini":
		c, err := ai.NewGemini(ctx, ai.Config{
			APIKey:      cfg.Gemini.APIKey,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

// app holds the wired service and the optional redis connection.
type app struct {
	service *pipeline.Service
	rdb     *redis.Client
	store   *storage.RedisStore
}

func (a *app) Close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	src, err := newSource(cfg)
	if err != nil {
		return nil, err
	}
	gen, err := newGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	seenTTL, err := time.ParseDuration(cfg.Worker.SeenTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid worker.seen_ttl: %w", err)
	}
	a := &app{}
	if rdb := redisclient.New(cfg.Redis); rdb != nil {
		a.rdb = rdb
		a.store = storage.NewRedisStore(rdb)
	}
	a.service = &pipeline.Service{
		Source:      src,
		Picker:      source.Picker{Source: src},
		Writer:      &ai.Writer{Generator: gen, Prompt: cfg.LLM.Prompt},
		Store:       a.store,
		Digest:      digestOptions(cfg),
		Boards:      cfg.Source.Boards,
		Limit:       cfg.Source.Limit,
		MinComments: cfg.Source.MinComments,
		SeenTTL:     seenTTL,
	}
	return a, nil
}
