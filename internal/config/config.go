package config

import (
	"log/slog"
	"strings"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// DigestConfig tunes how a thread is reduced into a summary.
type DigestConfig struct {
	TopN        int  `mapstructure:"top_n"`
	ReplyWeight *int `mapstructure:"reply_weight"` // nil means 10; 0 ranks by raw score
	MaxDepth    int  `mapstructure:"max_depth"`
	Strict      bool `mapstructure:"strict"` // abort on malformed comments instead of skipping them
}

// SourceConfig selects where threads come from.
type SourceConfig struct {
	Name        string   `mapstructure:"name"`   // reddit or hackernews
	Boards      []string `mapstructure:"boards"` // subreddits, or HN lists (top, best, ask...)
	Limit       int      `mapstructure:"limit"`  // listing size per board
	MinComments int      `mapstructure:"min_comments"`
}

// RedditConfig controls the Reddit JSON client.
type RedditConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
}

// HNConfig controls the Hacker News client.
type HNConfig struct {
	BaseAPI     string `mapstructure:"base_api"`
	MaxComments int    `mapstructure:"max_comments"`
}

// LLMConfig selects the text generation backend.
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"` // openai or gemini
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
	Prompt      string  `mapstructure:"prompt"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// WorkerConfig controls the periodic post generator.
type WorkerConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Interval  string `mapstructure:"interval"` // duration string, e.g., "1h"
	OutputDir string `mapstructure:"output_dir"`
	SeenTTL   string `mapstructure:"seen_ttl"` // how long a used submission is skipped
}

// Config is the top-level configuration structure.
type Config struct {
	App        AppConfig    `mapstructure:"app"`
	Digest     DigestConfig `mapstructure:"digest"`
	Source     SourceConfig `mapstructure:"source"`
	Reddit     RedditConfig `mapstructure:"reddit"`
	HackerNews HNConfig     `mapstructure:"hackernews"`
	LLM        LLMConfig    `mapstructure:"llm"`
	OpenAI     OpenAIConfig `mapstructure:"openai"`
	Gemini     GeminiConfig `mapstructure:"gemini"`
	Redis      RedisConfig  `mapstructure:"redis"`
	Server     ServerConfig `mapstructure:"server"`
	Worker     WorkerConfig `mapstructure:"worker"`
}

// DefaultSubreddits are searched when no boards are configured for reddit.
var DefaultSubreddits = []string{
	"mcp", "vibecoding", "buildinpublic", "aws",
	"LlamaFarm", "AgentsOfAI", "ClaudeAI", "Buildathon",
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Digest.TopN == 0 {
		c.Digest.TopN = 10
	}
	if c.Digest.ReplyWeight == nil {
		w := 10
		c.Digest.ReplyWeight = &w
	}
	if c.Digest.MaxDepth == 0 {
		c.Digest.MaxDepth = 50
	}
	c.Source.Name = strings.ToLower(strings.TrimSpace(c.Source.Name))
	if c.Source.Name == "" {
		c.Source.Name = "reddit"
	}
	if len(c.Source.Boards) == 0 {
		if c.Source.Name == "hackernews" {
			c.Source.Boards = []string{"top"}
		} else {
			c.Source.Boards = append([]string(nil), DefaultSubreddits...)
		}
	}
	if c.Source.Limit == 0 {
		c.Source.Limit = 10
	}
	if c.Source.MinComments == 0 {
		c.Source.MinComments = 10
	}
	if c.Reddit.BaseURL == "" {
		c.Reddit.BaseURL = "https://www.reddit.com"
	}
	if c.Reddit.UserAgent == "" {
		c.Reddit.UserAgent = "thread-digest/0.1"
	}
	if c.HackerNews.BaseAPI == "" {
		c.HackerNews.BaseAPI = "https://hacker-news.firebaseio.com/v0"
	}
	if c.HackerNews.MaxComments == 0 {
		c.HackerNews.MaxComments = 500
	}
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.Model == "" {
		if c.LLM.Provider == "gemini" {
			c.LLM.Model = "gemini-2.5-pro"
		} else {
			c.LLM.Model = "gpt-4o-mini"
		}
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.7
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Worker.Interval == "" {
		c.Worker.Interval = "1h"
	}
	if c.Worker.OutputDir == "" {
		c.Worker.OutputDir = "./out"
	}
	if c.Worker.SeenTTL == "" {
		c.Worker.SeenTTL = "72h"
	}
}

// SlogLevel maps app.log_level to a slog level; unknown values mean info.
func (c AppConfig) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
