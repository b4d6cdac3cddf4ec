package config

import (
	"log/slog"
	"testing"
)

func TestFillDefaultsReddit(t *testing.T) {
	var c Config
	c.FillDefaults()
	if c.Digest.TopN != 10 || *c.Digest.ReplyWeight != 10 || c.Digest.MaxDepth != 50 {
		t.Fatalf("digest defaults=%+v", c.Digest)
	}
	if c.Source.Name != "reddit" || len(c.Source.Boards) != len(DefaultSubreddits) {
		t.Fatalf("source defaults=%+v", c.Source)
	}
	if c.LLM.Provider != "openai" || c.LLM.Temperature != 0.7 {
		t.Errorf("llm defaults=%+v", c.LLM)
	}
	// defaults must not alias the package-level list
	c.Source.Boards[0] = "changed"
	if DefaultSubreddits[0] == "changed" {
		t.Errorf("FillDefaults aliased DefaultSubreddits")
	}
}

func TestFillDefaultsHackerNewsAndGemini(t *testing.T) {
	c := Config{
		Source: SourceConfig{Name: " HackerNews "},
		LLM:    LLMConfig{Provider: "Gemini"},
		Digest: DigestConfig{TopN: 3},
	}
	c.FillDefaults()
	if c.Source.Name != "hackernews" || len(c.Source.Boards) != 1 || c.Source.Boards[0] != "top" {
		t.Fatalf("source=%+v", c.Source)
	}
	if c.LLM.Model != "gemini-2.5-pro" {
		t.Errorf("model=%q", c.LLM.Model)
	}
	if c.Digest.TopN != 3 {
		t.Errorf("explicit top_n overwritten: %d", c.Digest.TopN)
	}
}

func TestFillDefaultsKeepsZeroReplyWeight(t *testing.T) {
	zero := 0
	c := Config{Digest: DigestConfig{ReplyWeight: &zero}}
	c.FillDefaults()
	if c.Digest.ReplyWeight == nil || *c.Digest.ReplyWeight != 0 {
		t.Fatalf("reply_weight 0 was replaced: %v", c.Digest.ReplyWeight)
	}
}

func TestSlogLevel(t *testing.T) {
	if (AppConfig{LogLevel: "DEBUG"}).SlogLevel() != slog.LevelDebug {
		t.Errorf("debug not mapped")
	}
	if (AppConfig{LogLevel: "nonsense"}).SlogLevel() != slog.LevelInfo {
		t.Errorf("unknown level should be info")
	}
}
