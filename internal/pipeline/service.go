// Package pipeline ties a thread source, the digest core and text generation together.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"thread-digest/internal/ai"
	"thread-digest/internal/digest"
	"thread-digest/internal/model"
	"thread-digest/internal/source"
	"thread-digest/internal/storage"
)

// pickAttempts bounds retries when every picked submission was already used.
const pickAttempts = 3

// Request carries per-call overrides. Zero values use the service defaults.
type Request struct {
	Boards      []string
	TopN        int
	Prompt      string
	Model       string
	Temperature float32
}

// Metadata describes how a result was produced.
type Metadata struct {
	TotalComments   int       `json:"total_comments"`
	TopCommentsUsed int       `json:"top_comments_used"`
	Board           string    `json:"board"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// Result is everything produced for one submission.
type Result struct {
	Submission model.Submission      `json:"submission"`
	Comments   []model.CommentRecord `json:"-"`
	Summary    model.PostSummary     `json:"post_summary"`
	Stats      digest.Stats          `json:"stats"`
	Response   ai.Response           `json:"llm_response"`
	Metadata   Metadata              `json:"metadata"`
}

// Service runs the fetch, summarise and generate workflow.
type Service struct {
	Source      source.Source
	Picker      source.Picker
	Writer      *ai.Writer
	Store       *storage.RedisStore // optional
	Digest      digest.Options
	Boards      []string
	Limit       int
	MinComments int
	SeenTTL     time.Duration
}

// RandomPost picks a random qualifying submission and generates a post for it.
func (s *Service) RandomPost(ctx context.Context, req Request) (Result, error) {
	boards := req.Boards
	if len(boards) == 0 {
		boards = s.Boards
	}
	picker := s.Picker
	if picker.Source == nil {
		picker.Source = s.Source
	}
	var (
		sub model.Submission
		err error
	)
	for attempt := 0; attempt < pickAttempts; attempt++ {
		sub, err = picker.Pick(ctx, boards, s.Limit, s.MinComments, func(c model.Submission) bool {
			return s.seen(ctx, c)
		})
		if err == nil || !errors.Is(err, source.ErrNoSubmissions) {
			break
		}
		slog.Warn("pipeline: no candidates, retrying", "attempt", attempt+1, "err", err)
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to generate post with LLM response: %w", err)
	}
	return s.post(ctx, sub.ID, sub.Board, req)
}

// Post generates a post for a known submission id.
func (s *Service) Post(ctx context.Context, id string, req Request) (Result, error) {
	return s.post(ctx, id, "", req)
}

func (s *Service) post(ctx context.Context, id, board string, req Request) (Result, error) {
	res, err := s.Summarize(ctx, id, req)
	if err != nil {
		return Result{}, err
	}
	if res.Submission.Board == "" {
		res.Submission.Board = board
		res.Metadata.Board = board
	}
	resp, err := s.Writer.WritePost(ctx, res.Summary, ai.PostOptions{
		Prompt:      req.Prompt,
		Model:       req.Model,
		Temperature: req.Temperature,
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to generate post with LLM response: %w", err)
	}
	res.Response = resp
	res.Metadata.GeneratedAt = resp.Timestamp
	s.remember(ctx, res)
	return res, nil
}

// Summarize fetches a thread and reduces it without calling the generator.
func (s *Service) Summarize(ctx context.Context, id string, req Request) (Result, error) {
	th, err := s.Source.Thread(ctx, id)
	if err != nil {
		return Result{}, fmt.Errorf("fetch thread %s: %w", id, err)
	}
	opts := s.Digest
	if req.TopN > 0 {
		opts.TopN = req.TopN
	}
	built, err := digest.Summarize(th, opts)
	if err != nil {
		return Result{}, fmt.Errorf("summarize thread %s: %w", id, err)
	}
	slog.Info("pipeline: thread summarized",
		"source", th.Root.Source,
		"id", id,
		"comments", len(th.Comments),
		"top_level", len(built.Summary.Children),
	)
	return Result{
		Submission: th.Root,
		Comments:   th.Comments,
		Summary:    built.Summary,
		Stats:      built.Stats,
		Metadata: Metadata{
			TotalComments:   len(th.Comments),
			TopCommentsUsed: len(built.Summary.Children),
			Board:           th.Root.Board,
		},
	}, nil
}

// Batch generates count posts. Failures are collected and do not stop the batch.
func (s *Service) Batch(ctx context.Context, count int, req Request) ([]Result, []error) {
	var (
		results []Result
		errs    []error
	)
	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		res, err := s.RandomPost(ctx, req)
		if err != nil {
			slog.Error("pipeline: batch item failed", "index", i+1, "err", err)
			errs = append(errs, fmt.Errorf("post %d: %w", i+1, err))
			continue
		}
		results = append(results, res)
	}
	return results, errs
}

func (s *Service) seen(ctx context.Context, sub model.Submission) bool {
	if s.Store == nil {
		return false
	}
	ok, err := s.Store.IsSeen(ctx, s.Source.Name(), sub.ID)
	if err != nil {
		slog.Warn("pipeline: seen check failed", "id", sub.ID, "err", err)
		return false
	}
	return ok
}

func (s *Service) remember(ctx context.Context, res Result) {
	if s.Store == nil {
		return
	}
	name := s.Source.Name()
	if err := s.Store.MarkSeen(ctx, name, res.Submission.ID, s.SeenTTL); err != nil {
		slog.Warn("pipeline: mark seen failed", "id", res.Submission.ID, "err", err)
	}
	err := s.Store.SavePost(ctx, storage.StoredPost{
		Source:      name,
		Board:       res.Submission.Board,
		ID:          res.Submission.ID,
		Title:       res.Submission.Title,
		Content:     res.Response.Content,
		Model:       res.Response.ModelUsed,
		TopLevel:    res.Metadata.TopCommentsUsed,
		Comments:    res.Metadata.TotalComments,
		GeneratedAt: res.Metadata.GeneratedAt,
	})
	if err != nil {
		slog.Warn("pipeline: save post failed", "id", res.Submission.ID, "err", err)
	}
}
