package worker

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"thread-digest/internal/pipeline"
	"thread-digest/internal/postfile"
)

// Generator is the part of pipeline.Service the builder needs.
type Generator interface {
	RandomPost(ctx context.Context, req pipeline.Request) (pipeline.Result, error)
}

// PostBuilder generates one post per interval and writes it as a Markdown file.
type PostBuilder struct {
	Service   Generator
	Request   pipeline.Request
	OutputDir string
	Interval  time.Duration // how often to generate
	now       func() time.Time
}

func (w *PostBuilder) Start(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = time.Hour
	}
	if err := os.MkdirAll(w.OutputDir, 0o755); err != nil {
		return err
	}
	// run immediately then on interval
	w.runOnce(ctx)

	t := time.NewTicker(w.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			w.runOnce(ctx)
		}
	}
}

func (w *PostBuilder) runOnce(ctx context.Context) {
	res, err := w.Service.RandomPost(ctx, w.Request)
	if err != nil {
		slog.Error("builder: generate post failed", "err", err)
		return
	}
	now := time.Now
	if w.now != nil {
		now = w.now
	}
	path, err := WriteResult(w.OutputDir, res, now())
	if err != nil {
		slog.Error("builder: write post failed", "id", res.Submission.ID, "err", err)
		return
	}
	slog.Info("builder: post written", "path", path, "top_level", res.Metadata.TopCommentsUsed)
}

// WriteResult renders res as a Markdown post under dir and returns the file path.
func WriteResult(dir string, res pipeline.Result, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	ts := now.UTC()
	src := strings.ToLower(res.Submission.Source)
	md, err := postfile.Render(postfile.Post{
		Frontmatter: postfile.Frontmatter{
			Title:        res.Submission.Title,
			Slug:         postfile.Slug(src, res.Submission.ID, ts),
			Datetime:     ts.Format("2006-01-02 15:04"),
			Source:       src,
			Board:        res.Metadata.Board,
			SubmissionID: res.Submission.ID,
			Model:        res.Response.ModelUsed,
		},
		Content:   res.Response.Content,
		SourceURL: postfile.SourceURL(src, res.Submission.ID),
		TopLevel:  res.Metadata.TopCommentsUsed,
		Comments:  res.Metadata.TotalComments,
	})
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, postfile.Filename(src, res.Submission.ID, ts))
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
