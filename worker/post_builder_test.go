package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"thread-digest/internal/ai"
	"thread-digest/internal/model"
	"thread-digest/internal/pipeline"
	"thread-digest/internal/postfile"
)

type fakeGenerator struct {
	calls int
	err   error
}

func (f *fakeGenerator) RandomPost(context.Context, pipeline.Request) (pipeline.Result, error) {
	f.calls++
	if f.err != nil {
		return pipeline.Result{}, f.err
	}
	return pipeline.Result{
		Submission: model.Submission{Source: "hackernews", ID: "42", Title: "Show HN: a thing"},
		Response:   ai.Response{Content: "Generated body", ModelUsed: "m"},
		Metadata:   pipeline.Metadata{TotalComments: 9, TopCommentsUsed: 2, Board: "showstories"},
	}, nil
}

func TestPostBuilderWritesFile(t *testing.T) {
	dir := t.TempDir()
	w := &PostBuilder{
		Service:   &fakeGenerator{},
		OutputDir: dir,
		now:       func() time.Time { return time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC) },
	}
	w.runOnce(context.Background())
	path := filepath.Join(dir, "hackernews-42-20260102.md")
	doc, err := postfile.ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if doc.Frontmatter.SubmissionID != "42" || doc.Frontmatter.Board != "showstories" {
		t.Errorf("frontmatter=%+v", doc.Frontmatter)
	}
	if doc.Frontmatter.Datetime != "2026-01-02 03:04" {
		t.Errorf("datetime=%q", doc.Frontmatter.Datetime)
	}
}

func TestPostBuilderSkipsOnError(t *testing.T) {
	dir := t.TempDir()
	w := &PostBuilder{Service: &fakeGenerator{err: errors.New("no luck")}, OutputDir: dir}
	w.runOnce(context.Background())
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("wrote %d files on failure", len(entries))
	}
}

func TestManagerStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	g := &fakeGenerator{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewManager(&PostBuilder{Service: g, OutputDir: dir, Interval: time.Hour}).Start(ctx)
	}()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("manager did not stop")
	}
}
