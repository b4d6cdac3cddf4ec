package pipeline

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"thread-digest/internal/ai"
	"thread-digest/internal/digest"
	"thread-digest/internal/model"
	"thread-digest/internal/source"
)

type stubSource struct {
	subs    []model.Submission
	threads map[string]model.Thread
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) Listing(context.Context, string, int) ([]model.Submission, error) {
	return s.subs, nil
}

func (s *stubSource) Thread(_ context.Context, id string) (model.Thread, error) {
	th, ok := s.threads[id]
	if !ok {
		return model.Thread{}, errors.New("not found")
	}
	return th, nil
}

type stubGenerator struct{ calls int }

func (g *stubGenerator) Model() string { return "stub-model" }

func (g *stubGenerator) Generate(_ context.Context, req ai.Request) (ai.Response, error) {
	g.calls++
	return ai.Response{Content: "generated from " + strings.SplitN(req.Context, "\n", 2)[0], ModelUsed: g.Model(), Timestamp: time.Unix(100, 0)}, nil
}

func newService(src *stubSource, g ai.Generator) *Service {
	return &Service{
		Source:      src,
		Picker:      source.Picker{Rand: rand.New(rand.NewSource(3))},
		Writer:      &ai.Writer{Generator: g},
		Digest:      digest.Options{TopN: 10},
		Boards:      []string{"golang"},
		Limit:       10,
		MinComments: 1,
	}
}

func sampleThread() model.Thread {
	return model.Thread{
		Root: model.Submission{Source: "stub", ID: "p1", Title: "T", Body: "B"},
		Comments: []model.CommentRecord{
			{ID: "c1", Body: "first", Score: 5, Children: []string{"c2"}},
			{ID: "c2", Body: "reply", Score: 100},
		},
	}
}

func TestRandomPost(t *testing.T) {
	src := &stubSource{
		subs:    []model.Submission{{ID: "p1", Board: "golang", Comments: 2}},
		threads: map[string]model.Thread{"p1": sampleThread()},
	}
	g := &stubGenerator{}
	res, err := newService(src, g).RandomPost(context.Background(), Request{})
	if err != nil {
		t.Fatalf("RandomPost: %v", err)
	}
	if res.Response.Content != "generated from post_title: T" {
		t.Errorf("content=%q", res.Response.Content)
	}
	if res.Metadata.TotalComments != 2 || res.Metadata.TopCommentsUsed != 1 {
		t.Errorf("metadata=%+v", res.Metadata)
	}
	if res.Metadata.Board != "golang" || res.Submission.Board != "golang" {
		t.Errorf("board not carried from listing: %+v", res.Metadata)
	}
	if !res.Metadata.GeneratedAt.Equal(time.Unix(100, 0)) {
		t.Errorf("generated_at=%v", res.Metadata.GeneratedAt)
	}
}

func TestRandomPostNoCandidates(t *testing.T) {
	src := &stubSource{subs: []model.Submission{{ID: "p1", Comments: 0}}}
	g := &stubGenerator{}
	_, err := newService(src, g).RandomPost(context.Background(), Request{})
	if !errors.Is(err, source.ErrNoSubmissions) {
		t.Fatalf("err=%v, want ErrNoSubmissions", err)
	}
	if g.calls != 0 {
		t.Errorf("generator called %d times", g.calls)
	}
}

func TestSummarizeStrictError(t *testing.T) {
	th := sampleThread()
	th.Comments = append(th.Comments, model.CommentRecord{ID: "", Body: "orphaned"})
	src := &stubSource{threads: map[string]model.Thread{"p1": th}}
	svc := newService(src, &stubGenerator{})
	svc.Digest.Strict = true
	if _, err := svc.Summarize(context.Background(), "p1", Request{}); !errors.Is(err, digest.ErrMalformedRecord) {
		t.Fatalf("err=%v, want ErrMalformedRecord", err)
	}
	svc.Digest.Strict = false
	res, err := svc.Summarize(context.Background(), "p1", Request{TopN: 1})
	if err != nil {
		t.Fatalf("lenient Summarize: %v", err)
	}
	if res.Stats.Skipped != 1 {
		t.Errorf("skipped=%d", res.Stats.Skipped)
	}
}

func TestBatchIsolatesFailures(t *testing.T) {
	// p2 is listed but its thread cannot be fetched
	src := &stubSource{
		subs:    []model.Submission{{ID: "p1", Comments: 5}, {ID: "p2", Comments: 5}},
		threads: map[string]model.Thread{"p1": sampleThread()},
	}
	results, errs := newService(src, &stubGenerator{}).Batch(context.Background(), 6, Request{})
	if len(results)+len(errs) != 6 {
		t.Fatalf("results=%d errs=%d, want 6 total", len(results), len(errs))
	}
	for _, r := range results {
		if r.Submission.ID != "p1" {
			t.Errorf("unexpected result %q", r.Submission.ID)
		}
	}
	for _, err := range errs {
		if !strings.Contains(err.Error(), "p2") {
			t.Errorf("unexpected error %v", err)
		}
	}
}
