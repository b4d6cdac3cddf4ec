// Package source defines the thread data sources used by the pipeline.
package source

import (
	"context"
	"errors"
	"math/rand"

	"thread-digest/internal/model"
)

// ErrNoSubmissions is returned when no listed submission passes the comment filter.
var ErrNoSubmissions = errors.New("no submissions matching filter")

// Source lists submissions and fetches whole threads.
type Source interface {
	// Name identifies the source, e.g. "reddit".
	Name() string
	// Listing returns up to limit hot submissions of a board.
	Listing(ctx context.Context, board string, limit int) ([]model.Submission, error)
	// Thread returns the root post and its comments flattened.
	Thread(ctx context.Context, id string) (model.Thread, error)
}

// Picker chooses random submissions from a Source.
type Picker struct {
	Source Source
	Rand   *rand.Rand // nil uses the global source
}

func (p Picker) intn(n int) int {
	if p.Rand != nil {
		return p.Rand.Intn(n)
	}
	return rand.Intn(n)
}

// Pick selects a random board, lists it and returns a random submission with
// more than minComments comments. Candidates for which skip returns true are ignored.
func (p Picker) Pick(ctx context.Context, boards []string, limit, minComments int, skip func(model.Submission) bool) (model.Submission, error) {
	if len(boards) == 0 {
		return model.Submission{}, errors.New("source: no boards configured")
	}
	board := boards[p.intn(len(boards))]
	subs, err := p.Source.Listing(ctx, board, limit)
	if err != nil {
		return model.Submission{}, err
	}
	candidates := make([]model.Submission, 0, len(subs))
	for _, s := range subs {
		if s.Comments <= minComments {
			continue
		}
		if skip != nil && skip(s) {
			continue
		}
		candidates = append(candidates, s)
	}
	if len(candidates) == 0 {
		return model.Submission{}, &NoSubmissionsError{Source: p.Source.Name(), Board: board}
	}
	return candidates[p.intn(len(candidates))], nil
}

// NoSubmissionsError names the board that produced no candidates.
type NoSubmissionsError struct {
	Source string
	Board  string
}

func (e *NoSubmissionsError) Error() string {
	return e.Source + ": no submissions found in " + e.Board + " matching filter"
}

func (e *NoSubmissionsError) Unwrap() error { return ErrNoSubmissions }
