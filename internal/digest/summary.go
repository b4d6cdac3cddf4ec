package digest

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"thread-digest/internal/model"
)

// ErrMalformedRecord is matched by every *MalformedRecordError.
var ErrMalformedRecord = errors.New("malformed comment record")

// MalformedRecordError describes a comment missing a required field.
type MalformedRecordError struct {
	Index int    // position in the input list
	ID    string // may be empty
	Field string // "id" or "body"
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("comment %d (id %q): missing %s", e.Index, e.ID, e.Field)
}

func (e *MalformedRecordError) Is(target error) bool { return target == ErrMalformedRecord }

// Options tune a summary build. Zero values select the defaults.
type Options struct {
	TopN int
	// ReplyWeight is added to a comment's score per direct reply.
	// nil selects DefaultReplyWeight; 0 ranks by raw score.
	ReplyWeight *int
	MaxDepth    int
	// Strict aborts the build on the first malformed record instead of skipping it.
	Strict bool
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.TopN <= 0 {
		o.TopN = DefaultTopN
	}
	if o.ReplyWeight == nil {
		w := DefaultReplyWeight
		o.ReplyWeight = &w
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Result is a summary together with its build diagnostics.
type Result struct {
	Summary model.PostSummary `json:"summary"`
	Stats   Stats             `json:"stats"`
}

// Summarize indexes, ranks and expands thread into a PostSummary.
// The only error it returns is a *MalformedRecordError under Options.Strict.
func Summarize(thread model.Thread, opts Options) (Result, error) {
	opts = opts.withDefaults()

	valid := make([]model.CommentRecord, 0, len(thread.Comments))
	var dropped []model.CommentRecord
	for i, c := range thread.Comments {
		if err := validate(i, c); err != nil {
			if opts.Strict {
				return Result{}, err
			}
			opts.Logger.Warn("digest: skipping malformed comment", "error", err)
			dropped = append(dropped, c)
			continue
		}
		valid = append(valid, c)
	}

	ix := NewIndex(valid)
	// replies of a dropped comment are still replies
	for _, c := range dropped {
		ix.reference(c.Children)
	}

	ranked := SelectTopLevel(valid, ix, opts.TopN, *opts.ReplyWeight)
	b := NewBuilder(ix, opts.MaxDepth, opts.Logger)
	summary := Assemble(thread.Root.Title, thread.Root.Body, ranked, b)

	stats := b.Stats()
	stats.Comments = len(thread.Comments)
	stats.Skipped = len(dropped)
	opts.Logger.Debug("digest: summary built",
		"comments", stats.Comments,
		"top_level", len(summary.Children),
		"nodes", stats.Nodes,
		"cycles", stats.Cycles,
		"orphans", stats.Orphans,
	)
	return Result{Summary: summary, Stats: stats}, nil
}

// Assemble expands each ranked record in order and attaches the root fields.
func Assemble(title, body string, ranked []model.CommentRecord, b *Builder) model.PostSummary {
	children := make([]model.CommentTree, 0, len(ranked))
	for _, rec := range ranked {
		children = append(children, b.Expand(rec))
	}
	return model.PostSummary{
		PostTitle: title,
		PostBody:  body,
		Children:  children,
	}
}

func validate(i int, c model.CommentRecord) error {
	if strings.TrimSpace(c.ID) == "" {
		return &MalformedRecordError{Index: i, ID: c.ID, Field: "id"}
	}
	if strings.TrimSpace(c.Body) == "" {
		return &MalformedRecordError{Index: i, ID: c.ID, Field: "body"}
	}
	return nil
}
