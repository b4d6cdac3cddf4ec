package digest

import (
	"log/slog"

	"thread-digest/internal/model"
)

// DefaultMaxDepth bounds expansion on pathological reply chains.
const DefaultMaxDepth = 50

// Stats counts what a build skipped or cut.
type Stats struct {
	Comments   int `json:"comments"`   // records received
	Skipped    int `json:"skipped"`    // malformed records dropped
	Orphans    int `json:"orphans"`    // child ids with no record
	Cycles     int `json:"cycles"`     // child ids already on the current path
	Duplicates int `json:"duplicates"` // child ids already emitted elsewhere
	Truncated  int `json:"truncated"`  // nodes whose children were cut at max depth
	Nodes      int `json:"nodes"`      // tree nodes emitted
}

// Builder expands records into comment trees using an explicit Index.
// A Builder belongs to a single summary build.
type Builder struct {
	index    *Index
	maxDepth int
	logger   *slog.Logger

	onPath  map[string]struct{}
	emitted map[string]struct{}
	stats   Stats
}

// NewBuilder returns a Builder over ix. maxDepth <= 0 selects DefaultMaxDepth.
func NewBuilder(ix *Index, maxDepth int, logger *slog.Logger) *Builder {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		index:    ix,
		maxDepth: maxDepth,
		logger:   logger,
		onPath:   make(map[string]struct{}),
		emitted:  make(map[string]struct{}),
	}
}

// Stats returns the counters accumulated so far.
func (b *Builder) Stats() Stats { return b.stats }

// Expand materialises rec and its resolvable descendants.
// Children keep the order in which rec lists them.
func (b *Builder) Expand(rec model.CommentRecord) model.CommentTree {
	return b.expand(rec, 1)
}

func (b *Builder) expand(rec model.CommentRecord, depth int) model.CommentTree {
	b.emitted[rec.ID] = struct{}{}
	b.onPath[rec.ID] = struct{}{}
	defer delete(b.onPath, rec.ID)
	b.stats.Nodes++

	node := model.CommentTree{Comment: rec.Body, Children: []model.CommentTree{}}
	if depth >= b.maxDepth {
		if len(rec.Children) > 0 {
			b.stats.Truncated++
			b.logger.Debug("digest: depth ceiling reached", "id", rec.ID, "depth", depth)
		}
		return node
	}
	for _, id := range rec.Children {
		if _, ok := b.onPath[id]; ok {
			b.stats.Cycles++
			b.logger.Warn("digest: reply cycle skipped", "parent", rec.ID, "child", id)
			continue
		}
		if _, ok := b.emitted[id]; ok {
			b.stats.Duplicates++
			b.logger.Warn("digest: duplicate reply skipped", "parent", rec.ID, "child", id)
			continue
		}
		child, ok := b.index.Lookup(id)
		if !ok {
			b.stats.Orphans++
			continue
		}
		node.Children = append(node.Children, b.expand(child, depth+1))
	}
	return node
}
