// Package digest reduces a flat comment list into a bounded, ranked comment tree.
package digest

import "thread-digest/internal/model"

// Index maps comment ids to records and remembers which ids are replies.
// It is built once per summary and never shared between builds.
type Index struct {
	byID       map[string]model.CommentRecord
	referenced map[string]struct{}
}

// NewIndex builds an index in one pass over comments.
// When an id occurs more than once the later record wins.
// Child ids are marked referenced even when they resolve to nothing.
func NewIndex(comments []model.CommentRecord) *Index {
	ix := &Index{
		byID:       make(map[string]model.CommentRecord, len(comments)),
		referenced: make(map[string]struct{}),
	}
	for _, c := range comments {
		ix.byID[c.ID] = c
		ix.reference(c.Children)
	}
	return ix
}

func (ix *Index) reference(ids []string) {
	for _, id := range ids {
		ix.referenced[id] = struct{}{}
	}
}

// Lookup returns the record stored for id.
func (ix *Index) Lookup(id string) (model.CommentRecord, bool) {
	c, ok := ix.byID[id]
	return c, ok
}

// IsTopLevel reports whether id is in the dataset and no comment lists it as a child.
func (ix *Index) IsTopLevel(id string) bool {
	if _, ok := ix.byID[id]; !ok {
		return false
	}
	_, ref := ix.referenced[id]
	return !ref
}

// Len returns the number of distinct ids.
func (ix *Index) Len() int { return len(ix.byID) }
