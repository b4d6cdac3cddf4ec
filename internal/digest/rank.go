package digest

import (
	"sort"

	"thread-digest/internal/model"
)

const (
	DefaultTopN        = 10
	DefaultReplyWeight = 10
)

// SelectTopLevel returns at most topN top-level comments ordered by engagement score.
// Replies are never promoted, whatever their score. Equal scores keep input order.
func SelectTopLevel(comments []model.CommentRecord, ix *Index, topN, replyWeight int) []model.CommentRecord {
	if topN <= 0 {
		return []model.CommentRecord{}
	}
	seen := make(map[string]struct{}, len(comments))
	pool := make([]model.CommentRecord, 0, len(comments))
	for _, c := range comments {
		if !ix.IsTopLevel(c.ID) {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		// the index holds the surviving record for duplicated ids
		rec, _ := ix.Lookup(c.ID)
		pool = append(pool, rec)
	}
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].EngagementScore(replyWeight) > pool[j].EngagementScore(replyWeight)
	})
	if len(pool) > topN {
		pool = pool[:topN]
	}
	return pool
}
