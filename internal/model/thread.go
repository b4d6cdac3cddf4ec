package model

// DeletedAuthor is the author recorded for comments whose author is gone.
const DeletedAuthor = "[deleted]"

// Submission is the root post of a discussion thread.
type Submission struct {
	Source   string `json:"source"`
	Board    string `json:"board"` // subreddit or HN list
	ID       string `json:"id"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Score    int    `json:"score"`
	Comments int    `json:"comments"`
}

// CommentRecord is one comment as fetched, with its direct replies referenced by id.
// Children may reference ids that are not part of the fetched list.
type CommentRecord struct {
	ID       string   `json:"id"`
	Author   string   `json:"author"`
	Body     string   `json:"body"`
	Score    int      `json:"score"`
	Children []string `json:"children"`
}

// EngagementScore favours heavily replied comments: score + replies*replyWeight.
func (c CommentRecord) EngagementScore(replyWeight int) int {
	return c.Score + len(c.Children)*replyWeight
}

// Thread is a root post plus the flat list of its comments.
type Thread struct {
	Root     Submission      `json:"root"`
	Comments []CommentRecord `json:"comments"`
}

// CommentTree is a comment body with its nested replies, free of identifiers.
type CommentTree struct {
	Comment  string        `json:"comment" yaml:"comment"`
	Children []CommentTree `json:"children" yaml:"children"`
}

// PostSummary is the bounded view of a thread handed to text generation.
// Field order is the serialisation order.
type PostSummary struct {
	PostTitle string        `json:"post_title" yaml:"post_title"`
	PostBody  string        `json:"post_body" yaml:"post_body"`
	Children  []CommentTree `json:"children" yaml:"children"`
}
