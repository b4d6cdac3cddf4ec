package hackernews

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"thread-digest/internal/model"
)

// Client is a minimal Hacker News API client.
// Docs: https://github.com/HackerNews/API
type Client struct {
	baseAPI     string
	client      *http.Client
	maxComments int
}

// NewClient creates a new Hacker News client. baseAPI should be something like
// "https://hacker-news.firebaseio.com/v0". If empty, it defaults to the v0 endpoint.
// maxComments caps how many comments Thread fetches (0 means 500).
func NewClient(baseAPI string, maxComments int) *Client {
	if strings.TrimSpace(baseAPI) == "" {
		baseAPI = "https://hacker-news.firebaseio.com/v0"
	}
	if maxComments <= 0 {
		maxComments = 500
	}
	return &Client{
		baseAPI:     strings.TrimRight(baseAPI, "/"),
		client:      &http.Client{Timeout: 10 * time.Second},
		maxComments: maxComments,
	}
}

func (c *Client) Name() string { return "hackernews" }

// hnItem mirrors the subset of HN item fields we care about.
type hnItem struct {
	ID          int    `json:"id"`
	Type        string `json:"type"` // story, comment, job, poll...
	By          string `json:"by"`
	Title       string `json:"title"`
	Text        string `json:"text"`
	Kids        []int  `json:"kids"`
	Descendants int    `json:"descendants"`
	Score       int    `json:"score"`
	Deleted     bool   `json:"deleted"`
	Dead        bool   `json:"dead"`
}

// listEndpoint maps board names to HN list endpoints.
func listEndpoint(board string) string {
	switch strings.ToLower(strings.TrimSpace(board)) {
	case "new", "newstories":
		return "newstories"
	case "best", "beststories":
		return "beststories"
	case "ask", "askstories":
		return "askstories"
	case "show", "showstories":
		return "showstories"
	default:
		return "topstories"
	}
}

// Listing returns up to limit stories of an HN list (top, new, best, ask, show).
func (c *Client) Listing(ctx context.Context, board string, limit int) ([]model.Submission, error) {
	list := listEndpoint(board)
	ids, err := c.fetchIDs(ctx, list)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	slog.Info("hackernews: fetching items", "list", list, "count", len(ids))
	items := c.itemsByIDs(ctx, ids)
	out := make([]model.Submission, 0, len(items))
	for _, it := range items {
		if it.Type != "story" {
			continue
		}
		out = append(out, submissionFrom(it, list))
	}
	return out, nil
}

// Thread fetches a story and its comment tree level by level, flattened in
// breadth-first order. Deleted and dead comments are left out; their ids stay
// in the parent's Children and resolve to nothing.
func (c *Client) Thread(ctx context.Context, id string) (model.Thread, error) {
	n, err := strconv.Atoi(id)
	if err != nil {
		return model.Thread{}, fmt.Errorf("hackernews: invalid item id %q", id)
	}
	story, err := c.item(ctx, n)
	if err != nil {
		return model.Thread{}, err
	}
	th := model.Thread{Root: submissionFrom(story, "")}

	level := story.Kids
	for len(level) > 0 && len(th.Comments) < c.maxComments {
		if room := c.maxComments - len(th.Comments); len(level) > room {
			level = level[:room]
		}
		var next []int
		for _, it := range c.itemsByIDs(ctx, level) {
			if it.Deleted || it.Dead || it.Type != "comment" {
				continue
			}
			th.Comments = append(th.Comments, commentFrom(it))
			next = append(next, it.Kids...)
		}
		level = next
	}
	slog.Info("hackernews: thread fetched", "id", id, "comments", len(th.Comments))
	return th, nil
}

func (c *Client) item(ctx context.Context, id int) (hnItem, error) {
	var it hnItem
	endpoint := fmt.Sprintf("%s/item/%d.json", c.baseAPI, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return it, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return it, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return it, fmt.Errorf("hackernews: item %d status %d", id, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&it); err != nil {
		return it, err
	}
	if it.ID == 0 {
		return it, fmt.Errorf("hackernews: item %d not found", id)
	}
	return it, nil
}

// fetchIDs loads a list endpoint such as topstories/newstories/etc.
func (c *Client) fetchIDs(ctx context.Context, list string) ([]int, error) {
	path := fmt.Sprintf("%s/%s.json", c.baseAPI, url.PathEscape(list))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("hackernews: %s status %d", list, resp.StatusCode)
	}
	var ids []int
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// itemsByIDs resolves multiple IDs concurrently, preserving input order.
// Items that fail to load are skipped.
func (c *Client) itemsByIDs(ctx context.Context, ids []int) []hnItem {
	if len(ids) == 0 {
		return nil
	}
	// bounded concurrency
	const maxWorkers = 8
	type result struct {
		idx  int
		item hnItem
		err  error
	}
	out := make([]result, len(ids))
	sem := make(chan struct{}, maxWorkers)
	done := make(chan result, len(ids))
	for i, id := range ids {
		i, id := i, id
		sem <- struct{}{}
		go func() {
			defer func() { <-sem }()
			// Per-item timeout to avoid hanging
			ictx, cancel := context.WithTimeout(ctx, 8*time.Second)
			defer cancel()
			it, err := c.item(ictx, id)
			done <- result{idx: i, item: it, err: err}
		}()
	}
	for i := 0; i < len(ids); i++ {
		r := <-done
		if r.err != nil {
			slog.Debug("hackernews: item skipped", "id", ids[r.idx], "error", r.err)
			continue
		}
		out[r.idx] = r
	}
	items := make([]hnItem, 0, len(ids))
	for _, r := range out {
		if r.item.ID != 0 {
			items = append(items, r.item)
		}
	}
	return items
}

func submissionFrom(h hnItem, board string) model.Submission {
	return model.Submission{
		Source:   "hackernews",
		Board:    board,
		ID:       strconv.Itoa(h.ID),
		Title:    h.Title,
		Body:     stripHTML(h.Text),
		Score:    h.Score,
		Comments: max(h.Descendants, len(h.Kids)),
	}
}

// commentFrom converts an HN comment. HN exposes no comment score.
func commentFrom(h hnItem) model.CommentRecord {
	author := h.By
	if author == "" {
		author = model.DeletedAuthor
	}
	kids := make([]string, 0, len(h.Kids))
	for _, k := range h.Kids {
		kids = append(kids, strconv.Itoa(k))
	}
	return model.CommentRecord{
		ID:       strconv.Itoa(h.ID),
		Author:   author,
		Body:     stripHTML(h.Text),
		Children: kids,
	}
}

var (
	paragraphRe = regexp.MustCompile(`(?i)<p>`)
	htmlTagRe   = regexp.MustCompile(`<[^>]+>`) // best-effort removal
)

func stripHTML(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	// HN separates paragraphs with a bare <p>.
	s = paragraphRe.ReplaceAllString(s, "\n\n")
	s = htmlTagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(html.UnescapeString(s))
}
