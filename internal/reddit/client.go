package reddit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"thread-digest/internal/model"
)

// Client reads subreddit listings and comment threads from Reddit's public JSON endpoints.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewClient creates a Reddit client. baseURL defaults to https://www.reddit.com.
func NewClient(baseURL, userAgent string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://www.reddit.com"
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Name() string { return "reddit" }

// thing is Reddit's kind/data envelope.
type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type listing struct {
	Children []thing `json:"children"`
}

type linkData struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Selftext    string `json:"selftext"`
	Subreddit   string `json:"subreddit"`
	Score       int    `json:"score"`
	NumComments int    `json:"num_comments"`
}

type commentData struct {
	ID      string          `json:"id"`
	Author  string          `json:"author"`
	Body    string          `json:"body"`
	Score   int             `json:"score"`
	Replies json.RawMessage `json:"replies"` // "" or a Listing thing
}

// Listing returns up to limit hot submissions of a subreddit.
func (c *Client) Listing(ctx context.Context, subreddit string, limit int) ([]model.Submission, error) {
	q := url.Values{"raw_json": {"1"}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	endpoint := fmt.Sprintf("%s/r/%s/hot.json?%s", c.baseURL, url.PathEscape(subreddit), q.Encode())
	var env thing
	if err := c.getJSON(ctx, endpoint, &env); err != nil {
		return nil, fmt.Errorf("reddit: hot %s: %w", subreddit, err)
	}
	links, err := decodeListing(env)
	if err != nil {
		return nil, err
	}
	out := make([]model.Submission, 0, len(links.Children))
	for _, t := range links.Children {
		if t.Kind != "t3" {
			continue
		}
		var d linkData
		if err := json.Unmarshal(t.Data, &d); err != nil {
			return nil, err
		}
		out = append(out, submissionFrom(d, subreddit))
	}
	slog.Info("reddit: listed submissions", "subreddit", subreddit, "count", len(out))
	return out, nil
}

// Thread fetches a submission and all loaded comments. "Load more" stubs are dropped.
func (c *Client) Thread(ctx context.Context, id string) (model.Thread, error) {
	endpoint := fmt.Sprintf("%s/comments/%s.json?raw_json=1", c.baseURL, url.PathEscape(id))
	var parts []thing
	if err := c.getJSON(ctx, endpoint, &parts); err != nil {
		return model.Thread{}, fmt.Errorf("reddit: thread %s: %w", id, err)
	}
	if len(parts) < 2 {
		return model.Thread{}, fmt.Errorf("reddit: thread %s: unexpected response with %d parts", id, len(parts))
	}
	post, err := decodeListing(parts[0])
	if err != nil {
		return model.Thread{}, err
	}
	var root model.Submission
	for _, t := range post.Children {
		if t.Kind != "t3" {
			continue
		}
		var d linkData
		if err := json.Unmarshal(t.Data, &d); err != nil {
			return model.Thread{}, err
		}
		root = submissionFrom(d, d.Subreddit)
		break
	}
	if root.ID == "" {
		return model.Thread{}, fmt.Errorf("reddit: thread %s: submission missing", id)
	}
	top, err := decodeListing(parts[1])
	if err != nil {
		return model.Thread{}, err
	}
	comments := make([]model.CommentRecord, 0, root.Comments)
	for _, t := range top.Children {
		if err := flatten(t, &comments); err != nil {
			return model.Thread{}, err
		}
	}
	return model.Thread{Root: root, Comments: comments}, nil
}

// flatten appends t and its replies in pre-order. Each record lists only its
// direct replies that are real comments.
func flatten(t thing, out *[]model.CommentRecord) error {
	if t.Kind != "t1" {
		return nil
	}
	var d commentData
	if err := json.Unmarshal(t.Data, &d); err != nil {
		return err
	}
	replies, err := decodeReplies(d.Replies)
	if err != nil {
		return fmt.Errorf("reddit: replies of %s: %w", d.ID, err)
	}
	children := make([]string, 0, len(replies))
	for _, r := range replies {
		if r.Kind != "t1" {
			continue
		}
		var rd struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(r.Data, &rd); err != nil {
			return err
		}
		children = append(children, rd.ID)
	}
	author := d.Author
	if author == "" {
		author = model.DeletedAuthor
	}
	*out = append(*out, model.CommentRecord{
		ID:       d.ID,
		Author:   author,
		Body:     d.Body,
		Score:    d.Score,
		Children: children,
	})
	for _, r := range replies {
		if err := flatten(r, out); err != nil {
			return err
		}
	}
	return nil
}

func decodeReplies(raw json.RawMessage) ([]thing, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, nil
	}
	var env thing
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, err
	}
	l, err := decodeListing(env)
	if err != nil {
		return nil, err
	}
	return l.Children, nil
}

func decodeListing(t thing) (listing, error) {
	var l listing
	if t.Kind != "Listing" {
		return l, fmt.Errorf("reddit: expected Listing, got %q", t.Kind)
	}
	if err := json.Unmarshal(t.Data, &l); err != nil {
		return l, err
	}
	return l, nil
}

func submissionFrom(d linkData, board string) model.Submission {
	return model.Submission{
		Source:   "reddit",
		Board:    board,
		ID:       d.ID,
		Title:    d.Title,
		Body:     d.Selftext,
		Score:    d.Score,
		Comments: d.NumComments,
	}
}

func (c *Client) getJSON(ctx context.Context, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
