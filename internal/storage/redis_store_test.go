package storage

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestKeys(t *testing.T) {
	if got := seenKey("reddit", "abc"); got != "digest:seen:reddit:abc" {
		t.Errorf("seenKey=%q", got)
	}
	if got := postKey("hackernews", "42"); got != "digest:post:hackernews:42" {
		t.Errorf("postKey=%q", got)
	}
}

func TestSplitMember(t *testing.T) {
	src, id, ok := splitMember("reddit:1abc")
	if !ok || src != "reddit" || id != "1abc" {
		t.Fatalf("got %q %q %v", src, id, ok)
	}
	for _, bad := range []string{"", "noseparator", ":id", "source:"} {
		if _, _, ok := splitMember(bad); ok {
			t.Errorf("splitMember(%q) accepted", bad)
		}
	}
}

func newTestStore(now time.Time) (*RedisStore, *fakeRedis) {
	f := newFakeRedis()
	s := NewRedisStore(f)
	s.now = func() time.Time { return now }
	return s, f
}

func TestMarkSeen(t *testing.T) {
	ctx := context.Background()
	s, f := newTestStore(time.Now())
	if err := s.MarkSeen(ctx, "reddit", "a", 0); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}
	if len(f.kv) != 0 {
		t.Fatalf("zero ttl wrote %v", f.kv)
	}
	if seen, err := s.IsSeen(ctx, "reddit", "a"); err != nil || seen {
		t.Fatalf("IsSeen=%v err=%v, want false", seen, err)
	}
	if err := s.MarkSeen(ctx, "reddit", "a", 72*time.Hour); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}
	if got := f.ttl[seenKey("reddit", "a")]; got != 72*time.Hour {
		t.Errorf("ttl=%v", got)
	}
	if seen, err := s.IsSeen(ctx, "reddit", "a"); err != nil || !seen {
		t.Fatalf("IsSeen=%v err=%v, want true", seen, err)
	}
}

func TestSavePostStoresWithTTLAndIndexes(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s, f := newTestStore(now)
	p := StoredPost{Source: "reddit", ID: "abc", Title: "T", GeneratedAt: now.Add(-time.Hour)}
	if err := s.SavePost(context.Background(), p); err != nil {
		t.Fatalf("SavePost: %v", err)
	}
	if f.execs != 1 {
		t.Errorf("exec count=%d, want one transaction", f.execs)
	}
	if got := f.ttl[postKey("reddit", "abc")]; got != 7*24*time.Hour {
		t.Errorf("post ttl=%v", got)
	}
	if score, ok := f.zset[recentZKey]["reddit:abc"]; !ok || score != float64(p.GeneratedAt.Unix()) {
		t.Errorf("index score=%v ok=%v", score, ok)
	}
}

func TestSavePostPrunesExpiredIndexEntries(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s, f := newTestStore(now)
	f.zadd(recentZKey, "reddit:old", float64(now.Add(-8*24*time.Hour).Unix()))
	f.zadd(recentZKey, "reddit:kept", float64(now.Add(-6*24*time.Hour).Unix()))
	if err := s.SavePost(context.Background(), StoredPost{Source: "reddit", ID: "new", GeneratedAt: now}); err != nil {
		t.Fatalf("SavePost: %v", err)
	}
	if _, ok := f.zset[recentZKey]["reddit:old"]; ok {
		t.Errorf("entry older than the post ttl was not pruned")
	}
	for _, m := range []string{"reddit:kept", "reddit:new"} {
		if _, ok := f.zset[recentZKey][m]; !ok {
			t.Errorf("%s missing from index", m)
		}
	}
}

func TestRecentPostsNewestFirstSkipsExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s, f := newTestStore(now)
	for i, id := range []string{"p1", "p2", "p3"} {
		p := StoredPost{Source: "hackernews", ID: id, GeneratedAt: now.Add(time.Duration(i-3) * time.Hour)}
		if err := s.SavePost(ctx, p); err != nil {
			t.Fatalf("SavePost %s: %v", id, err)
		}
	}
	// the post body expired but its index entry survived
	delete(f.kv, postKey("hackernews", "p2"))

	got, err := s.RecentPosts(ctx, 10)
	if err != nil {
		t.Fatalf("RecentPosts: %v", err)
	}
	var order []string
	for _, p := range got {
		order = append(order, p.ID)
	}
	if strings.Join(order, ",") != "p3,p1" {
		t.Fatalf("order=%v, want [p3 p1]", order)
	}

	got, err = s.RecentPosts(ctx, 1)
	if err != nil || len(got) != 1 || got[0].ID != "p3" {
		t.Fatalf("RecentPosts(1)=%+v err=%v", got, err)
	}
	if got, err := s.RecentPosts(ctx, 0); err != nil || got != nil {
		t.Fatalf("RecentPosts(0)=%v err=%v", got, err)
	}
}
