package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// resultTTL bounds how long generated posts stay retrievable.
const resultTTL = 7 * 24 * time.Hour

type RedisStore struct {
	rdb redis.Cmdable
	now func() time.Time
}

func NewRedisStore(rdb redis.Cmdable) *RedisStore {
	return &RedisStore{rdb: rdb, now: time.Now}
}

// StoredPost is the persisted form of one generated post.
type StoredPost struct {
	Source      string    `json:"source"`
	Board       string    `json:"board"`
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Model       string    `json:"model"`
	TopLevel    int       `json:"top_level"`
	Comments    int       `json:"comments"`
	GeneratedAt time.Time `json:"generated_at"`
}

func seenKey(source, id string) string {
	return fmt.Sprintf("digest:seen:%s:%s", source, id)
}

func postKey(source, id string) string {
	return fmt.Sprintf("digest:post:%s:%s", source, id)
}

const recentZKey = "digest:recent"

// IsSeen reports whether the submission was used recently.
func (s *RedisStore) IsSeen(ctx context.Context, source, id string) (bool, error) {
	_, err := s.rdb.Get(ctx, seenKey(source, id)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkSeen marks a submission as used for d. Non-positive d is a no-op.
func (s *RedisStore) MarkSeen(ctx context.Context, source, id string, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, seenKey(source, id), "1", d).Err()
}

// SavePost stores a generated post and indexes it by generation time.
func (s *RedisStore) SavePost(ctx context.Context, p StoredPost) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	member := p.Source + ":" + p.ID
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, postKey(p.Source, p.ID), b, resultTTL)
	pipe.ZAdd(ctx, recentZKey, redis.Z{Score: float64(p.GeneratedAt.Unix()), Member: member})
	// drop index entries whose post has expired
	pipe.ZRemRangeByScore(ctx, recentZKey, "-inf", fmt.Sprintf("(%d", s.now().Add(-resultTTL).Unix()))
	_, err = pipe.Exec(ctx)
	return err
}

// RecentPosts returns up to n posts, newest first.
func (s *RedisStore) RecentPosts(ctx context.Context, n int) ([]StoredPost, error) {
	if n <= 0 {
		return nil, nil
	}
	members, err := s.rdb.ZRevRange(ctx, recentZKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]StoredPost, 0, len(members))
	for _, m := range members {
		source, id, ok := splitMember(m)
		if !ok {
			continue
		}
		b, err := s.rdb.Get(ctx, postKey(source, id)).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, err
		}
		var p StoredPost
		if err := json.Unmarshal(b, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func splitMember(m string) (source, id string, ok bool) {
	source, id, found := strings.Cut(m, ":")
	return source, id, found && source != "" && id != ""
}
