package storage

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// fakeRedis implements the handful of commands RedisStore issues.
// Any other command panics through the nil embedded interface.
type fakeRedis struct {
	redis.Cmdable
	kv    map[string]string
	ttl   map[string]time.Duration
	zset  map[string]map[string]float64
	execs int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		kv:   map[string]string{},
		ttl:  map[string]time.Duration{},
		zset: map[string]map[string]float64{},
	}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := f.kv[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, exp time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.kv[key] = string(v)
	case string:
		f.kv[key] = v
	}
	f.ttl[key] = exp
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) ZRevRange(_ context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	members := make([]string, 0, len(f.zset[key]))
	for m := range f.zset[key] {
		members = append(members, m)
	}
	sort.Slice(members, func(i, j int) bool {
		return f.zset[key][members[i]] > f.zset[key][members[j]]
	})
	if stop < 0 || stop >= int64(len(members)) {
		stop = int64(len(members)) - 1
	}
	if start > stop {
		return redis.NewStringSliceResult([]string{}, nil)
	}
	return redis.NewStringSliceResult(members[start:stop+1], nil)
}

func (f *fakeRedis) TxPipeline() redis.Pipeliner {
	return &fakePipe{f: f}
}

func (f *fakeRedis) zadd(key, member string, score float64) {
	if f.zset[key] == nil {
		f.zset[key] = map[string]float64{}
	}
	f.zset[key][member] = score
}

// fakePipe queues writes and applies them on Exec.
type fakePipe struct {
	redis.Pipeliner
	f      *fakeRedis
	queued []func()
}

func (p *fakePipe) Set(ctx context.Context, key string, value interface{}, exp time.Duration) *redis.StatusCmd {
	p.queued = append(p.queued, func() { p.f.Set(ctx, key, value, exp) })
	return redis.NewStatusResult("", nil)
}

func (p *fakePipe) ZAdd(_ context.Context, key string, members ...redis.Z) *redis.IntCmd {
	p.queued = append(p.queued, func() {
		for _, z := range members {
			p.f.zadd(key, z.Member.(string), z.Score)
		}
	})
	return redis.NewIntResult(0, nil)
}

// ZRemRangeByScore supports the "-inf" to "(max" form only.
func (p *fakePipe) ZRemRangeByScore(_ context.Context, key, min, max string) *redis.IntCmd {
	p.queued = append(p.queued, func() {
		limit, err := strconv.ParseFloat(strings.TrimPrefix(max, "("), 64)
		if err != nil || min != "-inf" {
			panic("unsupported range " + min + " " + max)
		}
		for m, score := range p.f.zset[key] {
			if score < limit {
				delete(p.f.zset[key], m)
			}
		}
	})
	return redis.NewIntResult(0, nil)
}

func (p *fakePipe) Exec(context.Context) ([]redis.Cmder, error) {
	for _, op := range p.queued {
		op()
	}
	p.queued = nil
	p.f.execs++
	return nil, nil
}
