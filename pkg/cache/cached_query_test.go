// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	Name  string   `json:"name"`
	Perms []string `json:"perms"`
}

func newTestCache(t *testing.T) (ICache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client), mr
}

func profileKey(_ context.Context, params ...any) (string, error) {
	if len(params) != 1 {
		return "", errors.New("want one param")
	}
	return fmt.Sprintf("test:profile:%v", params[0]), nil
}

func TestCachedQuery_HitAfterMiss(t *testing.T) {
	c, mr := newTestCache(t)
	var calls atomic.Int32
	cq := NewCachedQuery[profile](c, profileKey, func(ctx context.Context, params ...any) (profile, error) {
		calls.Add(1)
		return profile{Name: fmt.Sprint(params[0]), Perms: []string{"A_B"}}, nil
	}, WithTTL[profile](time.Minute))

	ctx := context.Background()
	first, err := cq.Get(ctx, 7)
	require.NoError(t, err)
	second, err := cq.Get(ctx, 7)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, mr.Exists("test:profile:7"))
	assert.Equal(t, time.Minute, mr.TTL("test:profile:7"))
}

func TestCachedQuery_Invalidate(t *testing.T) {
	c, mr := newTestCache(t)
	var calls atomic.Int32
	cq := NewCachedQuery[profile](c, profileKey, func(ctx context.Context, params ...any) (profile, error) {
		calls.Add(1)
		return profile{Name: "x"}, nil
	})

	ctx := context.Background()
	_, err := cq.Get(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, cq.Invalidate(ctx, 1))
	assert.False(t, mr.Exists("test:profile:1"))

	_, err = cq.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCachedQuery_TTLFunc(t *testing.T) {
	c, mr := newTestCache(t)
	ttlOf := func(p profile) (time.Duration, bool) {
		switch p.Name {
		case "short":
			return 10 * time.Second, true
		case "long":
			return time.Hour, true
		case "gone":
			return 0, true
		}
		return 0, false
	}
	cq := NewCachedQuery[profile](c, profileKey, func(ctx context.Context, params ...any) (profile, error) {
		return profile{Name: fmt.Sprint(params[0])}, nil
	}, WithTTL[profile](time.Minute), WithTTLFunc(ttlOf))

	ctx := context.Background()
	for _, name := range []string{"short", "long", "gone", "open"} {
		_, err := cq.Get(ctx, name)
		require.NoError(t, err)
	}

	assert.Equal(t, 10*time.Second, mr.TTL("test:profile:short"))
	assert.Equal(t, time.Minute, mr.TTL("test:profile:long"))
	assert.Equal(t, time.Minute, mr.TTL("test:profile:open"))
	assert.False(t, mr.Exists("test:profile:gone"))
}

func TestCachedQuery_NilCacheBypasses(t *testing.T) {
	var calls int
	cq := NewCachedQuery[int](nil, profileKey, func(ctx context.Context, params ...any) (int, error) {
		calls++
		return 42, nil
	})
	for i := 0; i < 3; i++ {
		v, err := cq.Get(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, 42, v)
	}
	assert.Equal(t, 3, calls)
	assert.NoError(t, cq.Invalidate(context.Background(), 1))
}

func TestCachedQuery_QueryErrorNotCached(t *testing.T) {
	c, mr := newTestCache(t)
	boom := errors.New("boom")
	cq := NewCachedQuery[int](c, profileKey, func(ctx context.Context, params ...any) (int, error) {
		return 0, boom
	})

	_, err := cq.Get(context.Background(), 3)
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("test:profile:3"))
}

func TestCachedQuery_RedisDownFallsBack(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	cq := NewCachedQuery[int](c, profileKey, func(ctx context.Context, params ...any) (int, error) {
		return 5, nil
	})
	v, err := cq.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestCachedQuery_CorruptEntryReloads(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("test:profile:9", "{not json"))

	cq := NewCachedQuery[profile](c, profileKey, func(ctx context.Context, params ...any) (profile, error) {
		return profile{Name: "fresh"}, nil
	})
	v, err := cq.Get(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "fresh", v.Name)
}

func TestCachedQuery_ConcurrentMissesShareLoad(t *testing.T) {
	c, _ := newTestCache(t)
	var calls atomic.Int32
	release := make(chan struct{})
	cq := NewCachedQuery[int](c, profileKey, func(ctx context.Context, params ...any) (int, error) {
		calls.Add(1)
		<-release
		return 1, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = cq.Get(context.Background(), 1)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(8))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestRedisCache_Incr(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	n, err := c.Incr(ctx, "epoch").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = c.Incr(ctx, "epoch").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestProvideRedis_Disabled(t *testing.T) {
	client, cleanup, err := ProvideRedis(Redis{})
	require.NoError(t, err)
	defer cleanup()
	assert.Nil(t, client)
	assert.Nil(t, ProvideICache(nil))
}

func TestNewRedis_IllegalMode(t *testing.T) {
	_, err := NewRedis(Redis{Mode: "cluster-of-doom"})
	assert.Error(t, err)
}
