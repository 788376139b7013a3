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
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-arcade/iam/pkg/log"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrCacheMiss indicates that the key was not found in cache
	ErrCacheMiss = redis.Nil
)

// QueryFunc loads the value from the source of truth.
type QueryFunc[T any] func(ctx context.Context, params ...any) (T, error)

// KeyFunc builds the cache key from the query params.
type KeyFunc func(ctx context.Context, params ...any) (string, error)

// CachedQuery is a read-through cache in front of QueryFunc. A nil cache
// degrades to calling QueryFunc directly. Concurrent misses on the same key
// share one load.
type CachedQuery[T any] struct {
	cache     ICache
	keyFunc   KeyFunc
	queryFunc QueryFunc[T]
	ttl       time.Duration
	ttlFunc   func(T) (time.Duration, bool)
	logPrefix string
	group     singleflight.Group
}

type CachedQueryOption[T any] func(*CachedQuery[T])

func WithTTL[T any](ttl time.Duration) CachedQueryOption[T] {
	return func(cq *CachedQuery[T]) {
		cq.ttl = ttl
	}
}

// WithTTLFunc lets a value shorten its own TTL. When f reports ok, the entry
// lives for the smaller of f's duration and the configured TTL; a duration
// under one millisecond skips caching the value.
func WithTTLFunc[T any](f func(T) (time.Duration, bool)) CachedQueryOption[T] {
	return func(cq *CachedQuery[T]) {
		cq.ttlFunc = f
	}
}

func WithLogPrefix[T any](prefix string) CachedQueryOption[T] {
	return func(cq *CachedQuery[T]) {
		cq.logPrefix = prefix
	}
}

func NewCachedQuery[T any](
	cache ICache,
	keyFunc KeyFunc,
	queryFunc QueryFunc[T],
	opts ...CachedQueryOption[T],
) *CachedQuery[T] {
	cq := &CachedQuery[T]{
		cache:     cache,
		keyFunc:   keyFunc,
		queryFunc: queryFunc,
		ttl:       time.Minute,
		logPrefix: "[CachedQuery]",
	}
	for _, opt := range opts {
		opt(cq)
	}
	return cq
}

// Get returns the cached value, loading and caching it on a miss.
// Cache errors are logged and never fail the call.
func (cq *CachedQuery[T]) Get(ctx context.Context, params ...any) (T, error) {
	if cq.cache == nil || cq.ttl <= 0 {
		return cq.queryFunc(ctx, params...)
	}

	var zero T
	cacheKey, err := cq.keyFunc(ctx, params...)
	if err != nil {
		log.Warnw(cq.logPrefix+" failed to build cache key, bypassing cache", "error", err)
		return cq.queryFunc(ctx, params...)
	}

	if result, ok := cq.lookup(ctx, cacheKey); ok {
		return result, nil
	}

	v, err, _ := cq.group.Do(cacheKey, func() (any, error) {
		log.Debugw(cq.logPrefix+" cache miss, querying from database", "key", cacheKey)
		result, err := cq.queryFunc(ctx, params...)
		if err != nil {
			return zero, err
		}
		cq.store(ctx, cacheKey, result)
		return result, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

func (cq *CachedQuery[T]) lookup(ctx context.Context, key string) (T, bool) {
	var result T
	data, err := cq.cache.Get(ctx, key).Result()
	switch {
	case errors.Is(err, ErrCacheMiss):
		return result, false
	case err != nil:
		log.Warnw(cq.logPrefix+" cache get error", "key", key, "error", err)
		return result, false
	}
	if err := sonic.UnmarshalString(data, &result); err != nil {
		log.Warnw(cq.logPrefix+" failed to unmarshal cached data", "key", key, "error", err)
		return result, false
	}
	log.Debugw(cq.logPrefix+" cache hit", "key", key)
	return result, true
}

func (cq *CachedQuery[T]) store(ctx context.Context, key string, value T) {
	ttl := cq.ttl
	if cq.ttlFunc != nil {
		if d, ok := cq.ttlFunc(value); ok {
			if d < time.Millisecond {
				log.Debugw(cq.logPrefix+" value expires before it can be cached", "key", key)
				return
			}
			ttl = min(ttl, d)
		}
	}
	data, err := sonic.MarshalString(value)
	if err != nil {
		log.Warnw(cq.logPrefix+" failed to marshal result for caching", "key", key, "error", err)
		return
	}
	if err := cq.cache.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Warnw(cq.logPrefix+" failed to cache result", "key", key, "error", err)
	}
}

// Invalidate drops the entry built from params.
func (cq *CachedQuery[T]) Invalidate(ctx context.Context, params ...any) error {
	if cq.cache == nil {
		return nil
	}
	cacheKey, err := cq.keyFunc(ctx, params...)
	if err != nil {
		return err
	}
	if err := cq.cache.Del(ctx, cacheKey).Err(); err != nil {
		return fmt.Errorf("invalidate %s: %w", cacheKey, err)
	}
	return nil
}
