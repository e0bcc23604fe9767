// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"

	"github.com/apex/log"
	"golang.org/x/sync/singleflight"
)

// Fetcher loads a value from the content backend.
type Fetcher[T any] func(ctx context.Context) (T, error)

// GetOrFetch returns the cached value when get finds one. Otherwise it calls
// fetch, stores the result with set and returns it. A failed fetch stores
// nothing and its error is returned as is.
//
// Concurrent misses on the same key each call fetch; the last one to finish
// wins the slot. Use GetOrFetchShared to collapse them.
func GetOrFetch[T any](ctx context.Context, key string, fetch Fetcher[T], get func() (T, bool), set func(T)) (T, error) {
	if v, ok := get(); ok {
		log.Debugf("cache hit: %s", key)
		return v, nil
	}

	log.Debugf("cache miss: %s", key)
	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	set(v)

	return v, nil
}

// Coalescer collapses concurrent fetches of the same key into one backend
// call. The zero value is not usable; use NewCoalescer.
type Coalescer struct {
	group *singleflight.Group
}

// NewCoalescer returns a ready Coalescer.
func NewCoalescer() *Coalescer {
	return &Coalescer{group: &singleflight.Group{}}
}

// GetOrFetchShared behaves like GetOrFetch, except that callers missing on the
// same key at the same time share a single fetch and its result or error. The
// shared fetch keeps the values of the caller that started it but not its
// cancellation. Each caller stops waiting when its own ctx is done, and the
// fetch carries on for the others. A nil Coalescer falls back to GetOrFetch.
func GetOrFetchShared[T any](ctx context.Context, c *Coalescer, key string, fetch Fetcher[T], get func() (T, bool), set func(T)) (T, error) {
	if c == nil || c.group == nil {
		return GetOrFetch(ctx, key, fetch, get, set)
	}

	if v, ok := get(); ok {
		log.Debugf("cache hit: %s", key)
		return v, nil
	}

	log.Debugf("cache miss: %s", key)
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		v, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		set(v)
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		log.Debugf("cache fetch abandoned: %s", key)
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		if res.Shared {
			log.Debugf("cache fetch shared: %s", key)
		}
		return res.Val.(T), nil
	}
}
