// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import "time"

// Entry is a cached value together with the time it was stored and how long
// it stays fresh.
type Entry[T any] struct {
	Value    T
	StoredAt time.Time
	TTL      time.Duration
}

// Fresh reports whether the entry is still valid at now. An entry whose age
// is exactly its TTL is still fresh.
func (e Entry[T]) Fresh(now time.Time) bool {
	return now.Sub(e.StoredAt) <= e.TTL
}

// bucket holds the entries of one category. All entries in a bucket share the
// category's TTL. A bucket is not safe for concurrent use; Store serializes
// access to it.
type bucket[T any] struct {
	category string
	ttl      time.Duration
	entries  map[string]Entry[T]
}

func newBucket[T any](category string, ttl time.Duration) *bucket[T] {
	return &bucket[T]{
		category: category,
		ttl:      ttl,
		entries:  make(map[string]Entry[T]),
	}
}

func (b *bucket[T]) get(key string, now time.Time) (T, bool) {
	ent, ok := b.entries[key]
	if !ok || !ent.Fresh(now) {
		var zero T
		return zero, false
	}
	return ent.Value, true
}

func (b *bucket[T]) set(key string, value T, now time.Time) {
	b.entries[key] = Entry[T]{Value: value, StoredAt: now, TTL: b.ttl}
}

func (b *bucket[T]) remove(key string) bool {
	if _, ok := b.entries[key]; !ok {
		return false
	}
	delete(b.entries, key)
	return true
}

// sweep drops every expired entry and returns how many were dropped.
func (b *bucket[T]) sweep(now time.Time) int {
	n := 0
	for key, ent := range b.entries {
		if !ent.Fresh(now) {
			delete(b.entries, key)
			n++
		}
	}
	return n
}

func (b *bucket[T]) clear() {
	clear(b.entries)
}

func (b *bucket[T]) len() int {
	return len(b.entries)
}
