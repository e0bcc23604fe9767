// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

// Cache categories. They are also the label values reported to Metrics.
const (
	CategoryArticles = "articles"
	CategoryStats    = "stats"
	CategoryComments = "comments"
)

// Metrics receives cache events. Implementations must be safe for concurrent
// use and must not block; they are called with the store lock held.
type Metrics interface {
	// Hit is called when a getter finds a fresh entry.
	Hit(category string)
	// Miss is called when a getter finds nothing fresh.
	Miss(category string)
	// Expire is called with the number of entries a sweep dropped.
	Expire(category string, n int)
	// Invalidate is called for every explicit invalidation, including Clear.
	Invalidate(category string)
}

// NoopMetrics discards every event.
type NoopMetrics struct{}

func (NoopMetrics) Hit(string)         {}
func (NoopMetrics) Miss(string)        {}
func (NoopMetrics) Expire(string, int) {}
func (NoopMetrics) Invalidate(string)  {}
