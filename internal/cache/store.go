// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/hopeline/sitectl/internal/content"
)

// articlesKey is the single slot the published article list lives in.
const articlesKey = "articles"

// Default freshness windows, per category.
const (
	DefaultArticlesTTL = 3 * time.Minute
	DefaultStatsTTL    = 1 * time.Minute
	DefaultCommentsTTL = 2 * time.Minute
)

// TTLs sets how long entries of each category stay fresh.
type TTLs struct {
	Articles time.Duration
	Stats    time.Duration
	Comments time.Duration
}

// DefaultTTLs returns the stock freshness windows.
func DefaultTTLs() TTLs {
	return TTLs{
		Articles: DefaultArticlesTTL,
		Stats:    DefaultStatsTTL,
		Comments: DefaultCommentsTTL,
	}
}

// Info is a snapshot of the live contents of a Store.
type Info struct {
	ArticlesCount       int   `json:"articlesCount"`
	StatsCount          int   `json:"statsCount"`
	CommentsCount       int   `json:"commentsCount"`
	MemoryUsageEstimate int64 `json:"totalMemoryUsageEstimate"`
}

// Store caches the published article list, per-article stats and per-article
// comment threads. Expired entries are dropped lazily: every getter sweeps all
// three categories before looking up, and every setter sweeps its own.
//
// A Store is safe for concurrent use. Backend fetches never happen under its
// lock; see GetOrFetch.
type Store struct {
	mu      sync.Mutex
	now     func() time.Time
	metrics Metrics

	articles *bucket[[]*content.Article]
	stats    *bucket[*content.ArticleStats]
	comments *bucket[[]*content.Comment]
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now as the store's time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTTLs overrides the per-category freshness windows. Zero values keep the
// default for that category.
func WithTTLs(ttls TTLs) Option {
	return func(s *Store) {
		if ttls.Articles > 0 {
			s.articles.ttl = ttls.Articles
		}
		if ttls.Stats > 0 {
			s.stats.ttl = ttls.Stats
		}
		if ttls.Comments > 0 {
			s.comments.ttl = ttls.Comments
		}
	}
}

// WithMetrics reports cache events to m.
func WithMetrics(m Metrics) Option {
	return func(s *Store) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	def := DefaultTTLs()
	s := &Store{
		now:      time.Now,
		metrics:  NoopMetrics{},
		articles: newBucket[[]*content.Article](CategoryArticles, def.Articles),
		stats:    newBucket[*content.ArticleStats](CategoryStats, def.Stats),
		comments: newBucket[[]*content.Comment](CategoryComments, def.Comments),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTLs returns the freshness windows in effect.
func (s *Store) TTLs() TTLs {
	s.mu.Lock()
	defer s.mu.Unlock()

	return TTLs{
		Articles: s.articles.ttl,
		Stats:    s.stats.ttl,
		Comments: s.comments.ttl,
	}
}

// Articles returns the cached article list, if fresh.
func (s *Store) Articles() ([]*content.Article, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepAllLocked(now)
	v, ok := s.articles.get(articlesKey, now)
	s.recordLocked(CategoryArticles, ok)
	return v, ok
}

// SetArticles caches the article list.
func (s *Store) SetArticles(articles []*content.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sweepLocked(s, s.articles, now)
	s.articles.set(articlesKey, articles, now)
}

// ArticleStats returns the cached stats for articleID, if fresh.
func (s *Store) ArticleStats(articleID string) (*content.ArticleStats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepAllLocked(now)
	v, ok := s.stats.get(articleID, now)
	s.recordLocked(CategoryStats, ok)
	return v, ok
}

// SetArticleStats caches stats for articleID.
func (s *Store) SetArticleStats(articleID string, stats *content.ArticleStats) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sweepLocked(s, s.stats, now)
	s.stats.set(articleID, stats, now)
}

// Comments returns the cached comment thread for articleID, if fresh.
func (s *Store) Comments(articleID string) ([]*content.Comment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepAllLocked(now)
	v, ok := s.comments.get(articleID, now)
	s.recordLocked(CategoryComments, ok)
	return v, ok
}

// SetComments caches the comment thread for articleID.
func (s *Store) SetComments(articleID string, comments []*content.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sweepLocked(s, s.comments, now)
	s.comments.set(articleID, comments, now)
}

// InvalidateArticles drops the cached article list. It is a no-op when
// nothing is cached.
func (s *Store) InvalidateArticles() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.articles.remove(articlesKey)
	s.metrics.Invalidate(CategoryArticles)
}

// InvalidateArticleStats drops the cached stats for articleID.
func (s *Store) InvalidateArticleStats(articleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.remove(articleID)
	s.metrics.Invalidate(CategoryStats)
}

// InvalidateComments drops the cached comment thread for articleID.
func (s *Store) InvalidateComments(articleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.comments.remove(articleID)
	s.metrics.Invalidate(CategoryComments)
}

// Clear empties every category.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.articles.clear()
	s.stats.clear()
	s.comments.clear()
	for _, cat := range []string{CategoryArticles, CategoryStats, CategoryComments} {
		s.metrics.Invalidate(cat)
	}
}

// Info sweeps expired entries and reports what is left. The memory figure is
// the size of the live values encoded as JSON, which is an estimate and not
// the process's real footprint.
func (s *Store) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepAllLocked(s.now())

	var size int64
	for _, ent := range s.articles.entries {
		size += jsonSize(ent.Value)
	}
	for _, ent := range s.stats.entries {
		size += jsonSize(ent.Value)
	}
	for _, ent := range s.comments.entries {
		size += jsonSize(ent.Value)
	}

	return Info{
		ArticlesCount:       s.articles.len(),
		StatsCount:          s.stats.len(),
		CommentsCount:       s.comments.len(),
		MemoryUsageEstimate: size,
	}
}

func (s *Store) sweepAllLocked(now time.Time) {
	sweepLocked(s, s.articles, now)
	sweepLocked(s, s.stats, now)
	sweepLocked(s, s.comments, now)
}

func (s *Store) recordLocked(category string, hit bool) {
	if hit {
		s.metrics.Hit(category)
	} else {
		s.metrics.Miss(category)
	}
}

func sweepLocked[T any](s *Store, b *bucket[T], now time.Time) {
	if n := b.sweep(now); n > 0 {
		s.metrics.Expire(b.category, n)
	}
}

func jsonSize(v any) int64 {
	b, err := json.Marshal(v)
	if err != nil {
		return 0
	}
	return int64(len(b))
}
