// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopeline/sitectl/internal/content"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// countingMetrics records events per category.
type countingMetrics struct {
	mu          sync.Mutex
	hits        map[string]int
	misses      map[string]int
	expired     map[string]int
	invalidated map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{
		hits:        map[string]int{},
		misses:      map[string]int{},
		expired:     map[string]int{},
		invalidated: map[string]int{},
	}
}

func (m *countingMetrics) Hit(cat string)  { m.mu.Lock(); m.hits[cat]++; m.mu.Unlock() }
func (m *countingMetrics) Miss(cat string) { m.mu.Lock(); m.misses[cat]++; m.mu.Unlock() }
func (m *countingMetrics) Expire(cat string, n int) {
	m.mu.Lock()
	m.expired[cat] += n
	m.mu.Unlock()
}
func (m *countingMetrics) Invalidate(cat string) { m.mu.Lock(); m.invalidated[cat]++; m.mu.Unlock() }

func sampleArticles() []*content.Article {
	return []*content.Article{
		{ID: "a1", Title: "First", Slug: "first"},
		{ID: "a2", Title: "Second", Slug: "second"},
	}
}

func TestEntryFresh(t *testing.T) {
	stored := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	e := Entry[int]{Value: 1, StoredAt: stored, TTL: time.Minute}

	tests := []struct {
		name string
		age  time.Duration
		want bool
	}{
		{"just stored", 0, true},
		{"half way", 30 * time.Second, true},
		{"exactly ttl", time.Minute, true},
		{"one past ttl", time.Minute + time.Nanosecond, false},
		{"long gone", time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Fresh(stored.Add(tt.age)))
		})
	}
}

func TestNewStoreDefaults(t *testing.T) {
	s := NewStore()
	assert.Equal(t, DefaultTTLs(), s.TTLs())
	assert.Equal(t, 3*time.Minute, s.TTLs().Articles)
	assert.Equal(t, time.Minute, s.TTLs().Stats)
	assert.Equal(t, 2*time.Minute, s.TTLs().Comments)
	assert.Equal(t, Info{}, s.Info())
}

func TestWithTTLsKeepsDefaultsForZero(t *testing.T) {
	s := NewStore(WithTTLs(TTLs{Stats: 5 * time.Second}))
	ttls := s.TTLs()
	assert.Equal(t, DefaultArticlesTTL, ttls.Articles)
	assert.Equal(t, 5*time.Second, ttls.Stats)
	assert.Equal(t, DefaultCommentsTTL, ttls.Comments)
}

func TestArticlesRoundTrip(t *testing.T) {
	clock := newFakeClock()
	s := NewStore(WithClock(clock.Now))

	_, ok := s.Articles()
	assert.False(t, ok, "empty store should miss")

	s.SetArticles(sampleArticles())
	got, ok := s.Articles()
	require.True(t, ok)
	assert.Len(t, got, 2)
	assert.Equal(t, "a1", got[0].ID)

	clock.Advance(3 * time.Minute)
	_, ok = s.Articles()
	assert.True(t, ok, "still fresh at exactly the ttl")

	clock.Advance(time.Second)
	_, ok = s.Articles()
	assert.False(t, ok, "expired after the ttl")
}

func TestEmptyArticleListIsCached(t *testing.T) {
	s := NewStore()
	s.SetArticles([]*content.Article{})

	got, ok := s.Articles()
	assert.True(t, ok)
	assert.Empty(t, got)
	assert.Equal(t, 1, s.Info().ArticlesCount)
}

func TestStatsExpireAfterTTL(t *testing.T) {
	clock := newFakeClock()
	s := NewStore(WithClock(clock.Now))

	s.SetArticleStats("abc", &content.ArticleStats{ArticleID: "abc", Views: 10})
	got, ok := s.ArticleStats("abc")
	require.True(t, ok)
	assert.Equal(t, int64(10), got.Views)

	clock.Advance(61 * time.Second)
	got, ok = s.ArticleStats("abc")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestStatsAreKeyedByArticle(t *testing.T) {
	s := NewStore()
	s.SetArticleStats("a", &content.ArticleStats{ArticleID: "a", Likes: 1})
	s.SetArticleStats("b", &content.ArticleStats{ArticleID: "b", Likes: 2})

	a, ok := s.ArticleStats("a")
	require.True(t, ok)
	b, ok := s.ArticleStats("b")
	require.True(t, ok)
	assert.Equal(t, int64(1), a.Likes)
	assert.Equal(t, int64(2), b.Likes)

	_, ok = s.ArticleStats("c")
	assert.False(t, ok)
}

func TestSetOverwritesAndRestartsTTL(t *testing.T) {
	clock := newFakeClock()
	s := NewStore(WithClock(clock.Now))

	s.SetArticleStats("a", &content.ArticleStats{Views: 1})
	clock.Advance(50 * time.Second)
	s.SetArticleStats("a", &content.ArticleStats{Views: 2})
	clock.Advance(50 * time.Second)

	got, ok := s.ArticleStats("a")
	require.True(t, ok, "second set restarts the ttl")
	assert.Equal(t, int64(2), got.Views)
}

func TestInvalidateComments(t *testing.T) {
	s := NewStore()
	s.SetComments("abc", []*content.Comment{{ID: "c1"}, {ID: "c2"}})

	_, ok := s.Comments("abc")
	require.True(t, ok)

	s.InvalidateComments("abc")
	got, ok := s.Comments("abc")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestInvalidateMissingKeyIsNoop(t *testing.T) {
	s := NewStore()
	s.SetArticleStats("keep", &content.ArticleStats{})

	assert.NotPanics(t, func() {
		s.InvalidateArticles()
		s.InvalidateArticleStats("nope")
		s.InvalidateComments("nope")
	})

	_, ok := s.ArticleStats("keep")
	assert.True(t, ok)
}

func TestInvalidateOnlyTouchesOneKey(t *testing.T) {
	s := NewStore()
	s.SetArticles(sampleArticles())
	s.SetArticleStats("a", &content.ArticleStats{})
	s.SetArticleStats("b", &content.ArticleStats{})

	s.InvalidateArticleStats("a")

	_, ok := s.ArticleStats("a")
	assert.False(t, ok)
	_, ok = s.ArticleStats("b")
	assert.True(t, ok)
	_, ok = s.Articles()
	assert.True(t, ok)
}

func TestClear(t *testing.T) {
	s := NewStore()
	s.SetArticles(sampleArticles())
	s.SetArticleStats("a", &content.ArticleStats{})
	s.SetComments("a", []*content.Comment{{ID: "c"}})

	s.Clear()

	assert.Equal(t, Info{}, s.Info())
	_, ok := s.Articles()
	assert.False(t, ok)
}

func TestInfoExcludesExpiredEntries(t *testing.T) {
	clock := newFakeClock()
	s := NewStore(WithClock(clock.Now))

	s.SetArticles(sampleArticles())
	s.SetArticleStats("a", &content.ArticleStats{ArticleID: "a"})
	s.SetComments("a", []*content.Comment{{ID: "c1"}})

	info := s.Info()
	assert.Equal(t, 1, info.ArticlesCount)
	assert.Equal(t, 1, info.StatsCount)
	assert.Equal(t, 1, info.CommentsCount)
	assert.Positive(t, info.MemoryUsageEstimate)

	clock.Advance(90 * time.Second)
	info = s.Info()
	assert.Equal(t, 1, info.ArticlesCount)
	assert.Equal(t, 0, info.StatsCount, "stats ttl is one minute")
	assert.Equal(t, 1, info.CommentsCount)

	clock.Advance(5 * time.Minute)
	assert.Equal(t, Info{}, s.Info())
}

func TestInfoDropsOnlyExpiredStats(t *testing.T) {
	clock := newFakeClock()
	s := NewStore(WithClock(clock.Now))

	s.SetArticleStats("a1", &content.ArticleStats{ArticleID: "a1", Views: 1})
	clock.Advance(45 * time.Second)
	s.SetArticles(sampleArticles())
	s.SetArticleStats("a2", &content.ArticleStats{ArticleID: "a2", Views: 2})
	s.SetComments("a1", []*content.Comment{{ID: "c1"}})

	// a1 stats are now 75s old, a2 stats 30s.
	clock.Advance(30 * time.Second)
	info := s.Info()
	assert.Equal(t, 1, info.ArticlesCount)
	assert.Equal(t, 1, info.StatsCount)
	assert.Equal(t, 1, info.CommentsCount)

	_, ok := s.ArticleStats("a1")
	assert.False(t, ok)
	got, ok := s.ArticleStats("a2")
	require.True(t, ok)
	assert.Equal(t, int64(2), got.Views)
}

func TestInfoMemoryEstimateGrows(t *testing.T) {
	s := NewStore()
	s.SetComments("a", []*content.Comment{{ID: "c1", Body: "short"}})
	small := s.Info().MemoryUsageEstimate

	s.SetComments("a", []*content.Comment{{ID: "c1", Body: "a considerably longer comment body than before"}})
	large := s.Info().MemoryUsageEstimate

	assert.Greater(t, large, small)
}

func TestGetterSweepsOtherCategories(t *testing.T) {
	clock := newFakeClock()
	m := newCountingMetrics()
	s := NewStore(WithClock(clock.Now), WithMetrics(m))

	s.SetArticleStats("a", &content.ArticleStats{})
	s.SetArticleStats("b", &content.ArticleStats{})
	clock.Advance(2 * time.Minute)

	_, _ = s.Articles()

	assert.Equal(t, 2, m.expired[CategoryStats])
	assert.Equal(t, 0, s.stats.len(), "article lookup sweeps stats too")
}

func TestMetricsEvents(t *testing.T) {
	m := newCountingMetrics()
	s := NewStore(WithMetrics(m))

	_, _ = s.Comments("x")
	s.SetComments("x", nil)
	_, _ = s.Comments("x")
	_, _ = s.Comments("x")
	s.InvalidateComments("x")
	s.Clear()

	assert.Equal(t, 1, m.misses[CategoryComments])
	assert.Equal(t, 2, m.hits[CategoryComments])
	assert.Equal(t, 2, m.invalidated[CategoryComments])
	assert.Equal(t, 1, m.invalidated[CategoryArticles])
	assert.Equal(t, 1, m.invalidated[CategoryStats])
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i%5))
			s.SetArticleStats(id, &content.ArticleStats{Views: int64(i)})
			_, _ = s.ArticleStats(id)
			if i%10 == 0 {
				s.InvalidateArticleStats(id)
			}
			_ = s.Info()
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, s.Info().StatsCount, 5)
}
