// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopeline/sitectl/internal/cache"
	"github.com/hopeline/sitectl/internal/content"
)

// fakeBackend counts calls per operation and serves canned content.
type fakeBackend struct {
	mu       sync.Mutex
	articles []*content.Article
	stats    map[string]*content.ArticleStats
	comments map[string][]*content.Comment
	err      error
	delay    time.Duration

	articleCalls atomic.Int32
	statsCalls   atomic.Int32
	commentCalls atomic.Int32
	postCalls    atomic.Int32
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		articles: []*content.Article{
			{ID: "a1", Slug: "first", Title: "First"},
			{ID: "a2", Slug: "second", Title: "Second"},
		},
		stats:    map[string]*content.ArticleStats{"a1": {ArticleID: "a1", Views: 3}},
		comments: map[string][]*content.Comment{"a1": {{ID: "c1", ArticleID: "a1"}}},
	}
}

func (f *fakeBackend) Articles(context.Context) ([]*content.Article, error) {
	f.articleCalls.Add(1)
	time.Sleep(f.delay)
	if f.err != nil {
		return nil, f.err
	}
	return f.articles, nil
}

func (f *fakeBackend) ArticleStats(_ context.Context, id string) (*content.ArticleStats, error) {
	f.statsCalls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.stats[id]; ok {
		cp := *s
		return &cp, nil
	}
	return &content.ArticleStats{ArticleID: id}, nil
}

func (f *fakeBackend) Comments(_ context.Context, id string) ([]*content.Comment, error) {
	f.commentCalls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*content.Comment{}, f.comments[id]...), nil
}

func (f *fakeBackend) PostComment(_ context.Context, id string, c content.NewComment) (*content.Comment, error) {
	f.postCalls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	created := &content.Comment{ID: "new", ArticleID: id, Author: c.Author, Body: c.Body}
	f.comments[id] = append(f.comments[id], created)
	if s, ok := f.stats[id]; ok {
		s.CommentCount++
	}
	return created, nil
}

func (f *fakeBackend) String() string { return "fake" }
func (f *fakeBackend) Type() string   { return "fake" }

func TestArticlesAreCached(t *testing.T) {
	be := newFakeBackend()
	l := New(be, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := l.Articles(ctx)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	}
	assert.Equal(t, int32(1), be.articleCalls.Load())

	l.InvalidateArticles()
	_, err := l.Articles(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), be.articleCalls.Load())
}

func TestArticleByIDOrSlug(t *testing.T) {
	be := newFakeBackend()
	l := New(be, nil)
	ctx := context.Background()

	got, err := l.Article(ctx, "a2")
	require.NoError(t, err)
	assert.Equal(t, "Second", got.Title)

	got, err = l.Article(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, "a1", got.ID)

	_, err = l.Article(ctx, "zzz")
	assert.ErrorIs(t, err, content.ErrNotFound)

	assert.Equal(t, int32(1), be.articleCalls.Load(), "lookups share the cached list")
}

func TestStatsExpire(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	be := newFakeBackend()
	l := New(be, cache.NewStore(cache.WithClock(func() time.Time { return now })))
	ctx := context.Background()

	_, err := l.ArticleStats(ctx, "a1")
	require.NoError(t, err)
	_, err = l.ArticleStats(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), be.statsCalls.Load())

	now = now.Add(61 * time.Second)
	_, err = l.ArticleStats(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), be.statsCalls.Load())
}

func TestBackendErrorPropagates(t *testing.T) {
	be := newFakeBackend()
	boom := errors.New("backend down")
	be.err = boom
	l := New(be, nil)

	_, err := l.Comments(context.Background(), "a1")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, l.Info().CommentsCount)
}

func TestPostCommentInvalidates(t *testing.T) {
	be := newFakeBackend()
	l := New(be, nil)
	ctx := context.Background()

	comments, err := l.Comments(ctx, "a1")
	require.NoError(t, err)
	assert.Len(t, comments, 1)
	stats, err := l.ArticleStats(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.CommentCount)

	created, err := l.PostComment(ctx, "a1", content.NewComment{Author: "  ann ", Body: " hello "})
	require.NoError(t, err)
	assert.Equal(t, "ann", created.Author)
	assert.Equal(t, "hello", created.Body)

	comments, err = l.Comments(ctx, "a1")
	require.NoError(t, err)
	assert.Len(t, comments, 2, "new comment is not masked by the cache")

	stats, err = l.ArticleStats(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.CommentCount)

	assert.Equal(t, int32(2), be.commentCalls.Load())
	assert.Equal(t, int32(2), be.statsCalls.Load())
}

func TestPostCommentValidation(t *testing.T) {
	be := newFakeBackend()
	l := New(be, nil)

	_, err := l.PostComment(context.Background(), "a1", content.NewComment{Author: "", Body: "x"})
	assert.ErrorIs(t, err, content.ErrInvalidComment)
	assert.Equal(t, int32(0), be.postCalls.Load())
}

func TestPostCommentFailureKeepsCache(t *testing.T) {
	be := newFakeBackend()
	l := New(be, nil)
	ctx := context.Background()

	_, err := l.Comments(ctx, "a1")
	require.NoError(t, err)

	be.err = errors.New("write failed")
	_, err = l.PostComment(ctx, "a1", content.NewComment{Author: "a", Body: "b"})
	require.Error(t, err)

	assert.Equal(t, 1, l.Info().CommentsCount)
}

func TestRefresh(t *testing.T) {
	be := newFakeBackend()
	l := New(be, nil)
	ctx := context.Background()

	_, _ = l.Articles(ctx)
	_, _ = l.ArticleStats(ctx, "a1")
	_, _ = l.Comments(ctx, "a1")
	assert.Equal(t, cache.Info{ArticlesCount: 1, StatsCount: 1, CommentsCount: 1, MemoryUsageEstimate: l.Info().MemoryUsageEstimate}, l.Info())

	l.Refresh()
	assert.Equal(t, cache.Info{}, l.Info())
}

func TestCoalescing(t *testing.T) {
	be := newFakeBackend()
	be.delay = 50 * time.Millisecond
	l := New(be, nil, WithCoalescing())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Articles(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), be.articleCalls.Load())
}
