// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopeline/sitectl/internal/content"
)

func newTestBackend(t *testing.T) *BackendSqlite {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "nested", "site.db")
	be, err := NewBackendSqlite(context.Background(), WithDSN(dsn))
	require.NoError(t, err)
	t.Cleanup(func() { _ = be.Close() })
	return be
}

func seed(t *testing.T, be *BackendSqlite) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, be.SaveArticle(ctx, &content.Article{ID: "a1", Title: "Old", Slug: "old", PublishedAt: base}, true))
	require.NoError(t, be.SaveArticle(ctx, &content.Article{ID: "a2", Title: "New", Slug: "new", PublishedAt: base.Add(time.Hour)}, true))
	require.NoError(t, be.SaveArticle(ctx, &content.Article{ID: "d1", Title: "Draft", Slug: "draft", PublishedAt: base.Add(2 * time.Hour)}, false))
}

func TestArticlesPublishedNewestFirst(t *testing.T) {
	be := newTestBackend(t)
	seed(t, be)

	got, err := be.Articles(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a2", got[0].ID)
	assert.Equal(t, "a1", got[1].ID)
}

func TestSaveArticleReplaces(t *testing.T) {
	be := newTestBackend(t)
	seed(t, be)

	require.NoError(t, be.SaveArticle(context.Background(), &content.Article{ID: "a1", Title: "Renamed", Slug: "old"}, true))

	got, err := be.Articles(context.Background())
	require.NoError(t, err)
	titles := []string{}
	for _, a := range got {
		titles = append(titles, a.Title)
	}
	assert.Contains(t, titles, "Renamed")
	assert.NotContains(t, titles, "Old")
}

func TestArticleStats(t *testing.T) {
	be := newTestBackend(t)
	ctx := context.Background()

	got, err := be.ArticleStats(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, content.ArticleStats{ArticleID: "a1"}, *got)

	require.NoError(t, be.SaveStats(ctx, &content.ArticleStats{ArticleID: "a1", Views: 40, Likes: 4}))
	got, err = be.ArticleStats(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, int64(40), got.Views)
	assert.Equal(t, int64(4), got.Likes)
}

func TestPostComment(t *testing.T) {
	be := newTestBackend(t)
	seed(t, be)
	ctx := context.Background()

	clock := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	be.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	first, err := be.PostComment(ctx, "a1", content.NewComment{Author: "ann", Body: "first"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "a1", first.ArticleID)

	_, err = be.PostComment(ctx, "a1", content.NewComment{Author: "bob", Body: "second"})
	require.NoError(t, err)

	comments, err := be.Comments(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Body)
	assert.Equal(t, "bob", comments[1].Author)

	stats, err := be.ArticleStats(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.CommentCount)
}

func TestPostCommentUnknownArticle(t *testing.T) {
	be := newTestBackend(t)

	_, err := be.PostComment(context.Background(), "nope", content.NewComment{Author: "a", Body: "b"})
	assert.ErrorIs(t, err, content.ErrNotFound)

	comments, err := be.Comments(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestEnsureDirectory(t *testing.T) {
	dir := t.TempDir()
	tests := []string{
		"",
		":memory:",
		"local.db",
		"file:" + filepath.Join(dir, "x", "y.db") + "?cache=shared",
	}
	for _, dsn := range tests {
		assert.NoError(t, ensureDirectory(dsn), dsn)
	}
	assert.DirExists(t, filepath.Join(dir, "x"))
}
