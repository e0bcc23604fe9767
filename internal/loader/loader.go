// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package loader serves the page-level reads (article list, single article,
// stats, comments) from the response cache, falling back to the content
// backend on a miss, and keeps the cache honest after writes.
package loader

import (
	"context"
	"fmt"

	"github.com/apex/log"

	"github.com/hopeline/sitectl/internal/backend"
	"github.com/hopeline/sitectl/internal/cache"
	"github.com/hopeline/sitectl/internal/content"
)

type Loader struct {
	backend   backend.Backend
	store     *cache.Store
	coalescer *cache.Coalescer
}

type Option func(*Loader)

// WithCoalescing collapses concurrent misses on the same key into a single
// backend call.
func WithCoalescing() Option {
	return func(l *Loader) { l.coalescer = cache.NewCoalescer() }
}

func New(be backend.Backend, store *cache.Store, opts ...Option) *Loader {
	if store == nil {
		store = cache.NewStore()
	}
	l := &Loader{backend: be, store: store}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Store returns the cache the loader reads through.
func (l *Loader) Store() *cache.Store {
	return l.store
}

// Backend returns the loader's content source.
func (l *Loader) Backend() backend.Backend {
	return l.backend
}

func (l *Loader) Articles(ctx context.Context) ([]*content.Article, error) {
	return cache.GetOrFetchShared(ctx, l.coalescer, "articles",
		l.backend.Articles,
		l.store.Articles,
		l.store.SetArticles,
	)
}

// Article finds one article by id or slug in the (cached) published list.
func (l *Loader) Article(ctx context.Context, idOrSlug string) (*content.Article, error) {
	articles, err := l.Articles(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range articles {
		if a.ID == idOrSlug || (a.Slug != "" && a.Slug == idOrSlug) {
			return a, nil
		}
	}
	return nil, fmt.Errorf("article %s: %w", idOrSlug, content.ErrNotFound)
}

func (l *Loader) ArticleStats(ctx context.Context, articleID string) (*content.ArticleStats, error) {
	return cache.GetOrFetchShared(ctx, l.coalescer, "stats:"+articleID,
		func(ctx context.Context) (*content.ArticleStats, error) {
			return l.backend.ArticleStats(ctx, articleID)
		},
		func() (*content.ArticleStats, bool) { return l.store.ArticleStats(articleID) },
		func(v *content.ArticleStats) { l.store.SetArticleStats(articleID, v) },
	)
}

func (l *Loader) Comments(ctx context.Context, articleID string) ([]*content.Comment, error) {
	return cache.GetOrFetchShared(ctx, l.coalescer, "comments:"+articleID,
		func(ctx context.Context) ([]*content.Comment, error) {
			return l.backend.Comments(ctx, articleID)
		},
		func() ([]*content.Comment, bool) { return l.store.Comments(articleID) },
		func(v []*content.Comment) { l.store.SetComments(articleID, v) },
	)
}

// PostComment validates and stores a comment, then drops the article's
// cached comments and stats so the next read sees the new comment and count.
// Nothing is invalidated when the post fails.
func (l *Loader) PostComment(ctx context.Context, articleID string, c content.NewComment) (*content.Comment, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	created, err := l.backend.PostComment(ctx, articleID, c)
	if err != nil {
		return nil, err
	}

	l.store.InvalidateComments(articleID)
	l.store.InvalidateArticleStats(articleID)
	log.WithFields(log.Fields{"article": articleID, "comment": created.ID}).Info("comment posted")

	return created, nil
}

func (l *Loader) InvalidateArticles() {
	l.store.InvalidateArticles()
}

func (l *Loader) InvalidateArticleStats(articleID string) {
	l.store.InvalidateArticleStats(articleID)
}

func (l *Loader) InvalidateComments(articleID string) {
	l.store.InvalidateComments(articleID)
}

// Refresh drops everything cached.
func (l *Loader) Refresh() {
	l.store.Clear()
}

func (l *Loader) Info() cache.Info {
	return l.store.Info()
}
