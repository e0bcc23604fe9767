// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package sqlite

import (
	"time"

	"github.com/hopeline/sitectl/internal/content"
)

type articleRow struct {
	ID          string `gorm:"primaryKey"`
	Title       string `gorm:"not null"`
	Slug        string `gorm:"uniqueIndex"`
	Summary     string
	Content     string
	Author      string
	Category    string
	ImageURL    string
	Published   bool `gorm:"index"`
	PublishedAt time.Time
}

func (articleRow) TableName() string { return "articles" }

func (r articleRow) toContent() *content.Article {
	return &content.Article{
		ID:          r.ID,
		Title:       r.Title,
		Slug:        r.Slug,
		Summary:     r.Summary,
		Body:        r.Content,
		Author:      r.Author,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
		PublishedAt: r.PublishedAt,
	}
}

type statsRow struct {
	ArticleID     string `gorm:"primaryKey"`
	Views         int64
	Likes         int64
	Shares        int64
	CommentsCount int64
}

func (statsRow) TableName() string { return "article_stats" }

func (r statsRow) toContent() *content.ArticleStats {
	return &content.ArticleStats{
		ArticleID:    r.ArticleID,
		Views:        r.Views,
		Likes:        r.Likes,
		Shares:       r.Shares,
		CommentCount: r.CommentsCount,
	}
}

type commentRow struct {
	ID         string `gorm:"primaryKey"`
	ArticleID  string `gorm:"index;not null"`
	AuthorName string `gorm:"not null"`
	Content    string `gorm:"not null"`
	CreatedAt  time.Time
}

func (commentRow) TableName() string { return "comments" }

func (r commentRow) toContent() *content.Comment {
	return &content.Comment{
		ID:        r.ID,
		ArticleID: r.ArticleID,
		Author:    r.AuthorName,
		Body:      r.Content,
		CreatedAt: r.CreatedAt,
	}
}
