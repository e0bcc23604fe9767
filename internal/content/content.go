// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package content

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxCommentLength is the longest comment body, in characters, that will be
// accepted for posting.
const MaxCommentLength = 2000

var (
	ErrNotFound       = errors.New("not found")
	ErrReadOnly       = errors.New("backend is read-only")
	ErrInvalidComment = errors.New("invalid comment")
)

// Article is a published news item. The json tags are the column names used
// by the content backends; the jsonapi tags drive CLI output.
type Article struct {
	ID          string    `json:"id" jsonapi:"primary,articles"`
	Title       string    `json:"title" jsonapi:"attr,title"`
	Slug        string    `json:"slug" jsonapi:"attr,slug"`
	Summary     string    `json:"summary" jsonapi:"attr,summary"`
	Body        string    `json:"content" jsonapi:"attr,body,omitempty"`
	Author      string    `json:"author" jsonapi:"attr,author"`
	Category    string    `json:"category" jsonapi:"attr,category"`
	ImageURL    string    `json:"image_url" jsonapi:"attr,image-url,omitempty"`
	PublishedAt time.Time `json:"published_at" jsonapi:"attr,published-at,iso8601"`
}

// ArticleStats are the engagement counters kept per article.
type ArticleStats struct {
	ArticleID    string `json:"article_id" jsonapi:"primary,article-stats"`
	Views        int64  `json:"views" jsonapi:"attr,views"`
	Likes        int64  `json:"likes" jsonapi:"attr,likes"`
	Shares       int64  `json:"shares" jsonapi:"attr,shares"`
	CommentCount int64  `json:"comments_count" jsonapi:"attr,comments"`
}

// Comment is a reader comment attached to an article.
type Comment struct {
	ID        string    `json:"id" jsonapi:"primary,comments"`
	ArticleID string    `json:"article_id" jsonapi:"attr,article-id"`
	Author    string    `json:"author_name" jsonapi:"attr,author"`
	Body      string    `json:"content" jsonapi:"attr,body"`
	CreatedAt time.Time `json:"created_at" jsonapi:"attr,created-at,iso8601"`
}

// NewComment is a comment as submitted by a reader, before the backend has
// assigned it an id and timestamp.
type NewComment struct {
	Author string `json:"author"`
	Body   string `json:"content"`
}

// Validate trims the comment in place and checks the required fields.
func (c *NewComment) Validate() error {
	c.Author = strings.TrimSpace(c.Author)
	c.Body = strings.TrimSpace(c.Body)

	if c.Author == "" {
		return fmt.Errorf("author is required: %w", ErrInvalidComment)
	}
	if c.Body == "" {
		return fmt.Errorf("content is required: %w", ErrInvalidComment)
	}
	if n := utf8.RuneCountInString(c.Body); n > MaxCommentLength {
		return fmt.Errorf("content is %d characters, max is %d: %w", n, MaxCommentLength, ErrInvalidComment)
	}
	return nil
}
