// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"
	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/hopeline/sitectl/internal/content"
)

// DefaultDSN is used when --dsn is empty.
const DefaultDSN = "sitectl.db"

// BackendSqlite keeps content in a local SQLite file, for development
// without the hosted API.
type BackendSqlite struct {
	DSN string
	db  *gorm.DB
	now func() time.Time
}

type BackendOption func(*BackendSqlite) error

func FromCommand(cmd *cli.Command) BackendOption {
	return func(be *BackendSqlite) error {
		if cmd == nil {
			return nil
		}
		if dsn := cmd.String("dsn"); dsn != "" {
			be.DSN = dsn
		}
		return nil
	}
}

func WithDSN(dsn string) BackendOption {
	return func(be *BackendSqlite) error {
		be.DSN = dsn
		return nil
	}
}

// NewBackendSqlite opens (creating if needed) the database and migrates the
// content tables.
func NewBackendSqlite(ctx context.Context, opts ...BackendOption) (*BackendSqlite, error) {
	be := &BackendSqlite{DSN: DefaultDSN, now: time.Now}
	for _, opt := range opts {
		if err := opt(be); err != nil {
			return nil, err
		}
	}

	if err := ensureDirectory(be.DSN); err != nil {
		return nil, fmt.Errorf("ensure sqlite directory: %w", err)
	}

	db, err := gorm.Open(gormsqlite.Open(be.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&articleRow{}, &statsRow{}, &commentRow{}); err != nil {
		return nil, fmt.Errorf("migrate sqlite db: %w", err)
	}

	be.db = db
	log.Debugf("sqlite backend: %s", be.DSN)
	return be, nil
}

func ensureDirectory(dsn string) error {
	candidate := strings.TrimSpace(dsn)
	if candidate == "" || candidate == ":memory:" {
		return nil
	}

	candidate = strings.TrimPrefix(candidate, "file:")
	if idx := strings.Index(candidate, "?"); idx >= 0 {
		candidate = candidate[:idx]
	}

	dir := filepath.Dir(candidate)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// Close releases the underlying connection pool.
func (be *BackendSqlite) Close() error {
	sqlDB, err := be.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (be *BackendSqlite) Articles(ctx context.Context) ([]*content.Article, error) {
	var rows []articleRow
	if err := be.db.WithContext(ctx).
		Where("published = ?", true).
		Order("published_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}

	articles := make([]*content.Article, 0, len(rows))
	for _, r := range rows {
		articles = append(articles, r.toContent())
	}
	return articles, nil
}

func (be *BackendSqlite) ArticleStats(ctx context.Context, articleID string) (*content.ArticleStats, error) {
	var row statsRow
	err := be.db.WithContext(ctx).Where("article_id = ?", articleID).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &content.ArticleStats{ArticleID: articleID}, nil
		}
		return nil, fmt.Errorf("query stats for %s: %w", articleID, err)
	}
	return row.toContent(), nil
}

func (be *BackendSqlite) Comments(ctx context.Context, articleID string) ([]*content.Comment, error) {
	var rows []commentRow
	if err := be.db.WithContext(ctx).
		Where("article_id = ?", articleID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query comments for %s: %w", articleID, err)
	}

	comments := make([]*content.Comment, 0, len(rows))
	for _, r := range rows {
		comments = append(comments, r.toContent())
	}
	return comments, nil
}

// PostComment stores the comment and bumps the article's comment counter in
// one transaction. The article must exist.
func (be *BackendSqlite) PostComment(ctx context.Context, articleID string, c content.NewComment) (*content.Comment, error) {
	row := commentRow{
		ID:         uuid.NewString(),
		ArticleID:  articleID,
		AuthorName: c.Author,
		Content:    c.Body,
		CreatedAt:  be.now().UTC(),
	}

	err := be.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&articleRow{}).Where("id = ?", articleID).Count(&n).Error; err != nil {
			return fmt.Errorf("check article: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("article %s: %w", articleID, content.ErrNotFound)
		}

		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("insert comment: %w", err)
		}

		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "article_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"comments_count": gorm.Expr("comments_count + 1"),
			}),
		}).Create(&statsRow{ArticleID: articleID, CommentsCount: 1}).Error
	})
	if err != nil {
		return nil, err
	}

	return row.toContent(), nil
}

// SaveArticle inserts or replaces an article.
func (be *BackendSqlite) SaveArticle(ctx context.Context, a *content.Article, published bool) error {
	row := articleRow{
		ID:          a.ID,
		Title:       a.Title,
		Slug:        a.Slug,
		Summary:     a.Summary,
		Content:     a.Body,
		Author:      a.Author,
		Category:    a.Category,
		ImageURL:    a.ImageURL,
		Published:   published,
		PublishedAt: a.PublishedAt,
	}
	if err := be.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("upsert article %s: %w", a.ID, err)
	}
	return nil
}

// SaveStats inserts or replaces an article's counters.
func (be *BackendSqlite) SaveStats(ctx context.Context, s *content.ArticleStats) error {
	row := statsRow{
		ArticleID:     s.ArticleID,
		Views:         s.Views,
		Likes:         s.Likes,
		Shares:        s.Shares,
		CommentsCount: s.CommentCount,
	}
	if err := be.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("upsert stats %s: %w", s.ArticleID, err)
	}
	return nil
}

func (be *BackendSqlite) String() string {
	return "backend-sqlite " + be.DSN
}

func (be *BackendSqlite) Type() string {
	return "sqlite"
}
