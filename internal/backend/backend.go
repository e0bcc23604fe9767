// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/hopeline/sitectl/internal/backend/rest"
	"github.com/hopeline/sitectl/internal/backend/s3"
	"github.com/hopeline/sitectl/internal/backend/sqlite"
	"github.com/hopeline/sitectl/internal/content"
)

// Types lists the accepted --backend values. The first is the default.
var Types = []string{"rest", "s3", "sqlite"}

var ErrUnknownBackend = errors.New("unknown backend")

// Backend is a source of site content.
type Backend interface {
	// Articles returns the published articles, newest first.
	Articles(ctx context.Context) ([]*content.Article, error)
	// ArticleStats returns zero counters for an article that has none yet.
	ArticleStats(ctx context.Context, articleID string) (*content.ArticleStats, error)
	// Comments returns an article's comments, oldest first.
	Comments(ctx context.Context, articleID string) ([]*content.Comment, error)
	PostComment(ctx context.Context, articleID string, c content.NewComment) (*content.Comment, error)
	String() string
	Type() string
}

var (
	_ Backend = (*rest.BackendRest)(nil)
	_ Backend = (*s3.BackendS3)(nil)
	_ Backend = (*sqlite.BackendSqlite)(nil)
)

// NewBackend builds the backend named by --backend from the command's flags.
func NewBackend(ctx context.Context, cmd *cli.Command) (Backend, error) {
	typ := strings.ToLower(strings.TrimSpace(cmd.String("backend")))
	if typ == "" {
		typ = Types[0]
	}
	log.Debugf("NewBackend: type: %s", typ)

	switch typ {
	case "rest":
		return rest.NewBackendRest(ctx, rest.FromCommand(cmd))
	case "s3":
		return s3.NewBackendS3(ctx, s3.FromCommand(cmd))
	case "sqlite":
		return sqlite.NewBackendSqlite(ctx, sqlite.FromCommand(cmd))
	}

	return nil, fmt.Errorf("%q (want one of %s): %w", typ, strings.Join(Types, ", "), ErrUnknownBackend)
}
