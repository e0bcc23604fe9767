// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/hopeline/sitectl/internal/content"
	"github.com/hopeline/sitectl/internal/loader"
	"github.com/hopeline/sitectl/internal/meta"
)

// StqCommandAction shows the engagement counters of one article.
func StqCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[*content.ArticleStats]{
		CommandName:  "stq",
		SchemaType:   reflect.TypeOf(content.ArticleStats{}),
		DefaultAttrs: []string{".id", "views", "likes", "shares", "comments"},
		FetchFn: func(ctx context.Context, cmd *cli.Command, l *loader.Loader) ([]*content.ArticleStats, error) {
			id, err := requireArg(cmd, "article id")
			if err != nil {
				return nil, err
			}
			stats, err := l.ArticleStats(ctx, id)
			if err != nil {
				return nil, err
			}
			return []*content.ArticleStats{stats}, nil
		},
	}
	return runner.Run(ctx, cmd)
}

func StqCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "stq",
		Usage:     "article stats query",
		UsageText: `sitectl stq <id> [options]`,
		ArgsUsage: "<id>",
		Action:    StqCommandAction,
		Meta:      meta,
	}).Build()
}
