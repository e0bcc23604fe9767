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

// AqCommandAction lists the published articles, or the single article named
// by an id or slug argument.
func AqCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[*content.Article]{
		CommandName:  "aq",
		SchemaType:   reflect.TypeOf(content.Article{}),
		DefaultAttrs: []string{".id", "title", "published-at"},
		FetchFn: func(ctx context.Context, cmd *cli.Command, l *loader.Loader) ([]*content.Article, error) {
			if idOrSlug := cmd.Args().First(); idOrSlug != "" {
				a, err := l.Article(ctx, idOrSlug)
				if err != nil {
					return nil, err
				}
				return []*content.Article{a}, nil
			}
			return l.Articles(ctx)
		},
	}
	return runner.Run(ctx, cmd)
}

func AqCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "aq",
		Usage:     "article query",
		UsageText: `sitectl aq [id|slug] [options]`,
		ArgsUsage: "[id|slug]",
		Action:    AqCommandAction,
		Meta:      meta,
	}).Build()
}
