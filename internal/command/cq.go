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

// CqCommandAction lists the comments on one article, oldest first.
func CqCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[*content.Comment]{
		CommandName:  "cq",
		SchemaType:   reflect.TypeOf(content.Comment{}),
		DefaultAttrs: []string{".id", "author", "created-at", "body::60"},
		FetchFn: func(ctx context.Context, cmd *cli.Command, l *loader.Loader) ([]*content.Comment, error) {
			id, err := requireArg(cmd, "article id")
			if err != nil {
				return nil, err
			}
			return l.Comments(ctx, id)
		},
	}
	return runner.Run(ctx, cmd)
}

func CqCommandBuilder(meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "cq",
		Usage:     "comment query",
		UsageText: `sitectl cq <id> [options]`,
		ArgsUsage: "<id>",
		Action:    CqCommandAction,
		Meta:      meta,
	}).Build()
}
