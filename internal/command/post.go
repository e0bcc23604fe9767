// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/hopeline/sitectl/internal/content"
	"github.com/hopeline/sitectl/internal/meta"
)

// PostCommandAction posts a comment on an article and prints the stored
// comment.
func PostCommandAction(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "article id")
	if err != nil {
		return err
	}

	al, err := BuildAttrs(cmd, ".id", "author", "created-at")
	if err != nil {
		return err
	}

	l, closeFn, err := InitLoader(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	c, err := l.PostComment(ctx, id, content.NewComment{
		Author: cmd.String("author"),
		Body:   cmd.String("body"),
	})
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"article": id, "comment": c.ID}).Debug("posted")

	return EmitJSONAPI(c, al, cmd)
}

func PostCommandBuilder(meta meta.Meta) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     "author",
			Usage:    "name shown with the comment",
			Sources:  configSources("post", "author", "SITECTL_AUTHOR"),
			Required: true,
		},
		&cli.StringFlag{
			Name:     "body",
			Usage:    "comment text",
			Required: true,
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
	}
	flags = append(flags, NewGlobalFlags("post")...)
	flags = append(flags, NewBackendFlags("post")...)

	return &cli.Command{
		Name:      "post",
		Usage:     "post a comment on an article",
		UsageText: `sitectl post <id> --author NAME --body TEXT [options]`,
		ArgsUsage: "<id>",
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags:  flags,
		Action: PostCommandAction,
	}
}
