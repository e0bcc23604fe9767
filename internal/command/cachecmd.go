// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/hopeline/sitectl/internal/attrs"
	"github.com/hopeline/sitectl/internal/backend/rest"
	"github.com/hopeline/sitectl/internal/cache"
	"github.com/hopeline/sitectl/internal/meta"
	"github.com/hopeline/sitectl/internal/output"
)

const adminTimeout = 10 * time.Second

// adminClient talks to the cache admin routes of a running server. The admin
// token rides in the same bearer header the REST backend uses for its key.
func adminClient(cmd *cli.Command) *rest.BackendRest {
	return &rest.BackendRest{
		BaseURL: strings.TrimRight(cmd.String("server"), "/"),
		APIKey:  cmd.String("admin-token"),
		Client:  &http.Client{Timeout: adminTimeout},
	}
}

func adminDo(ctx context.Context, cmd *cli.Command, method, path string) ([]byte, error) {
	be := adminClient(cmd)
	doc, err := rest.Hitter(ctx, be, method, path, nil, nil)
	if err != nil {
		return nil, rest.Friendly(err, rest.ErrorContext{
			Host:       be.BaseURL,
			Operation:  strings.ToLower(method),
			Resource:   "cache",
			Credential: "--admin-token / SITECTL_ADMIN_TOKEN",
		})
	}
	return doc.Bytes(), nil
}

// CacheInfoAction prints the live entry counts and memory estimate of the
// server's cache.
func CacheInfoAction(ctx context.Context, cmd *cli.Command) error {
	body, err := adminDo(ctx, cmd, http.MethodGet, "/api/cache")
	if err != nil {
		return err
	}

	w := writer(cmd)
	if cmd.String("output") == "json" || cmd.String("output") == "raw" {
		_, err := fmt.Fprintln(w, strings.TrimSpace(string(body)))
		return err
	}

	var info cache.Info
	if err := json.Unmarshal(body, &info); err != nil {
		return fmt.Errorf("failed to decode cache info: %w", err)
	}

	var al attrs.AttrList
	_ = al.Set("category,entries")
	rows := []map[string]any{
		{"category": cache.CategoryArticles, "entries": info.ArticlesCount},
		{"category": cache.CategoryStats, "entries": info.StatsCount},
		{"category": cache.CategoryComments, "entries": info.CommentsCount},
		{"category": "memory", "entries": humanize.Bytes(uint64(max(info.MemoryUsageEstimate, 0)))},
	}
	output.TableWriter(rows, al, output.Options{Titles: cmd.Bool("titles"), Color: cmd.Bool("color")}, w)
	return nil
}

// CacheClearAction drops every entry in the server's cache.
func CacheClearAction(ctx context.Context, cmd *cli.Command) error {
	if _, err := adminDo(ctx, cmd, http.MethodDelete, "/api/cache"); err != nil {
		return err
	}
	log.Info("cache cleared")
	fmt.Fprintln(writer(cmd), "cache cleared")
	return nil
}

// invalidatePath maps `invalidate articles|stats <id>|comments <id>` onto an
// admin route.
func invalidatePath(args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("missing category: want one of %s, %s <id>, %s <id>",
			cache.CategoryArticles, cache.CategoryStats, cache.CategoryComments)
	}

	switch args[0] {
	case cache.CategoryArticles:
		return "/api/cache/articles", nil
	case cache.CategoryStats, cache.CategoryComments:
		if len(args) < 2 || strings.TrimSpace(args[1]) == "" {
			return "", fmt.Errorf("%s needs an article id", args[0])
		}
		return fmt.Sprintf("/api/cache/articles/%s/%s", url.PathEscape(args[1]), args[0]), nil
	}
	return "", fmt.Errorf("unknown category %q", args[0])
}

// CacheInvalidateAction drops one entry from the server's cache.
func CacheInvalidateAction(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	path, err := invalidatePath(args)
	if err != nil {
		return err
	}
	if _, err := adminDo(ctx, cmd, http.MethodDelete, path); err != nil {
		return err
	}
	fmt.Fprintf(writer(cmd), "invalidated %s\n", strings.Join(args, " "))
	return nil
}

func CacheCommandBuilder(meta meta.Meta) *cli.Command {
	sub := func(name, usage, argsUsage string, action cli.ActionFunc, extra ...cli.Flag) *cli.Command {
		flags := append(NewAdminFlags("cache"), extra...)
		return &cli.Command{
			Name:      name,
			Usage:     usage,
			ArgsUsage: argsUsage,
			Metadata:  map[string]any{"meta": meta},
			Flags:     flags,
			Action:    action,
		}
	}

	return &cli.Command{
		Name:      "cache",
		Usage:     "inspect or reset a running server's cache",
		UsageText: `sitectl cache info|clear|invalidate [options]`,
		Metadata:  map[string]any{"meta": meta},
		Commands: []*cli.Command{
			sub("info", "show cached entry counts and memory estimate", "", CacheInfoAction,
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "output format (text, json)",
					Value:   "text",
					Validator: func(value string) error {
						return FlagValidators(value, OutputValidator)
					},
				},
				&cli.BoolWithInverseFlag{Name: "titles", Aliases: []string{"t"}, Usage: "show titles", Value: true},
				&cli.BoolWithInverseFlag{Name: "color", Aliases: []string{"c"}, Usage: "enable colored text output"},
			),
			sub("clear", "drop every cached entry", "", CacheClearAction),
			sub("invalidate", "drop one cached entry", "articles | stats <id> | comments <id>", CacheInvalidateAction),
		},
	}
}
