// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/hopeline/sitectl/internal/cache"
	"github.com/hopeline/sitectl/internal/loader"
	"github.com/hopeline/sitectl/internal/meta"
	"github.com/hopeline/sitectl/internal/metrics"
	"github.com/hopeline/sitectl/internal/server"
)

// ServeCommandAction runs the content API until SIGINT or SIGTERM.
func ServeCommandAction(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	store := cache.NewStore(
		cache.WithTTLs(cache.TTLs{
			Articles: cmd.Duration("articles-ttl"),
			Stats:    cmd.Duration("stats-ttl"),
			Comments: cmd.Duration("comments-ttl"),
		}),
		cache.WithMetrics(m),
	)
	m.RegisterStore(store.Info)

	var opts []loader.Option
	if cmd.Bool("coalesce") {
		opts = append(opts, loader.WithCoalescing())
	}

	be, closeFn, err := InitBackend(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeFn()
	l := loader.New(be, store, opts...)

	log.WithFields(log.Fields{
		"backend":      l.Backend().String(),
		"articles-ttl": store.TTLs().Articles,
		"stats-ttl":    store.TTLs().Stats,
		"comments-ttl": store.TTLs().Comments,
		"coalesce":     cmd.Bool("coalesce"),
	}).Info("starting content api")

	srv := server.New(l,
		server.WithMetrics(m),
		server.WithAdminToken(cmd.String("admin-token")),
	)

	return server.ListenAndServe(ctx, cmd.String("addr"), srv.Handler(), nil)
}

func ServeCommandBuilder(meta meta.Meta) *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:    "addr",
			Usage:   "listen address",
			Sources: configSources("serve", "addr", "SITECTL_ADDR"),
			Value:   ":8080",
		},
		&cli.BoolFlag{
			Name:    "coalesce",
			Usage:   "share one backend fetch between concurrent misses on the same key",
			Sources: configSources("serve", "coalesce", "SITECTL_COALESCE"),
		},
		newAdminTokenFlag("serve"),
	}
	flags = append(flags, NewTTLFlags("serve")...)
	flags = append(flags, NewBackendFlags("serve")...)

	return &cli.Command{
		Name:      "serve",
		Usage:     "serve the cached content API",
		UsageText: `sitectl serve [--addr :8080] [options]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags:  flags,
		Action: ServeCommandAction,
	}
}
