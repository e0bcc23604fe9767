// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/hopeline/sitectl/internal/backend"
	"github.com/hopeline/sitectl/internal/cache"
	"github.com/hopeline/sitectl/internal/config"
)

func init() {
	cfg, _ = config.Load()
}

var (
	cfg config.Type

	schemaFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "schema",
		Usage:       "dump the attrs available to --attrs",
		HideDefault: true,
	}

	tldrFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
)

// configSources is the <ns>.<name> then <name> config file lookup chain.
func configSources(ns, name string, envs ...string) cli.ValueSourceChain {
	var chain []cli.ValueSource
	for _, e := range envs {
		chain = append(chain, cli.EnvVar(e))
	}
	if ns != "" {
		chain = append(chain, yaml.YAML(ns+"."+name, altsrc.StringSourcer(cfg.Source)))
	}
	chain = append(chain, yaml.YAML(name, altsrc.StringSourcer(cfg.Source)))
	return cli.NewValueSourceChain(chain...)
}

// NewGlobalFlags returns the output flags shared by the query commands.
func NewGlobalFlags(ns string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: configSources(ns, "color"),
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.BoolFlag{
			Name:    "local",
			Aliases: []string{"l"},
			Usage:   "show timestamps in the local timezone",
			Sources: configSources(ns, "local"),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format (text, json, yaml, raw)",
			Sources: configSources(ns, "output"),
			Value:   "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
			Sources: configSources(ns, "sort"),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: configSources(ns, "titles"),
		},
	}
}

// NewBackendFlags returns the flags that select and configure the content
// backend.
func NewBackendFlags(ns string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "backend",
			Aliases: []string{"b"},
			Usage:   "content backend (rest, s3, sqlite)",
			Sources: configSources(ns, "backend", "SITECTL_BACKEND"),
			Value:   backend.Types[0],
			Validator: func(value string) error {
				return FlagValidators(value, BackendValidator)
			},
		},
		&cli.StringFlag{
			Name:    "url",
			Usage:   "REST API base URL",
			Sources: configSources(ns, "url", "SITECTL_URL", "SUPABASE_URL"),
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "REST API anon key",
			Sources: configSources(ns, "api-key", "SITECTL_API_KEY", "SUPABASE_ANON_KEY"),
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "REST API request timeout",
			Sources: configSources(ns, "timeout", "SITECTL_TIMEOUT"),
		},
		&cli.StringFlag{
			Name:    "bucket",
			Usage:   "S3 bucket holding published content",
			Sources: configSources(ns, "bucket", "SITECTL_BUCKET"),
		},
		&cli.StringFlag{
			Name:    "prefix",
			Usage:   "key prefix inside the bucket",
			Sources: configSources(ns, "prefix", "SITECTL_PREFIX"),
		},
		&cli.StringFlag{
			Name:    "region",
			Usage:   "AWS region of the bucket",
			Sources: configSources(ns, "region", "AWS_REGION"),
		},
		&cli.StringFlag{
			Name:    "profile",
			Usage:   "AWS shared config profile",
			Sources: configSources(ns, "profile", "AWS_PROFILE"),
		},
		&cli.StringFlag{
			Name:    "endpoint",
			Usage:   "S3 compatible endpoint URL",
			Sources: configSources(ns, "endpoint", "SITECTL_S3_ENDPOINT"),
		},
		&cli.StringFlag{
			Name:    "dsn",
			Usage:   "SQLite database file",
			Sources: configSources(ns, "dsn", "SITECTL_DSN"),
		},
	}
}

// NewTTLFlags returns the cache freshness flags for serve.
func NewTTLFlags(ns string) []cli.Flag {
	ttl := func(name string, def time.Duration, usage string) cli.Flag {
		return &cli.DurationFlag{
			Name:    name,
			Usage:   usage,
			Sources: configSources(ns, name),
			Value:   def,
			Validator: func(d time.Duration) error {
				return FlagValidators(d, PositiveDurationValidator)
			},
		}
	}
	return []cli.Flag{
		ttl("articles-ttl", cache.DefaultArticlesTTL, "how long the article list stays cached"),
		ttl("stats-ttl", cache.DefaultStatsTTL, "how long article stats stay cached"),
		ttl("comments-ttl", cache.DefaultCommentsTTL, "how long comment threads stay cached"),
	}
}

// NewAdminFlags returns the flags used to reach a running server's cache admin
// routes.
func NewAdminFlags(ns string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Usage:   "base URL of a running sitectl serve",
			Sources: configSources(ns, "server", "SITECTL_SERVER"),
			Value:   "http://localhost:8080",
		},
		newAdminTokenFlag(ns),
	}
}

func newAdminTokenFlag(ns string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "admin-token",
		Usage:   "bearer token for the cache admin routes",
		Sources: configSources(ns, "admin-token", "SITECTL_ADMIN_TOKEN"),
	}
}

// pathHas reports whether target is on $PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
