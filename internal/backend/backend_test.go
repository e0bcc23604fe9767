// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

// runWith parses args against a command carrying the backend flags and hands
// the parsed command to fn.
func runWith(t *testing.T, args []string, fn func(*cli.Command)) {
	t.Helper()

	cmd := &cli.Command{
		Name: "test",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "backend"},
			&cli.StringFlag{Name: "url"},
			&cli.StringFlag{Name: "api-key"},
			&cli.StringFlag{Name: "bucket"},
			&cli.StringFlag{Name: "prefix"},
			&cli.StringFlag{Name: "region"},
			&cli.StringFlag{Name: "profile"},
			&cli.StringFlag{Name: "endpoint"},
			&cli.StringFlag{Name: "dsn"},
		},
		Action: func(_ context.Context, c *cli.Command) error {
			fn(c)
			return nil
		},
	}
	require.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, args...)))
}

func TestNewBackend(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "site.db")

	tests := []struct {
		name     string
		args     []string
		wantType string
		wantErr  error
	}{
		{name: "default is rest", args: []string{"--url", "https://x.supabase.co", "--api-key", "k"}, wantType: "rest"},
		{name: "sqlite", args: []string{"--backend", "sqlite", "--dsn", dsn}, wantType: "sqlite"},
		{name: "case insensitive", args: []string{"--backend", "SQLite", "--dsn", dsn}, wantType: "sqlite"},
		{name: "unknown", args: []string{"--backend", "ftp"}, wantErr: ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runWith(t, tt.args, func(cmd *cli.Command) {
				be, err := NewBackend(context.Background(), cmd)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, tt.wantType, be.Type())
			})
		})
	}
}
