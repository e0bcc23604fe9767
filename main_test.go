// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopeline/sitectl/internal/config"
)

const argSets = `
aq:
  defaults:
    - --attrs title,slug
    - -o json
  recent: --sort -published-at
`

func TestMangleArguments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitectl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(argSets), 0o600))

	saved := config.Config
	t.Cleanup(func() { config.Config = saved })
	_, err := config.Load(path)
	require.NoError(t, err)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "defaults inserted after subcommand",
			args: []string{"sitectl", "aq", "-o", "yaml"},
			want: []string{"sitectl", "aq", "--attrs", "title,slug", "-o", "json", "-o", "yaml"},
		},
		{
			name: "named set replaces defaults in place",
			args: []string{"sitectl", "aq", "--titles", "@recent", "a1"},
			want: []string{"sitectl", "aq", "--titles", "--sort", "-published-at", "a1"},
		},
		{
			name: "unknown set expands to nothing",
			args: []string{"sitectl", "aq", "@nope"},
			want: []string{"sitectl", "aq"},
		},
		{
			name: "no sets for command",
			args: []string{"sitectl", "cq", "a1"},
			want: []string{"sitectl", "cq", "a1"},
		},
		{
			name: "help wins",
			args: []string{"sitectl", "aq", "-o", "json", "-h"},
			want: []string{"sitectl", "aq", "--help"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mangleArguments(tt.args))
		})
	}
}
