// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package meta

import (
	"context"

	"github.com/hopeline/sitectl/internal/config"
)

// Meta is the per-invocation state handed to every command through its
// Metadata.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context
	// Namespace is the subcommand name used to scope config lookups.
	Namespace string
}
