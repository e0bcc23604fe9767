// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package content defines the news types served by the site (articles, their
// stats and comments) and the sentinel errors shared by backends.
package content
