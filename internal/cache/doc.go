// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache provides the process-local response cache that sits in front
// of the content backend. Entries carry their own TTL and are expired lazily
// when read; nothing runs in the background.
package cache
