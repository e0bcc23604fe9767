// Copyright (c) 2025 Steve Taranto staranto@gmail.com.
// SPDX-License-Identifier: Apache-2.0

// Package backend defines the content source the loaders read from and
// selects one of its implementations (hosted REST API, S3 export, or a local
// SQLite database) from command flags.
package backend
