// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package aws loads AWS SDK configuration for the S3 content backend,
// including profile, region and S3-compatible endpoint overrides.
package aws
