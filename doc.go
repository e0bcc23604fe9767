// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// sitectl is the command line tool for the news site's content layer. It
// queries articles, stats and comments from the configured backend, posts
// comments, and serves the cached content API the site's pages read from.
package main
