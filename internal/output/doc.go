// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package output slices, dices and spits JSONAPI documents: rows are picked
// out with an attrs.AttrList, filtered, transformed, sorted and rendered as a
// text table, json, yaml or the raw document.
package output
