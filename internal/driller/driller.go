// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package driller

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// indexRe matches the trailing [n] groups of a path segment.
var indexRe = regexp.MustCompile(`\[(\d+)\]`)

// gjsonEscaper escapes the characters gjson treats as path syntax.
var gjsonEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
	`#`, `\#`,
	`@`, `\@`,
	`!`, `\!`,
	`=`, `\=`,
	`<`, `\<`,
	`>`, `\>`,
	`%`, `\%`,
)

// Driller returns the value at path in doc. Path segments are separated by
// dots and may carry [n] indexes. A single element array is drilled through
// as if it were its element; a key applied to a longer array is applied to
// every element. A missing path yields the zero Result.
func Driller(doc string, path string) gjson.Result {
	current := gjson.Parse(doc)
	if path == "" {
		return unwrap(current)
	}

	for _, segment := range strings.Split(path, ".") {
		name, indexes := splitSegment(segment)

		if name != "" {
			current = unwrap(current)
			if !current.Exists() {
				return gjson.Result{}
			}
			if current.IsArray() {
				current = pluck(current, name)
			} else {
				current = current.Get(gjsonEscaper.Replace(name))
			}
		}

		for _, i := range indexes {
			if !current.IsArray() {
				return gjson.Result{}
			}
			elems := current.Array()
			if i >= len(elems) {
				return gjson.Result{}
			}
			current = elems[i]
		}

		if !current.Exists() {
			return gjson.Result{}
		}
	}

	return unwrap(current)
}

func splitSegment(segment string) (string, []int) {
	loc := indexRe.FindStringIndex(segment)
	if loc == nil {
		return segment, nil
	}

	name := segment[:loc[0]]
	var indexes []int
	for _, m := range indexRe.FindAllStringSubmatch(segment[loc[0]:], -1) {
		i, err := strconv.Atoi(m[1])
		if err == nil {
			indexes = append(indexes, i)
		}
	}
	return name, indexes
}

// unwrap replaces a one element array with its element.
func unwrap(r gjson.Result) gjson.Result {
	if r.IsArray() {
		if elems := r.Array(); len(elems) == 1 {
			return elems[0]
		}
	}
	return r
}

// pluck applies key to every element of arr and returns the values found as
// a new array.
func pluck(arr gjson.Result, key string) gjson.Result {
	var values []json.RawMessage
	for _, elem := range arr.Array() {
		v := elem.Get(gjsonEscaper.Replace(key))
		if v.Exists() {
			values = append(values, json.RawMessage(v.Raw))
		}
	}
	if len(values) == 0 {
		return gjson.Result{}
	}

	raw, err := json.Marshal(values)
	if err != nil {
		return gjson.Result{}
	}
	return gjson.ParseBytes(raw)
}
