// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/apex/log"
)

const maxSchemaDepth = 1

// Tag is a jsonapi struct tag discovered by --schema.
type Tag struct {
	Kind     string
	Name     string
	Encoding string
}

// NewTag parses a jsonapi tag value. Only attr tags are kept; anything else
// yields the zero Tag. A non-empty holder prefixes the name.
func NewTag(holder, value string) Tag {
	parts := strings.Split(value, ",")
	if len(parts) < 2 || parts[0] != "attr" {
		return Tag{}
	}

	tag := Tag{Kind: parts[0], Name: parts[1]}
	if holder != "" {
		tag.Name = holder + "." + tag.Name
	}
	if len(parts) > 2 {
		tag.Encoding = parts[2]
	}
	return tag
}

func (t Tag) String() string {
	if t.Encoding == "" || t.Encoding == "omitempty" {
		return t.Name
	}
	return fmt.Sprintf("%s (%s)", t.Name, t.Encoding)
}

// DumpSchema writes the attr names available to --attrs for typ.
func DumpSchema(w io.Writer, typ reflect.Type) {
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	tags := SchemaTags("", typ, 0)
	if len(tags) == 0 {
		log.Debugf("no jsonapi attrs on %s", typ.Name())
		return
	}

	sort.Slice(tags, func(i, j int) bool {
		return tags[i].Name < tags[j].Name
	})

	fmt.Fprintf(w, "Schema for %s --\n", typ.Name())
	for _, tag := range tags {
		fmt.Fprintln(w, tag.String())
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Use .id for the resource id. All other names are given to --attrs as is.")
}

// SchemaTags walks typ collecting jsonapi attr tags, descending one level
// into struct valued attrs.
func SchemaTags(holder string, typ reflect.Type, depth int) []Tag {
	tags := make([]Tag, 0)

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)

		value, ok := field.Tag.Lookup("jsonapi")
		if !ok {
			continue
		}
		tag := NewTag(holder, value)
		if tag.Kind != "attr" {
			continue
		}
		tags = append(tags, tag)

		if depth >= maxSchemaDepth {
			continue
		}

		ft := field.Type
		if ft.Kind() == reflect.Ptr {
			ft = ft.Elem()
		}
		// time.Time and friends are leaves.
		if ft.Kind() == reflect.Struct && ft.PkgPath() == typ.PkgPath() {
			tags = append(tags, SchemaTags(tag.Name, ft, depth+1)...)
		}
	}

	return tags
}
