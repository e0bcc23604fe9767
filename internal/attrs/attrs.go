// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package attrs

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"

	"github.com/hopeline/sitectl/internal/config"
)

// LocalTimeLayout is the layout used when a timestamp is converted with the t
// transform.
const LocalTimeLayout = "2006-01-02 15:04 MST"

var lengthRegex = regexp.MustCompile(`-?\d+`)

// Attr is a single column selected with --attrs.
type Attr struct {
	// Key is the driller path into a JSONAPI resource object.
	Key string
	// OutputKey names the column in text output and the key in json/yaml.
	OutputKey string
	// Include is false for attrs that only exist so they can be filtered or
	// sorted on.
	Include bool
	// TransformSpec holds any of l, u, t and a signed length.
	TransformSpec string
}

// Transform applies the attr's transform spec to a value. Only strings are
// transformed, everything else passes through unchanged.
func (a *Attr) Transform(value any) any {
	s, ok := value.(string)
	if !ok || a.TransformSpec == "" {
		return value
	}

	spec := a.TransformSpec

	if strings.ContainsAny(spec, "tT") {
		s = toLocalTime(s)
	}

	// The rightmost case letter wins so a per-attr spec beats the global one
	// that was prepended to it.
	lower := strings.LastIndexAny(spec, "lL")
	upper := strings.LastIndexAny(spec, "uU")
	switch {
	case lower > upper:
		s = strings.ToLower(s)
	case upper > lower:
		s = strings.ToUpper(s)
	}

	if m := lengthRegex.FindAllString(spec, -1); len(m) > 0 {
		n, _ := strconv.Atoi(m[len(m)-1])
		s = truncate(s, n)
	}

	return s
}

// toLocalTime converts an RFC3339 timestamp into the zone named by the
// timezone config key or $TZ. Without either the value is returned as is.
func toLocalTime(s string) string {
	tz, _ := config.GetString("timezone", "")
	if tz == "" {
		tz = os.Getenv("TZ")
	}
	if tz == "" {
		return s
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.WithError(err).Debugf("unknown timezone %q", tz)
		return s
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		log.Debugf("not a timestamp: %s", s)
		return s
	}

	return t.In(loc).Format(LocalTimeLayout)
}

// truncate keeps the first n runes of s. A negative n keeps both ends and
// joins them with "..".
func truncate(s string, n int) string {
	r := []rune(s)
	abs := n
	if abs < 0 {
		abs = -abs
	}
	if abs == 0 || len(r) <= abs {
		return s
	}
	if n > 0 {
		return string(r[:n])
	}

	keep := (abs - 2) / 2
	if keep < 1 {
		return string(r[:abs])
	}
	return string(r[:keep]) + ".." + string(r[len(r)-keep:])
}

// AttrList is the ordered set of attrs a command renders. It satisfies the
// shape of a flag value so it can be built straight from --attrs.
type AttrList []Attr

func (al *AttrList) String() string {
	specs := make([]string, 0, len(*al))
	for _, a := range *al {
		specs = append(specs, fmt.Sprintf("%s:%s:%s", a.Key, a.OutputKey, a.TransformSpec))
	}
	return strings.Join(specs, ",")
}

func (al *AttrList) Type() string {
	return "list"
}

// Set parses a comma separated list of key:outputKey:transform specs. A spec
// naming an attr that is already present updates it in place.
//
//	title               attributes.title, column "title"
//	.id                 root key id
//	!published-at       selected but hidden
//	slug:url:u          attributes.slug, column "url", upper case
//	*::-20              global transform applied to every attr
func (al *AttrList) Set(value string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	for _, spec := range strings.Split(value, ",") {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}

		attr, err := parseSpec(spec)
		if err != nil {
			return err
		}

		if i := al.index(attr); i >= 0 {
			(*al)[i].Include = attr.Include
			(*al)[i].OutputKey = attr.OutputKey
			(*al)[i].TransformSpec = attr.TransformSpec
			continue
		}
		*al = append(*al, attr)
	}

	return nil
}

func parseSpec(spec string) (Attr, error) {
	fields := strings.Split(spec, ":")
	if len(fields) > 3 {
		return Attr{}, fmt.Errorf("invalid attr spec %q: too many fields", spec)
	}

	attr := Attr{Include: true}

	key := strings.TrimSpace(fields[0])
	if strings.HasPrefix(key, "!") {
		attr.Include = false
		key = key[1:]
	}
	if key == "" {
		return Attr{}, fmt.Errorf("invalid attr spec %q: empty key", spec)
	}

	switch {
	case key == "*":
		attr.Include = false
		attr.Key = key
	case strings.HasPrefix(key, "."):
		attr.Key = key[1:]
	default:
		attr.Key = "attributes." + key
	}

	segments := strings.Split(strings.TrimPrefix(key, "."), ".")
	attr.OutputKey = segments[len(segments)-1]
	if len(fields) > 1 && strings.TrimSpace(fields[1]) != "" {
		attr.OutputKey = strings.TrimSpace(fields[1])
	}

	if len(fields) > 2 {
		attr.TransformSpec = strings.TrimSpace(fields[2])
	}

	return attr, nil
}

func (al AttrList) index(attr Attr) int {
	for i, a := range al {
		if a.Key == attr.Key {
			return i
		}
	}
	return -1
}

// SetGlobalTransformSpec prepends the transform of the * attr, if any, to
// every attr in the list.
func (al *AttrList) SetGlobalTransformSpec() {
	global := ""
	for _, a := range *al {
		if a.Key == "*" {
			global = a.TransformSpec
			break
		}
	}
	if global == "" {
		return
	}

	for i := range *al {
		if (*al)[i].Key == "*" {
			continue
		}
		(*al)[i].TransformSpec = global + "," + (*al)[i].TransformSpec
	}
}

// Find returns the attr rendered under the given output key.
func (al AttrList) Find(outputKey string) (Attr, bool) {
	for _, a := range al {
		if a.OutputKey == outputKey && a.Key != "*" {
			return a, true
		}
	}
	return Attr{}, false
}

// Visible returns the attrs that are rendered, in order.
func (al AttrList) Visible() AttrList {
	var out AttrList
	for _, a := range al {
		if a.Include {
			out = append(out, a)
		}
	}
	return out
}
