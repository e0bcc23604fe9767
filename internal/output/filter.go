// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/hopeline/sitectl/internal/attrs"
	"github.com/hopeline/sitectl/internal/driller"
)

// EnvFilterDelim overrides the "," between filter expressions.
const EnvFilterDelim = "SITECTL_FILTER_DELIM"

// An operand is one of = ^ ~ < > @ or /, optionally negated with a leading !.
var filterRegex = regexp.MustCompile(`^(.*?)(!?[=^~<>@/])(.*)$`)

// Filter is a single parsed --filter expression, e.g. category!=sport.
type Filter struct {
	Key     string
	Negate  bool
	Operand string
	Target  string
}

// BuildFilters parses a filter spec. Malformed expressions are logged and
// skipped.
func BuildFilters(spec string) []Filter {
	if spec == "" {
		return nil
	}

	delim := ","
	if d, ok := os.LookupEnv(EnvFilterDelim); ok && d != "" {
		delim = d
	}

	//nolint:prealloc
	var filters []Filter
	for _, expr := range strings.Split(spec, delim) {
		parts := filterRegex.FindStringSubmatch(expr)
		if parts == nil || strings.TrimSpace(parts[1]) == "" {
			log.Error("invalid filter: " + expr)
			continue
		}

		operand := parts[2]
		negate := strings.HasPrefix(operand, "!")
		filters = append(filters, Filter{
			Key:     strings.TrimSpace(parts[1]),
			Negate:  negate,
			Operand: strings.TrimPrefix(operand, "!"),
			Target:  parts[3],
		})
	}

	return filters
}

// FilterDataset keeps the candidates that pass every filter and flattens each
// into a row keyed by OutputKey. Transforms are applied later.
func FilterDataset(candidates gjson.Result, al attrs.AttrList, spec string) []map[string]any {
	filters := BuildFilters(spec)

	rows := make([]map[string]any, 0)
	for _, candidate := range candidates.Array() {
		if !applyFilters(candidate, al, filters) {
			continue
		}

		row := make(map[string]any, len(al))
		for _, a := range al {
			if a.Key == "*" {
				continue
			}
			row[a.OutputKey] = driller.Driller(candidate.Raw, a.Key).Value()
		}
		rows = append(rows, row)
	}

	return rows
}

func applyFilters(candidate gjson.Result, al attrs.AttrList, filters []Filter) bool {
	for _, f := range filters {
		a, ok := al.Find(f.Key)
		if !ok {
			msg := fmt.Sprintf("filter key not found: %s", f.Key)
			log.Error(msg)
			fmt.Fprintf(os.Stderr, "warning: %s\n", msg)
			continue
		}

		value := driller.Driller(candidate.Raw, a.Key).Value()
		if value == nil {
			return false
		}

		var pass bool
		switch v := value.(type) {
		case string:
			pass = checkStringOperand(v, f)
		case bool:
			pass = checkStringOperand(strconv.FormatBool(v), f)
		case float64:
			pass = checkNumericOperand(v, f)
		default:
			pass = checkContainsOperand(v, f)
		}
		if !pass {
			return false
		}
	}

	return true
}

func checkStringOperand(value string, f Filter) bool {
	var match bool
	switch f.Operand {
	case "=":
		match = value == f.Target
	case "~":
		match = strings.EqualFold(value, f.Target)
	case "^":
		match = strings.HasPrefix(value, f.Target)
	case ">":
		match = value > f.Target
	case "<":
		match = value < f.Target
	case "@":
		match = strings.Contains(value, f.Target)
	case "/":
		re, err := regexp.Compile(f.Target)
		if err != nil {
			log.WithError(err).Error("invalid regex: " + f.Target)
			return false
		}
		match = re.MatchString(value)
	default:
		log.Error("unsupported filter operand: " + f.Operand)
		return false
	}
	return match != f.Negate
}

// checkNumericOperand compares numerically when the target parses as a
// number and falls back to string semantics otherwise.
func checkNumericOperand(value float64, f Filter) bool {
	target, err := strconv.ParseFloat(strings.TrimSpace(f.Target), 64)
	if err != nil {
		return checkStringOperand(InterfaceToString(value), f)
	}

	var match bool
	switch f.Operand {
	case "=":
		match = value == target
	case ">":
		match = value > target
	case "<":
		match = value < target
	default:
		return checkStringOperand(strconv.FormatFloat(value, 'f', -1, 64), f)
	}
	return match != f.Negate
}

// checkContainsOperand handles @ against arrays and objects.
func checkContainsOperand(value any, f Filter) bool {
	if f.Operand != "@" {
		log.Errorf("operand %s is not supported for %T", f.Operand, value)
		return false
	}

	switch v := value.(type) {
	case []any:
		for _, item := range v {
			if InterfaceToString(item) == f.Target {
				return !f.Negate
			}
		}
		return f.Negate
	case map[string]any:
		_, found := v[f.Target]
		return found != f.Negate
	default:
		log.Errorf("unsupported type for contains filtering: %T", value)
		return false
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
