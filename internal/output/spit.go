// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/hopeline/sitectl/internal/attrs"
	"github.com/hopeline/sitectl/internal/config"
)

// Formats accepted by --output.
var Formats = []string{"text", "json", "yaml", "raw"}

// Options are the rendering switches shared by every query command.
type Options struct {
	Format string
	Filter string
	Sort   string
	Titles bool
	Color  bool
	Local  bool
}

// OptionsFromCommand reads Options from the global output flags.
func OptionsFromCommand(cmd *cli.Command) Options {
	return Options{
		Format: cmd.String("output"),
		Filter: cmd.String("filter"),
		Sort:   cmd.String("sort"),
		Titles: cmd.Bool("titles"),
		Color:  cmd.Bool("color"),
		Local:  cmd.Bool("local"),
	}
}

// SliceDiceSpit filters, transforms, sorts and renders the JSONAPI document in
// raw. parent selects the array of resource objects, usually "data".
func SliceDiceSpit(raw bytes.Buffer, al attrs.AttrList, opts Options, parent string, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}

	if opts.Format == "raw" {
		_, err := w.Write(raw.Bytes())
		return err
	}

	doc := gjson.ParseBytes(raw.Bytes())
	if parent != "" {
		doc = doc.Get(parent)
	}
	// A single resource document is rendered as a one row dataset.
	if doc.IsObject() {
		doc = gjson.Parse("[" + doc.Raw + "]")
	}

	rows := FilterDataset(doc, al, opts.Filter)
	log.Debugf("%d rows after filter %q", len(rows), opts.Filter)

	for _, row := range rows {
		for _, a := range al {
			if a.Key == "*" {
				continue
			}
			if opts.Local {
				a.TransformSpec += "t"
			}
			if a.TransformSpec != "" {
				row[a.OutputKey] = a.Transform(row[a.OutputKey])
			}
		}
	}

	SortDataset(rows, opts.Sort)

	// Hidden attrs took part in filtering and sorting but are not emitted.
	visible := al.Visible()

	switch opts.Format {
	case "json":
		b, err := json.Marshal(project(rows, visible))
		if err != nil {
			return fmt.Errorf("failed to marshal json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml":
		b, err := yaml.Marshal(project(rows, visible))
		if err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		_, err = w.Write(b)
		return err
	default:
		TableWriter(rows, visible, opts, w)
		return nil
	}
}

func project(rows []map[string]any, visible attrs.AttrList) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		p := make(map[string]any, len(visible))
		for _, a := range visible {
			p[a.OutputKey] = row[a.OutputKey]
		}
		out = append(out, p)
	}
	return out
}

// TableWriter renders rows as a borderless text table. Color is only used
// when w is a terminal.
func TableWriter(rows []map[string]any, visible attrs.AttrList, opts Options, w io.Writer) {
	if len(rows) == 0 {
		return
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left)
		cellStyle    = lipgloss.NewStyle().Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if opts.Color && isTerminal(w) {
		header, even, odd := getColors("colors")
		headerStyle = headerStyle.Foreground(lipgloss.Color(header))
		evenRowStyle = evenRowStyle.Foreground(lipgloss.Color(even))
		oddRowStyle = oddRowStyle.Foreground(lipgloss.Color(odd))
	}

	pad, _ := config.GetInt("padding", 2)

	data := make([][]string, 0, len(rows))
	for _, row := range rows {
		cells := make([]string, 0, len(visible))
		for _, a := range visible {
			cells = append(cells, InterfaceToString(row[a.OutputKey], "-"))
		}
		data = append(data, cells)
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}
			if col > 0 {
				style = style.PaddingLeft(pad)
			}
			return style
		}).
		Rows(data...)

	if opts.Titles {
		headers := make([]string, 0, len(visible))
		for _, a := range visible {
			headers = append(headers, a.OutputKey)
		}
		t = t.Headers(headers...).BorderHeader(false)
	}

	fmt.Fprintln(w, t.String())
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func getColors(key string) (header, even, odd string) {
	header, _ = config.GetString(key+".title", "#f6be00")
	even, _ = config.GetString(key+".even", "#ffffff")
	odd, _ = config.GetString(key+".odd", "#00c8f0")
	return
}

// InterfaceToString renders a row value for text output. Zero values become
// the optional empty value.
func InterfaceToString(value any, emptyValue ...string) string {
	empty := ""
	if len(emptyValue) > 0 {
		empty = emptyValue[0]
	}

	if value == nil || reflect.ValueOf(value).IsZero() {
		return empty
	}

	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
