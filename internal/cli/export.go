package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Format is an export output format.
type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

// Formats lists every supported export format.
var Formats = []Format{FormatTable, FormatCSV, FormatMarkdown, FormatHTML, FormatJSON}

// ParseFormat resolves a format name. "md" is accepted for markdown.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "md" {
		return FormatMarkdown, nil
	}
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return "", fmt.Errorf("unknown format %q (want one of %s)", s, strings.Join(names, ", "))
}

// Export writes t to w in the given format. JSON output is an array of
// objects keyed by header.
func Export(w io.Writer, f Format, t Table) error {
	if f == FormatJSON {
		return exportJSON(w, t)
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)

	header := make(table.Row, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			tw.AppendSeparator()
			continue
		}
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		tw.AppendRow(r)
	}

	switch f {
	case FormatCSV:
		tw.RenderCSV()
	case FormatMarkdown:
		tw.RenderMarkdown()
	case FormatHTML:
		tw.RenderHTML()
	case FormatTable:
		left := t.Left
		if left <= 0 {
			left = 1
		}
		configs := make([]table.ColumnConfig, 0, len(t.Headers))
		for i := left; i < len(t.Headers); i++ {
			configs = append(configs, table.ColumnConfig{Number: i + 1, Align: text.AlignRight})
		}
		tw.SetColumnConfigs(configs)
		tw.SetStyle(table.StyleRounded)
		tw.SetTitle(t.Title)
		tw.Render()
	default:
		return fmt.Errorf("unknown format %q", f)
	}
	return nil
}

func exportJSON(w io.Writer, t Table) error {
	out := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			continue
		}
		obj := make(map[string]string, len(t.Headers))
		for i, h := range t.Headers {
			if i < len(row) {
				obj[h] = row[i]
			}
		}
		out = append(out, obj)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
