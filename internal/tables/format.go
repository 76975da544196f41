package tables

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Kind identifies a table type.
type Kind string

const (
	KindMultiples Kind = "multiples"
	KindRisk      Kind = "risk"
	KindBarriers  Kind = "barriers"
)

// Kinds lists the supported kinds in display order.
func Kinds() []Kind {
	return []Kind{KindMultiples, KindRisk, KindBarriers}
}

// ErrUnknownKind is returned for table kinds other than multiples, risk and
// barriers.
var ErrUnknownKind = errors.New("unknown table kind")

// ParseKind resolves a kind name.
func ParseKind(value string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case KindMultiples:
		return KindMultiples, nil
	case KindRisk:
		return KindRisk, nil
	case KindBarriers, "barriers-to-entry", "barriers_to_entry":
		return KindBarriers, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownKind, value)
	}
}

// Column maps a record field to a header label.
type Column struct {
	Field string
	Label string
}

// Layout is the preferred column order of a kind. Fields outside the
// layout follow in sorted order.
type Layout []Column

var layouts = map[Kind]Layout{
	KindMultiples: {
		{Field: "multiple", Label: "Multiple"},
		{Field: "value", Label: "Value"},
		{Field: "industry_median", Label: "Industry Median"},
		{Field: "description", Label: "Description"},
	},
	KindRisk: {
		{Field: "component", Label: "Risk Component"},
		{Field: "level", Label: "Level"},
		{Field: "score", Label: "Score"},
		{Field: "trend", Label: "Trend"},
		{Field: "description", Label: "Description"},
	},
	KindBarriers: {
		{Field: "barrier", Label: "Barrier"},
		{Field: "level", Label: "Level"},
		{Field: "present", Label: "Present"},
		{Field: "notes", Label: "Notes"},
	},
}

// LayoutFor returns the column layout of kind.
func LayoutFor(kind Kind) (Layout, error) {
	layout, ok := layouts[kind]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
	return layout, nil
}

// FormatMultiples renders a multiples table.
func FormatMultiples(records []Record) string {
	return render(layouts[KindMultiples], records)
}

// FormatRisk renders a risk table.
func FormatRisk(records []Record) string {
	return render(layouts[KindRisk], records)
}

// FormatBarriers renders a barriers-to-entry checklist.
func FormatBarriers(records []Record) string {
	return render(layouts[KindBarriers], records)
}

// Format renders records with the layout of kind.
func Format(kind Kind, records []Record) (string, error) {
	layout, err := LayoutFor(kind)
	if err != nil {
		return "", err
	}
	return render(layout, records), nil
}

func render(layout Layout, records []Record) string {
	columns := columnsFor(layout, records)
	if len(columns) == 0 {
		return ""
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleDefault)
	t.Style().Format.Header = text.FormatDefault

	header := make(table.Row, 0, len(columns))
	for _, col := range columns {
		header = append(header, col.Label)
	}
	t.AppendHeader(header)

	for _, record := range records {
		row := make(table.Row, 0, len(columns))
		for _, col := range columns {
			row = append(row, cellText(record[col.Field]))
		}
		t.AppendRow(row)
	}
	return t.Render()
}

func columnsFor(layout Layout, records []Record) []Column {
	present := make(map[string]struct{})
	for _, record := range records {
		for field := range record {
			present[field] = struct{}{}
		}
	}

	columns := make([]Column, 0, len(present))
	known := make(map[string]struct{}, len(layout))
	for _, col := range layout {
		known[col.Field] = struct{}{}
		if _, ok := present[col.Field]; ok {
			columns = append(columns, col)
		}
	}

	var extra []string
	for field := range present {
		if _, ok := known[field]; !ok {
			extra = append(extra, field)
		}
	}
	sort.Strings(extra)
	for _, field := range extra {
		columns = append(columns, Column{Field: field, Label: labelFor(field)})
	}
	return columns
}

func labelFor(field string) string {
	words := strings.FieldsFunc(field, func(r rune) bool { return r == '_' || r == '-' })
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	if len(words) == 0 {
		return field
	}
	return strings.Join(words, " ")
}

// cellText renders a decoded JSON value canonically.
func cellText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.ReplaceAll(v, "\n", " ")
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}
