// Package render draws the paginated table and its pagination block as text.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"

	"github.com/dbsmedya/pagetable/internal/types"
)

// Config controls table output.
type Config struct {
	UseAscii bool // +-| borders instead of box drawing characters
	Color    bool // colour headers and status cells
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() *Config {
	return &Config{UseAscii: false, Color: true}
}

// Column is one table column.
type Column struct {
	Header     string
	Value      func(types.Record) string
	AlignRight bool
}

type border struct {
	h, v, cross string
}

var (
	asciiBorder   = border{h: "-", v: "|", cross: "+"}
	unicodeBorder = border{h: "─", v: "│", cross: "┼"}
)

var (
	groupStyle  = color.New(color.FgCyan, color.OpBold)
	headerStyle = color.New(color.OpBold)
	statusStyle = map[types.Status]color.Style{
		types.StatusRelationship: color.New(color.FgGreen),
		types.StatusComplicated:  color.New(color.FgYellow),
		types.StatusSingle:       color.New(color.FgMagenta),
	}
)

// Table renders records under grouped column headers.
type Table struct {
	groups *orderedmap.OrderedMap[string, []Column]
	config *Config
}

// NewTable creates a table with the Name and Info header groups.
func NewTable(config *Config) *Table {
	if config == nil {
		config = DefaultConfig()
	}

	groups := orderedmap.NewOrderedMap[string, []Column]()
	groups.Set("Name", []Column{
		{Header: "First Name", Value: func(r types.Record) string { return r.FirstName }},
		{Header: "Last Name", Value: func(r types.Record) string { return r.LastName }},
	})
	groups.Set("Info", []Column{
		{Header: "Age", Value: func(r types.Record) string { return strconv.Itoa(r.Age) }, AlignRight: true},
		{Header: "Visits", Value: func(r types.Record) string { return strconv.Itoa(r.Visits) }, AlignRight: true},
		{Header: "Status", Value: func(r types.Record) string { return string(r.Status) }},
		{Header: "Profile Progress", Value: func(r types.Record) string { return strconv.Itoa(r.Progress) }, AlignRight: true},
	})

	return &Table{groups: groups, config: config}
}

// Columns returns all columns in display order.
func (t *Table) Columns() []Column {
	var cols []Column
	for el := t.groups.Front(); el != nil; el = el.Next() {
		cols = append(cols, el.Value...)
	}
	return cols
}

// Render writes the header groups, column headers and one line per record.
func (t *Table) Render(w io.Writer, records []types.Record) error {
	b := unicodeBorder
	if t.config.UseAscii {
		b = asciiBorder
	}

	cols := t.Columns()
	widths := t.columnWidths(cols, records)

	var sb strings.Builder
	rule := t.rule(b, widths)

	sb.WriteString(t.groupRule(b, widths))
	sb.WriteString(t.groupLine(b, widths))
	sb.WriteString(rule)

	cells := make([]string, len(cols))
	for i, c := range cols {
		cells[i] = t.paint(headerStyle, pad(c.Header, widths[i], false))
	}
	sb.WriteString(line(b, cells))
	sb.WriteString(rule)

	for _, r := range records {
		for i, c := range cols {
			cell := pad(c.Value(r), widths[i], c.AlignRight)
			if c.Header == "Status" {
				if style, ok := statusStyle[r.Status]; ok {
					cell = t.paint(style, cell)
				}
			}
			cells[i] = cell
		}
		sb.WriteString(line(b, cells))
	}
	sb.WriteString(rule)

	_, err := io.WriteString(w, sb.String())
	return err
}

// columnWidths sizes each column to its widest cell, then widens the last
// column of a group whose title is wider than its columns combined.
func (t *Table) columnWidths(cols []Column, records []types.Record) []int {
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = runewidth.StringWidth(c.Header)
		for _, r := range records {
			if n := runewidth.StringWidth(c.Value(r)); n > widths[i] {
				widths[i] = n
			}
		}
	}

	start := 0
	for el := t.groups.Front(); el != nil; el = el.Next() {
		n := len(el.Value)
		if n == 0 {
			continue
		}
		span := groupSpan(widths[start : start+n])
		if title := runewidth.StringWidth(el.Key); title > span {
			widths[start+n-1] += title - span
		}
		start += n
	}
	return widths
}

// groupSpan is the inner width of a header cell covering widths, including
// the separators between them.
func groupSpan(widths []int) int {
	span := 0
	for _, w := range widths {
		span += w
	}
	return span + 3*(len(widths)-1)
}

func (t *Table) groupRule(b border, widths []int) string {
	var parts []string
	start := 0
	for el := t.groups.Front(); el != nil; el = el.Next() {
		n := len(el.Value)
		parts = append(parts, strings.Repeat(b.h, groupSpan(widths[start:start+n])+2))
		start += n
	}
	return b.cross + strings.Join(parts, b.cross) + b.cross + "\n"
}

func (t *Table) groupLine(b border, widths []int) string {
	var cells []string
	start := 0
	for el := t.groups.Front(); el != nil; el = el.Next() {
		n := len(el.Value)
		cells = append(cells, t.paint(groupStyle, pad(el.Key, groupSpan(widths[start:start+n]), false)))
		start += n
	}
	return line(b, cells)
}

func (t *Table) rule(b border, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		parts[i] = strings.Repeat(b.h, w+2)
	}
	return b.cross + strings.Join(parts, b.cross) + b.cross + "\n"
}

func (t *Table) paint(style color.Style, s string) string {
	if !t.config.Color {
		return s
	}
	return style.Sprint(s)
}

func line(b border, cells []string) string {
	return fmt.Sprintf("%s %s %s\n", b.v, strings.Join(cells, " "+b.v+" "), b.v)
}

func pad(s string, width int, right bool) string {
	if right {
		return runewidth.FillLeft(s, width)
	}
	return runewidth.FillRight(s, width)
}
