// Package ui renders CLI output with optional color
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// RowStyle highlights a table row
type RowStyle int

const (
	RowPlain RowStyle = iota
	RowWarning
	RowDanger
)

type row struct {
	style RowStyle
	cells []string
}

// Table renders aligned columns under a header
type Table struct {
	writer  io.Writer
	headers []string
	rows    []row
	noColor bool
}

// NewTable creates a table with the given headers
func NewTable(w io.Writer, headers []string, noColor bool) *Table {
	return &Table{writer: w, headers: headers, noColor: noColor}
}

// AddRow adds a plain row
func (t *Table) AddRow(cells ...string) {
	t.AddStyledRow(RowPlain, cells...)
}

// AddStyledRow adds a row rendered with style
func (t *Table) AddStyledRow(style RowStyle, cells ...string) {
	t.rows = append(t.rows, row{style: style, cells: cells})
}

func (t *Table) colorFor(style RowStyle) *color.Color {
	var c *color.Color
	switch style {
	case RowWarning:
		c = color.New(color.FgYellow)
	case RowDanger:
		c = color.New(color.FgRed)
	default:
		c = color.New(color.Reset)
	}
	if t.noColor {
		c.DisableColor()
	}
	return c
}

// Render writes the table. Nothing is written without headers.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = len(header)
	}
	for _, r := range t.rows {
		for i, cell := range r.cells {
			if i < len(widths) {
				widths[i] = max(widths[i], len(cell))
			}
		}
	}

	bold := color.New(color.Bold, color.FgCyan)
	gray := color.New(color.FgHiBlack)
	if t.noColor {
		bold.DisableColor()
		gray.DisableColor()
	}

	cells := make([]string, len(t.headers))
	for i, header := range t.headers {
		cells[i] = bold.Sprint(padRight(header, widths[i]))
	}
	fmt.Fprintln(t.writer, strings.TrimRight(strings.Join(cells, "  "), " "))

	for i, width := range widths {
		cells[i] = gray.Sprint(strings.Repeat("─", width))
	}
	fmt.Fprintln(t.writer, strings.Join(cells, "  "))

	for _, r := range t.rows {
		c := t.colorFor(r.style)
		line := make([]string, 0, len(widths))
		for i, cell := range r.cells {
			if i < len(widths) {
				line = append(line, padRight(cell, widths[i]))
			}
		}
		fmt.Fprintln(t.writer, c.Sprint(strings.TrimRight(strings.Join(line, "  "), " ")))
	}
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// KeyValueTable renders aligned key: value lines
type KeyValueTable struct {
	writer  io.Writer
	keys    []string
	values  []string
	noColor bool
}

// NewKeyValueTable creates an empty key-value table
func NewKeyValueTable(w io.Writer, noColor bool) *KeyValueTable {
	return &KeyValueTable{writer: w, noColor: noColor}
}

// AddRow adds a key-value pair
func (t *KeyValueTable) AddRow(key, value string) {
	t.keys = append(t.keys, key)
	t.values = append(t.values, value)
}

// Render writes the pairs with keys padded to the longest key
func (t *KeyValueTable) Render() {
	width := 0
	for _, key := range t.keys {
		width = max(width, len(key))
	}

	cyan := color.New(color.FgCyan)
	if t.noColor {
		cyan.DisableColor()
	}
	for i, key := range t.keys {
		cyan.Fprint(t.writer, padRight(key+":", width+1))
		fmt.Fprintf(t.writer, " %s\n", t.values[i])
	}
}

// Divider renders a horizontal line, 80 columns wide when width is 0
func Divider(w io.Writer, width int, noColor bool) {
	if width == 0 {
		width = 80
	}
	gray := color.New(color.FgHiBlack)
	if noColor {
		gray.DisableColor()
	}
	gray.Fprintln(w, strings.Repeat("─", width))
}

// Header renders a bold title underlined by a divider
func Header(w io.Writer, title string, noColor bool) {
	bold := color.New(color.Bold, color.FgCyan)
	if noColor {
		bold.DisableColor()
	}
	bold.Fprintln(w, title)
	Divider(w, len(title), noColor)
}

// Highlight colors the lines of text that start with one of the given
// prefixes once leading spaces are trimmed
func Highlight(w io.Writer, text string, prefixes []string, noColor bool) {
	heading := color.New(color.Bold, color.FgCyan)
	if noColor {
		heading.DisableColor()
	}
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		trimmed := strings.TrimLeft(line, " ")
		matched := false
		for _, prefix := range prefixes {
			if strings.HasPrefix(trimmed, prefix) {
				matched = true
				break
			}
		}
		if matched {
			indent := line[:len(line)-len(trimmed)]
			fmt.Fprintln(w, indent+heading.Sprint(trimmed))
			continue
		}
		fmt.Fprintln(w, line)
	}
}
