// Package styler prepares a table for rendering: caption, hidden index and
// columns, numeric precision, per-cell colors and table level stylesheet
// rules. It mirrors chained configuration of a view, no pixels are involved.
package styler

import (
	"fmt"
	"image/color"
	"slices"
	"strconv"

	"statsnap/css"
	"statsnap/table"
)

// ColorFunc selects text color for a cell, nil means stylesheet default.
type ColorFunc func(v table.Value) color.Color

// View is styled, read-only presentation of a table.
type View struct {
	data        *table.Table
	caption     string
	hideIndex   bool
	hidden      map[string]bool
	precision   int
	colorFn     ColorFunc
	tableStyles []css.Style
}

// New creates a view of t with default presentation - index shown, all
// columns visible, floats with 6 digits.
func New(t *table.Table) *View {
	return &View{
		data:      t,
		hidden:    make(map[string]bool),
		precision: 6,
	}
}

func (v *View) SetCaption(caption string) *View {
	v.caption = caption
	return v
}

// HideIndex suppresses positional row labels.
func (v *View) HideIndex() *View {
	v.hideIndex = true
	return v
}

// Hide marks columns invisible. Names not present in the table are ignored so
// the same styling can be applied to tables with different layouts.
func (v *View) Hide(columns ...string) *View {
	for _, c := range columns {
		v.hidden[c] = true
	}
	return v
}

// Format sets number of digits for float cells.
func (v *View) Format(precision int) *View {
	v.precision = precision
	return v
}

// Map sets cell color selector.
func (v *View) Map(fn ColorFunc) *View {
	v.colorFn = fn
	return v
}

// SetTableStyles replaces table level rules.
func (v *View) SetTableStyles(styles []css.Style) *View {
	v.tableStyles = slices.Clone(styles)
	return v
}

func (v *View) Caption() string { return v.caption }

// Cell is a formatted value with optional color.
type Cell struct {
	Text  string
	Color color.Color
}

// Grid is fully resolved view content.
type Grid struct {
	Caption string
	Header  []string
	Rows    [][]Cell
	Styles  []css.Style
	// IndexColumn reports whether first column holds positional row labels.
	IndexColumn bool
}

// Grid resolves visible columns, formatted text and colors.
func (v *View) Grid() *Grid {
	cols := v.data.Columns()
	visible := make([]int, 0, len(cols))
	for i, name := range cols {
		if !v.hidden[name] {
			visible = append(visible, i)
		}
	}

	g := &Grid{
		Caption:     v.caption,
		Styles:      slices.Clone(v.tableStyles),
		IndexColumn: !v.hideIndex,
	}
	if g.IndexColumn {
		g.Header = append(g.Header, "")
	}
	for _, i := range visible {
		g.Header = append(g.Header, cols[i])
	}

	g.Rows = make([][]Cell, v.data.Len())
	for r := range g.Rows {
		row := make([]Cell, 0, len(g.Header))
		if g.IndexColumn {
			row = append(row, Cell{Text: strconv.Itoa(r)})
		}
		for _, i := range visible {
			val := v.data.Cell(r, i)
			c := Cell{Text: val.Format(v.precision)}
			if v.colorFn != nil {
				c.Color = v.colorFn(val)
			}
			row = append(row, c)
		}
		g.Rows[r] = row
	}
	return g
}

// String is used in debug logging.
func (v *View) String() string {
	return fmt.Sprintf("view(%q, rows=%d, hidden=%d, styles=%d)", v.caption, v.data.Len(), len(v.hidden), len(v.tableStyles))
}
