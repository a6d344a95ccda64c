package styler

import (
	"fmt"
	"image/color"

	"statsnap/utils/debug"
)

// Dump renders grid as indented text for debug reports.
func (g *Grid) Dump() string {
	tw := debug.NewTreeWriter()
	tw.Field(0, "caption", g.Caption)
	tw.Line(0, "index: %t", g.IndexColumn)
	tw.Line(0, "styles: %d", len(g.Styles))
	for _, st := range g.Styles {
		tw.Line(1, "%s { %s }", st.Selector, st.Props)
	}
	tw.Row(0, g.Header)
	tw.Line(0, "rows: %d", len(g.Rows))
	for _, row := range g.Rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = c.Text
			if c.Color != nil {
				cells[i] += " " + hex(c.Color)
			}
		}
		tw.Row(1, cells)
	}
	return tw.String()
}

func hex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}
