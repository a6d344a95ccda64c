package styler

import (
	"image/color"
	"strings"
	"testing"

	"statsnap/css"
	"statsnap/table"
)

func sample(t *testing.T) *table.Table {
	t.Helper()
	tbl, err := table.Read(strings.NewReader("Team,Event ID,Maps,Rating2.0\nNAVI,1,9,1.0725\nG2,1,7,0.9\n"))
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestGrid_Defaults(t *testing.T) {
	g := New(sample(t)).Grid()

	if !g.IndexColumn {
		t.Error("index column should be shown by default")
	}
	if got := strings.Join(g.Header, "|"); got != "|Team|Event ID|Maps|Rating2.0" {
		t.Errorf("Header = %q", got)
	}
	if g.Rows[1][0].Text != "1" {
		t.Errorf("index label = %q, want 1", g.Rows[1][0].Text)
	}
	if g.Rows[0][4].Text != "1.072500" {
		t.Errorf("default float format = %q, want 1.072500", g.Rows[0][4].Text)
	}
}

func TestGrid_StyledView(t *testing.T) {
	green := color.RGBA{G: 0xff, A: 0xff}
	styles := []css.Style{{Selector: "td", Props: "color: white"}}

	v := New(sample(t)).
		SetCaption("Major A").
		HideIndex().
		Hide("Event ID", "Rounds").
		Format(2).
		Map(func(v table.Value) color.Color {
			if f, ok := v.Float(); ok && v.Kind() == table.Float && f > 1 {
				return green
			}
			return nil
		}).
		SetTableStyles(styles)
	styles[0].Props = "mutated"

	g := v.Grid()
	if g.Caption != "Major A" {
		t.Errorf("Caption = %q", g.Caption)
	}
	if g.IndexColumn {
		t.Error("index column should be hidden")
	}
	if got := strings.Join(g.Header, "|"); got != "Team|Maps|Rating2.0" {
		t.Errorf("Header = %q", got)
	}
	if len(g.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(g.Rows))
	}
	if c := g.Rows[0][2]; c.Text != "1.07" || c.Color != green {
		t.Errorf("rating cell = %+v", c)
	}
	if c := g.Rows[1][2]; c.Text != "0.90" || c.Color != nil {
		t.Errorf("rating cell = %+v", c)
	}
	if g.Styles[0].Props != "color: white" {
		t.Error("view must keep its own copy of table styles")
	}
}

func TestGrid_EmptyTable(t *testing.T) {
	g := New(sample(t).Slice(5, 5)).HideIndex().Grid()
	if len(g.Rows) != 0 {
		t.Errorf("rows = %d, want 0", len(g.Rows))
	}
	if len(g.Header) != 4 {
		t.Errorf("header must survive empty page, got %v", g.Header)
	}
}

func TestGrid_Dump(t *testing.T) {
	g := New(sample(t)).
		SetCaption("Major A").
		HideIndex().
		Hide("Event ID", "Maps").
		Format(2).
		Map(func(v table.Value) color.Color {
			if v.Kind() == table.Float {
				return color.RGBA{R: 0x09, G: 0xc1, A: 0xff}
			}
			return nil
		}).
		Grid()

	want := "caption: \"Major A\"\n" +
		"index: false\n" +
		"styles: 0\n" +
		"Team | Rating2.0\n" +
		"rows: 2\n" +
		"  NAVI | 1.07 #09c100\n" +
		"  G2 | 0.90 #09c100\n"
	if got := g.Dump(); got != want {
		t.Errorf("Dump() =\n%s\nwant\n%s", got, want)
	}
}
