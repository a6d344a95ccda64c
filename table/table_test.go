package table

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

const sampleCSV = `Player,Event ID,Rounds,K-D Diff,Rating1.0,Rating2.0
s1mple,1,120,35,,1.31
ZywOo,1,118,-4,,0.94
device,2,98,12,1.12,
NiKo,2,101,0,0.95,
`

func mustRead(t *testing.T, text string) *Table {
	t.Helper()
	tbl, err := Read(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	return tbl
}

func TestRead_InfersColumnKinds(t *testing.T) {
	tbl := mustRead(t, sampleCSV)

	if tbl.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", tbl.Len())
	}

	tests := []struct {
		column string
		row    int
		kind   Kind
	}{
		{"Player", 0, String},
		{"Event ID", 0, Int},
		{"Rounds", 1, Int},
		{"K-D Diff", 1, Int},
		{"Rating1.0", 0, Null},
		{"Rating1.0", 2, Float},
		{"Rating2.0", 1, Float},
		{"Rating2.0", 3, Null},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			v, err := tbl.Get(tt.row, tt.column)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if v.Kind() != tt.kind {
				t.Errorf("kind of %s[%d] = %v, want %v", tt.column, tt.row, v.Kind(), tt.kind)
			}
		})
	}
}

func TestRead_IntColumnWithNullsBecomesFloat(t *testing.T) {
	tbl := mustRead(t, "a,b\n1,x\n,y\n3,z\n")

	v, err := tbl.Get(0, "a")
	if err != nil {
		t.Fatal(err)
	}
	if v.Kind() != Float {
		t.Fatalf("kind = %v, want float", v.Kind())
	}
	if id, ok := v.Int(); !ok || id != 1 {
		t.Errorf("Int() = %d, %v; want 1, true", id, ok)
	}
}

func TestRead_MixedColumnIsString(t *testing.T) {
	tbl := mustRead(t, "a\n1\nfoo\n")
	v, _ := tbl.Get(0, "a")
	if s, ok := v.Text(); !ok || s != "1" {
		t.Errorf("Text() = %q, %v; want \"1\", true", s, ok)
	}
}

func TestRead_HexNumbersAreStrings(t *testing.T) {
	tbl := mustRead(t, "a,b\n0x1p-2,1.5\n0x_1p0,2\n")
	if v, _ := tbl.Get(0, "a"); v.Kind() != String {
		t.Errorf("hex float column kind = %v, want %v", v.Kind(), String)
	}
	if v, _ := tbl.Get(1, "b"); v.Kind() != Float {
		t.Errorf("decimal column kind = %v, want %v", v.Kind(), Float)
	}
}

func TestRead_Errors(t *testing.T) {
	if _, err := Read(strings.NewReader("")); err == nil {
		t.Error("expected error for empty input")
	}
	if _, err := Read(strings.NewReader("a,b\n1,2,3\n")); err == nil {
		t.Error("expected error for row with extra cells")
	}
}

func TestLoad_BOMAndEncoding(t *testing.T) {
	dir := t.TempDir()

	t.Run("utf8_bom", func(t *testing.T) {
		path := filepath.Join(dir, "bom.csv")
		if err := os.WriteFile(path, append([]byte{0xEF, 0xBB, 0xBF}, []byte("Event,ID\nMajor,1\n")...), 0644); err != nil {
			t.Fatal(err)
		}
		tbl, err := Load(path, nil)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if !tbl.HasColumn("Event") {
			t.Errorf("BOM leaked into header: %q", tbl.Columns())
		}
	})

	t.Run("windows1252", func(t *testing.T) {
		path := filepath.Join(dir, "cp.csv")
		// "Köln" in windows-1252
		if err := os.WriteFile(path, []byte("Event\nK\xf6ln\n"), 0644); err != nil {
			t.Fatal(err)
		}
		tbl, err := Load(path, charmap.Windows1252)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		v, _ := tbl.Get(0, "Event")
		if s, _ := v.Text(); s != "Köln" {
			t.Errorf("decoded = %q, want Köln", s)
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := Load(filepath.Join(dir, "absent.csv"), nil); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestWhereInt(t *testing.T) {
	tbl := mustRead(t, sampleCSV)

	sub, err := tbl.WhereInt("Event ID", 2)
	if err != nil {
		t.Fatalf("WhereInt() error = %v", err)
	}
	if sub.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", sub.Len())
	}
	v, _ := sub.Get(0, "Player")
	if s, _ := v.Text(); s != "device" {
		t.Errorf("first row = %q, want device (source order)", s)
	}
	if tbl.Len() != 4 {
		t.Error("source table was modified")
	}

	if _, err := tbl.WhereInt("Nope", 1); !errors.Is(err, ErrNoColumn) {
		t.Errorf("err = %v, want ErrNoColumn", err)
	}
}

func TestAllNull(t *testing.T) {
	tbl := mustRead(t, sampleCSV)
	first, _ := tbl.WhereInt("Event ID", 1)

	if null, _ := first.AllNull("Rating1.0"); !null {
		t.Error("Rating1.0 should be all null for event 1")
	}
	if null, _ := first.AllNull("Rating2.0"); null {
		t.Error("Rating2.0 should not be all null for event 1")
	}
	if null, _ := tbl.Slice(0, 0).AllNull("Rating2.0"); !null {
		t.Error("empty table column should be all null")
	}
}

func TestDrop(t *testing.T) {
	tbl := mustRead(t, sampleCSV)

	out, err := tbl.Drop("Rating1.0", "Rounds")
	if err != nil {
		t.Fatalf("Drop() error = %v", err)
	}
	want := []string{"Player", "Event ID", "K-D Diff", "Rating2.0"}
	if got := out.Columns(); strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Columns() = %v, want %v", got, want)
	}
	v, _ := out.Get(0, "Rating2.0")
	if f, _ := v.Float(); f != 1.31 {
		t.Errorf("Rating2.0 = %v, want 1.31", f)
	}
	if !tbl.HasColumn("Rounds") {
		t.Error("source table lost a column")
	}

	if _, err := tbl.Drop("Absent"); !errors.Is(err, ErrNoColumn) {
		t.Errorf("err = %v, want ErrNoColumn", err)
	}
}

func TestSlice(t *testing.T) {
	tbl := mustRead(t, sampleCSV)

	tests := []struct {
		name   string
		lo, hi int
		want   int
	}{
		{"head", 0, 2, 2},
		{"tail_past_end", 3, 16, 1},
		{"beyond", 16, 32, 0},
		{"end_to_end", 4, 4, 0},
		{"inverted", 3, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tbl.Slice(tt.lo, tt.hi).Len(); got != tt.want {
				t.Errorf("Slice(%d, %d).Len() = %d, want %d", tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}

func TestValueFormat(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{FloatValue(1.2345), "1.23"},
		{FloatValue(1), "1.00"},
		{IntValue(-3), "-3"},
		{StringValue("NAVI"), "NAVI"},
		{NullValue(), "nan"},
	}
	for _, tt := range tests {
		if got := tt.v.Format(2); got != tt.want {
			t.Errorf("Format(2) of %v = %q, want %q", tt.v.Kind(), got, tt.want)
		}
	}
}
