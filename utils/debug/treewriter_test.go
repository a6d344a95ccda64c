package debug

import (
	"testing"
)

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{name: "no depth", depth: 0, format: "test", want: "test\n"},
		{name: "depth 1", depth: 1, format: "indented", want: "  indented\n"},
		{name: "depth 2", depth: 2, format: "double indent", want: "    double indent\n"},
		{name: "with formatting", depth: 1, format: "value: %d", args: []any{42}, want: "  value: 42\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Line(tt.depth, tt.format, tt.args...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_Field(t *testing.T) {
	tw := NewTreeWriter()
	tw.Field(0, "caption", "Major \"A\"")
	tw.Field(1, "styles", "")
	want := "caption: \"Major \\\"A\\\"\"\n  styles:\n"
	if got := tw.String(); got != want {
		t.Errorf("Field() output = %q, want %q", got, want)
	}
}

func TestTreeWriter_Row(t *testing.T) {
	tw := NewTreeWriter()
	tw.Row(1, []string{"NAVI", "1.07"})
	tw.Row(1, nil)
	if got, want := tw.String(), "  NAVI | 1.07\n  \n"; got != want {
		t.Errorf("Row() output = %q, want %q", got, want)
	}
}

func TestTreeWriter_Empty(t *testing.T) {
	if NewTreeWriter().String() != "" {
		t.Error("Expected empty string from new TreeWriter")
	}
}
