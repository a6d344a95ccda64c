// Package debug produces indented text dumps for troubleshooting.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

// TreeWriter accumulates indented lines, two spaces per level.
type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{w: &strings.Builder{}}
}

func (tw *TreeWriter) String() string {
	return tw.w.String()
}

func (tw *TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

// Line writes formatted line at depth.
func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Field writes "label: value" with value quoted, empty values stay bare.
func (tw *TreeWriter) Field(depth int, label, value string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(":")
	if value != "" {
		tw.w.WriteByte(' ')
		tw.w.WriteString(strconv.Quote(value))
	}
	tw.w.WriteByte('\n')
}

// Row writes cells separated by " | " at depth.
func (tw *TreeWriter) Row(depth int, cells []string) {
	tw.indent(depth)
	tw.w.WriteString(strings.Join(cells, " | "))
	tw.w.WriteByte('\n')
}
