package raster

import (
	"image/color"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"statsnap/css"
)

// box is resolved presentation of one table part, lengths are CSS pixels.
type box struct {
	color       color.Color
	background  color.Color
	fontSize    float64
	bold        bool
	align       string
	padding     [4]float64 // top, right, bottom, left
	borderColor color.Color
	borderWidth float64
}

// stripe overrides alternating body rows.
type stripe struct {
	color      color.Color
	background color.Color
}

// sheet is presentation of the whole table after stylesheet rules applied.
type sheet struct {
	table   box
	caption box
	header  box
	cell    box
	even    stripe
	odd     stripe
}

func defaultSheet(fontSize float64) *sheet {
	black := color.NRGBA{A: 0xff}
	return &sheet{
		table: box{
			color:       black,
			background:  color.White,
			fontSize:    fontSize,
			borderColor: color.NRGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff},
			borderWidth: 1,
		},
		caption: box{
			color:    black,
			fontSize: fontSize * 1.3,
			bold:     true,
			align:    "center",
			padding:  [4]float64{6, 0, 6, 0},
		},
		header: box{
			color:      black,
			background: color.NRGBA{R: 0xf2, G: 0xf2, B: 0xf2, A: 0xff},
			fontSize:   fontSize,
			bold:       true,
			align:      "center",
			padding:    [4]float64{4, 8, 4, 8},
		},
		cell: box{
			color:    black,
			fontSize: fontSize,
			align:    "center",
			padding:  [4]float64{4, 8, 4, 8},
		},
	}
}

// resolveSheet applies rules in source order. Selectors are matched by their
// last compound part relative to the table, e.g. "thead th" targets header
// cells and "tbody tr:nth-child(even)" targets even body rows.
func resolveSheet(styles []css.Style, fontSize float64, log *zap.Logger) *sheet {
	sh := defaultSheet(fontSize)
	for _, st := range styles {
		decls := st.Declarations()
		for _, sel := range st.Selectors() {
			target, ok := sh.target(sel)
			if !ok {
				log.Debug("Ignoring unsupported selector", zap.String("selector", sel))
				continue
			}
			for _, d := range decls {
				if !target.apply(d) {
					log.Debug("Ignoring unsupported declaration", zap.String("selector", sel), zap.String("property", d.Property), zap.String("value", d.Value))
				}
			}
		}
	}
	return sh
}

type applier interface {
	apply(d css.Declaration) bool
}

func (sh *sheet) target(selector string) (applier, bool) {
	parts := strings.Fields(strings.ToLower(selector))
	if len(parts) == 0 {
		return nil, false
	}

	var parity string
	for _, p := range parts {
		if !strings.HasPrefix(p, "tr") {
			continue
		}
		switch {
		case strings.Contains(p, "nth-child(even)"), strings.Contains(p, "nth-child(2n)"):
			parity = "even"
		case strings.Contains(p, "nth-child(odd)"), strings.Contains(p, "nth-child(2n+1)"):
			parity = "odd"
		}
	}

	last := parts[len(parts)-1]
	if i := strings.IndexAny(last, ":.#["); i >= 0 {
		last = last[:i]
	}

	if parity != "" && (last == "tr" || last == "td") {
		if parity == "even" {
			return &sh.even, true
		}
		return &sh.odd, true
	}
	switch last {
	case "table", "*":
		return &sh.table, true
	case "caption":
		return &sh.caption, true
	case "th", "thead":
		return &sh.header, true
	case "td", "tr", "tbody":
		return &sh.cell, true
	}
	return nil, false
}

func (b *box) apply(d css.Declaration) bool {
	v := d.Value
	switch d.Property {
	case "color":
		return setColor(&b.color, v)
	case "background-color":
		return setColor(&b.background, v)
	case "background":
		return setColor(&b.background, firstField(v))
	case "font-size":
		if px, ok := parseLength(v, b.fontSize); ok {
			b.fontSize = px
			return true
		}
	case "font-weight":
		b.bold = isBold(v)
		return true
	case "text-align":
		switch v {
		case "left", "right", "center":
			b.align = v
			return true
		case "start":
			b.align = "left"
			return true
		case "end":
			b.align = "right"
			return true
		}
	case "padding":
		return b.setPadding(v)
	case "padding-top", "padding-right", "padding-bottom", "padding-left":
		idx := map[string]int{"padding-top": 0, "padding-right": 1, "padding-bottom": 2, "padding-left": 3}[d.Property]
		if px, ok := parseLength(v, b.fontSize); ok {
			b.padding[idx] = px
			return true
		}
	case "border":
		return b.setBorder(v)
	case "border-color":
		return setColor(&b.borderColor, v)
	case "border-width":
		if px, ok := parseLength(v, b.fontSize); ok {
			b.borderWidth = px
			return true
		}
	}
	return false
}

func (s *stripe) apply(d css.Declaration) bool {
	switch d.Property {
	case "color":
		return setColor(&s.color, d.Value)
	case "background-color":
		return setColor(&s.background, d.Value)
	case "background":
		return setColor(&s.background, firstField(d.Value))
	}
	return false
}

func (b *box) setPadding(v string) bool {
	fields := strings.Fields(v)
	vals := make([]float64, 0, len(fields))
	for _, f := range fields {
		px, ok := parseLength(f, b.fontSize)
		if !ok {
			return false
		}
		vals = append(vals, px)
	}
	switch len(vals) {
	case 1:
		b.padding = [4]float64{vals[0], vals[0], vals[0], vals[0]}
	case 2:
		b.padding = [4]float64{vals[0], vals[1], vals[0], vals[1]}
	case 3:
		b.padding = [4]float64{vals[0], vals[1], vals[2], vals[1]}
	case 4:
		b.padding = [4]float64{vals[0], vals[1], vals[2], vals[3]}
	default:
		return false
	}
	return true
}

func (b *box) setBorder(v string) bool {
	if v == "none" || v == "0" {
		b.borderWidth = 0
		return true
	}
	matched := false
	for _, f := range strings.Fields(v) {
		if px, ok := parseLength(f, b.fontSize); ok {
			b.borderWidth, matched = px, true
			continue
		}
		if c, ok := ParseColor(f); ok {
			b.borderColor, matched = c, true
		}
		// style keywords (solid, dashed...) are drawn solid
	}
	return matched
}

func setColor(dst *color.Color, v string) bool {
	c, ok := ParseColor(v)
	if ok {
		*dst = c
	}
	return ok
}

func firstField(v string) string {
	// keep functional notation intact: "rgb(1, 2, 3) no-repeat"
	if i := strings.IndexByte(v, ')'); i >= 0 && strings.Contains(v[:i], "(") {
		return v[:i+1]
	}
	if f := strings.Fields(v); len(f) > 0 {
		return f[0]
	}
	return v
}

func isBold(v string) bool {
	switch v {
	case "bold", "bolder":
		return true
	}
	n, err := strconv.Atoi(v)
	return err == nil && n >= 600
}

var sizeKeywords = map[string]float64{
	"xx-small": 9, "x-small": 10, "small": 13, "medium": 16,
	"large": 18, "x-large": 24, "xx-large": 32,
}

// parseLength converts CSS length to pixels, em and % are relative to em.
func parseLength(v string, em float64) (float64, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if px, ok := sizeKeywords[v]; ok {
		return px, true
	}
	units := []struct {
		suffix string
		factor float64
	}{
		{"px", 1},
		{"pt", 96.0 / 72.0},
		{"rem", 16},
		{"em", em},
		{"%", em / 100},
		{"", 1},
	}
	for _, u := range units {
		num, found := strings.CutSuffix(v, u.suffix)
		if !found {
			continue
		}
		f, err := strconv.ParseFloat(num, 64)
		if err != nil || f < 0 {
			return 0, false
		}
		return f * u.factor, true
	}
	return 0, false
}
