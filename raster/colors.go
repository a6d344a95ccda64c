package raster

import (
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseColor understands hex notation, rgb()/rgba(), "transparent" and SVG
// color keywords.
func ParseColor(s string) (color.Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return nil, false
	case s == "transparent":
		return color.Transparent, true
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba("):
		return parseRGBFunc(s)
	}
	if c, ok := colornames.Map[s]; ok {
		return c, true
	}
	return nil, false
}

func parseHex(h string) (color.Color, bool) {
	expand := func(s string) string {
		var sb strings.Builder
		for _, r := range s {
			sb.WriteRune(r)
			sb.WriteRune(r)
		}
		return sb.String()
	}
	switch len(h) {
	case 3, 4:
		h = expand(h)
	case 6, 8:
	default:
		return nil, false
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return nil, false
	}
	if len(h) == 6 {
		v = v<<8 | 0xff
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, true
}

func parseRGBFunc(s string) (color.Color, bool) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return nil, false
	}
	args := strings.FieldsFunc(s[open+1:end], func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
	if len(args) != 3 && len(args) != 4 {
		return nil, false
	}

	var ch [4]uint8
	ch[3] = 0xff
	for i, a := range args {
		pct := strings.HasSuffix(a, "%")
		f, err := strconv.ParseFloat(strings.TrimSuffix(a, "%"), 64)
		if err != nil {
			return nil, false
		}
		switch {
		case i == 3 && pct:
			f = f / 100 * 255
		case i == 3:
			f *= 255
		case pct:
			f = f / 100 * 255
		}
		ch[i] = uint8(min(max(f+0.5, 0), 255))
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, true
}
