// Package raster draws styled tables into images.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/srwiley/rasterx"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"statsnap/styler"
)

// cssDPI is reference resolution CSS pixels are defined against.
const cssDPI = 96

// Options control rasterization.
type Options struct {
	DPI      float64     // output resolution
	FontSize float64     // default font size, CSS px
	Margin   float64     // blank space around the table, CSS px
	Logo     image.Image // optional, drawn left of the caption; already scaled
}

// Renderer turns resolved grids into images. It caches font faces and is not
// safe for concurrent use.
type Renderer struct {
	opts    Options
	log     *zap.Logger
	regular *opentype.Font
	bold    *opentype.Font
	faces   map[faceKey]font.Face
}

type faceKey struct {
	size float64
	bold bool
}

// New prepares renderer with embedded Go fonts.
func New(opts Options, log *zap.Logger) (*Renderer, error) {
	if opts.DPI <= 0 {
		return nil, errors.New("dpi must be positive")
	}
	if opts.FontSize <= 0 {
		return nil, errors.New("font size must be positive")
	}
	if log == nil {
		log = zap.NewNop()
	}

	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("unable to parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("unable to parse bold font: %w", err)
	}
	return &Renderer{
		opts:    opts,
		log:     log.Named("raster"),
		regular: regular,
		bold:    bold,
		faces:   make(map[faceKey]font.Face),
	}, nil
}

// scale converts CSS pixels to device pixels.
func (r *Renderer) scale(px float64) int {
	return int(math.Round(px * r.opts.DPI / cssDPI))
}

func (r *Renderer) face(b *box) (font.Face, error) {
	key := faceKey{size: b.fontSize, bold: b.bold}
	if f, ok := r.faces[key]; ok {
		return f, nil
	}
	src := r.regular
	if b.bold {
		src = r.bold
	}
	// CSS px -> typographic points at the output DPI
	f, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    b.fontSize * 72 / cssDPI,
		DPI:     r.opts.DPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create font face: %w", err)
	}
	r.faces[key] = f
	return f, nil
}

// part is one laid out table section sharing font and paddings.
type part struct {
	b      *box
	face   font.Face
	ascent int
	lineH  int
	pad    [4]int
}

func (r *Renderer) newPart(b *box) (*part, error) {
	f, err := r.face(b)
	if err != nil {
		return nil, err
	}
	m := f.Metrics()
	p := &part{b: b, face: f, ascent: m.Ascent.Ceil(), lineH: (m.Ascent + m.Descent).Ceil()}
	for i, v := range b.padding {
		p.pad[i] = r.scale(v)
	}
	return p, nil
}

func (p *part) height() int {
	return p.lineH + p.pad[0] + p.pad[2]
}

func (p *part) measure(text string) int {
	return font.MeasureString(p.face, text).Ceil()
}

// Render draws grid: caption (with optional logo) centered above the table,
// header row, then body rows. A grid without rows still gets its header.
func (r *Renderer) Render(g *styler.Grid) (image.Image, error) {
	sh := resolveSheet(g.Styles, r.opts.FontSize, r.log)

	caption, err := r.newPart(&sh.caption)
	if err != nil {
		return nil, err
	}
	header, err := r.newPart(&sh.header)
	if err != nil {
		return nil, err
	}
	cell, err := r.newPart(&sh.cell)
	if err != nil {
		return nil, err
	}

	ncols := len(g.Header)
	border := r.scale(sh.table.borderWidth)
	margin := r.scale(r.opts.Margin)

	// columns
	widths := make([]int, ncols)
	for i, h := range g.Header {
		widths[i] = header.measure(h) + header.pad[1] + header.pad[3]
	}
	for _, row := range g.Rows {
		for i, c := range row {
			p := cell
			if g.IndexColumn && i == 0 {
				p = header
			}
			widths[i] = max(widths[i], p.measure(c.Text)+p.pad[1]+p.pad[3])
		}
	}

	tableW := border
	for _, w := range widths {
		tableW += w + border
	}
	headH, rowH := header.height(), max(cell.height(), header.height()*boolInt(g.IndexColumn))
	tableH := border + headH + border + len(g.Rows)*(rowH+border)

	// caption block
	var logoW, logoH, gap, capTextW, capH int
	if r.opts.Logo != nil {
		logoW, logoH = r.opts.Logo.Bounds().Dx(), r.opts.Logo.Bounds().Dy()
	}
	hasCaption := g.Caption != "" || r.opts.Logo != nil
	if hasCaption {
		capTextW = caption.measure(g.Caption)
		if logoW > 0 && capTextW > 0 {
			gap = r.scale(8)
		}
		capH = max(caption.lineH, logoH) + caption.pad[0] + caption.pad[2]
	}
	capW := logoW + gap + capTextW + caption.pad[1] + caption.pad[3]

	contentW := max(tableW, capW)
	imgW, imgH := contentW+2*margin, tableH+capH+2*margin

	dst := image.NewRGBA(image.Rect(0, 0, imgW, imgH))
	pt := newPainter(dst)
	pt.fill(dst.Bounds(), color.White)

	// caption
	var logoAt image.Point
	if hasCaption {
		x := alignX(sh.caption.align, margin+caption.pad[3], contentW-caption.pad[1]-caption.pad[3], logoW+gap+capTextW)
		top := margin + caption.pad[0]
		inner := capH - caption.pad[0] - caption.pad[2]
		logoAt = image.Pt(x, top+(inner-logoH)/2)
		if capTextW > 0 {
			y := top + (inner-caption.lineH)/2 + caption.ascent
			pt.text(caption.face, x+logoW+gap, y, g.Caption, inherit(sh.caption.color, sh.table.color))
		}
	}

	// table frame, cells are painted over it leaving border lines
	tx, ty := margin+(contentW-tableW)/2, margin+capH
	frame := image.Rect(tx, ty, tx+tableW, ty+tableH)
	if border > 0 {
		pt.fill(frame, sh.table.borderColor)
	} else {
		pt.fill(frame, sh.table.background)
	}

	y := ty + border
	x := tx + border
	for i, h := range g.Header {
		rect := image.Rect(x, y, x+widths[i], y+headH)
		pt.fill(rect, inherit(sh.header.background, sh.table.background))
		pt.cellText(header, rect, h, inherit(sh.header.color, sh.table.color))
		x += widths[i] + border
	}
	y += headH + border

	for ri, row := range g.Rows {
		st := sh.odd
		if ri%2 == 1 { // rows are numbered from 1 in CSS
			st = sh.even
		}
		x = tx + border
		for i, c := range row {
			rect := image.Rect(x, y, x+widths[i], y+rowH)
			p, bg, fg := cell, inherit(st.background, sh.cell.background, sh.table.background), inherit(st.color, sh.cell.color, sh.table.color)
			if g.IndexColumn && i == 0 {
				p, bg, fg = header, inherit(sh.header.background, sh.table.background), inherit(sh.header.color, sh.table.color)
			}
			if c.Color != nil {
				fg = c.Color
			}
			pt.fill(rect, bg)
			pt.cellText(p, rect, c.Text, fg)
			x += widths[i] + border
		}
		y += rowH + border
	}

	if r.opts.Logo != nil {
		return imaging.Overlay(dst, r.opts.Logo, logoAt, 1.0), nil
	}
	return dst, nil
}

// Close releases cached font faces.
func (r *Renderer) Close() error {
	var err error
	for k, f := range r.faces {
		if e := f.Close(); e != nil && err == nil {
			err = e
		}
		delete(r.faces, k)
	}
	return err
}

// painter fills antialiased boxes and draws text on dst.
type painter struct {
	dst    *image.RGBA
	filler *rasterx.Filler
}

func newPainter(dst *image.RGBA) *painter {
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	return &painter{dst: dst, filler: rasterx.NewFiller(w, h, scanner)}
}

func (p *painter) fill(r image.Rectangle, c color.Color) {
	if c == nil || r.Empty() {
		return
	}
	p.filler.Clear()
	p.filler.SetColor(c)
	rasterx.AddRect(float64(r.Min.X), float64(r.Min.Y), float64(r.Max.X), float64(r.Max.Y), 0, p.filler)
	p.filler.Draw()
}

func (p *painter) text(face font.Face, x, baseline int, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  p.dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}

func (p *painter) cellText(pt *part, r image.Rectangle, s string, c color.Color) {
	if s == "" {
		return
	}
	x := alignX(pt.b.align, r.Min.X+pt.pad[3], r.Dx()-pt.pad[1]-pt.pad[3], pt.measure(s))
	y := r.Min.Y + (r.Dy()-pt.lineH)/2 + pt.ascent
	p.text(pt.face, x, y, s, c)
}

func alignX(align string, left, avail, w int) int {
	switch align {
	case "left":
		return left
	case "right":
		return left + avail - w
	default:
		return left + (avail-w)/2
	}
}

// inherit returns first non nil color.
func inherit(cs ...color.Color) color.Color {
	for _, c := range cs {
		if c != nil {
			return c
		}
	}
	return color.Black
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
