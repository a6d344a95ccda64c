// Package majors renders per tournament team and player statistics into
// images.
package majors

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"statsnap/css"
	"statsnap/styler"
	"statsnap/table"
)

// ErrAmbiguousRating is returned when rating column to keep cannot be decided
// for a tournament: both ratings are populated or both are empty.
var ErrAmbiguousRating = errors.New("ambiguous rating columns")

const (
	ColumnEventID = "Event ID"
	ColumnRating1 = "Rating1.0"
	ColumnRating2 = "Rating2.0"
	ColumnRounds  = "Rounds"
)

// Painter writes resolved grid to an image file.
type Painter interface {
	Export(g *styler.Grid, path string) error
}

// Palette colors numeric cells by comparing them with thresholds.
type Palette struct {
	High     float64 // floats at or above are positive
	Low      float64 // floats at or below are negative
	Positive color.Color
	Negative color.Color
	Neutral  color.Color
}

// DefaultPalette returns green/red/gray palette with 1.05 and 0.95 thresholds.
func DefaultPalette() Palette {
	return Palette{
		High:     1.05,
		Low:      0.95,
		Positive: color.NRGBA{R: 0x09, G: 0xc1, B: 0x00, A: 0xff},
		Negative: color.NRGBA{R: 0xfc, G: 0x1d, B: 0x1d, A: 0xff},
		Neutral:  color.NRGBA{R: 0x92, G: 0x9a, B: 0x9e, A: 0xff},
	}
}

// Color selects cell color. Floats are compared with thresholds, integers
// with zero, everything else including strings and nulls is neutral.
func (p Palette) Color(v table.Value) color.Color {
	switch v.Kind() {
	case table.Float:
		f, _ := v.Float()
		switch {
		case f >= p.High:
			return p.Positive
		case f <= p.Low:
			return p.Negative
		}
	case table.Int:
		i, _ := v.Int()
		switch {
		case i > 0:
			return p.Positive
		case i < 0:
			return p.Negative
		}
	}
	return p.Neutral
}

// Options shared by team and player renderers.
type Options struct {
	Precision int
	Palette   Palette
	Names     *Names
	// Trace receives text dump of every exported grid, may be nil.
	Trace func(name string, dump []byte)
}

// DefaultOptions returns two digit precision, default palette and
// default file names.
func DefaultOptions() Options {
	return Options{Precision: 2, Palette: DefaultPalette(), Names: DefaultNames()}
}

// Stats is loaded statistics table together with stylesheet rules used for
// every image exported from it. Both are read-only after construction.
type Stats struct {
	data    *table.Table
	styles  []css.Style
	opts    Options
	painter Painter
	log     *zap.Logger
}

func newStats(data *table.Table, styles []css.Style, opts Options, painter Painter, log *zap.Logger) (*Stats, error) {
	if !data.HasColumn(ColumnEventID) {
		return nil, fmt.Errorf("stats table: %w: %q", table.ErrNoColumn, ColumnEventID)
	}
	if painter == nil {
		return nil, errors.New("painter is required")
	}
	if opts.Names == nil {
		opts.Names = DefaultNames()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Stats{data: data, styles: styles, opts: opts, painter: painter, log: log}, nil
}

// loadStats reads statistics CSV and stylesheet.
func loadStats(statsPath, cssPath string, enc encoding.Encoding, opts Options, painter Painter, log *zap.Logger) (*Stats, error) {
	data, err := table.Load(statsPath, enc)
	if err != nil {
		return nil, err
	}
	styles, err := css.LoadStyles(cssPath, log)
	if err != nil {
		return nil, err
	}
	s, err := newStats(data, styles, opts, painter, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", statsPath, err)
	}
	log.Debug("Stats loaded",
		zap.String("stats", statsPath),
		zap.String("styles", cssPath),
		zap.Int("rows", data.Len()),
		zap.Int("rules", len(styles)))
	return s, nil
}

// Table returns loaded statistics.
func (s *Stats) Table() *table.Table {
	return s.data
}

// Styles returns stylesheet rules applied to every image.
func (s *Stats) Styles() []css.Style {
	return s.styles
}

// DropInvalidRating removes rating column which carries no data for the rows
// of t. Exactly one of "Rating1.0" and "Rating2.0" is expected to be entirely
// null, missing column counts as null. Table without rows loses "Rating2.0".
func DropInvalidRating(t *table.Table) (*table.Table, error) {
	null1, err := allNull(t, ColumnRating1)
	if err != nil {
		return nil, err
	}
	null2, err := allNull(t, ColumnRating2)
	if err != nil {
		return nil, err
	}

	var drop string
	switch {
	case t.Len() == 0:
		drop = ColumnRating2
	case null1 && !null2:
		drop = ColumnRating1
	case null2 && !null1:
		drop = ColumnRating2
	case null1 && null2:
		return nil, fmt.Errorf("%w: both %s and %s are empty", ErrAmbiguousRating, ColumnRating1, ColumnRating2)
	default:
		return nil, fmt.Errorf("%w: both %s and %s are populated", ErrAmbiguousRating, ColumnRating1, ColumnRating2)
	}
	if !t.HasColumn(drop) {
		return t, nil
	}
	return t.Drop(drop)
}

func allNull(t *table.Table, column string) (bool, error) {
	if !t.HasColumn(column) {
		return true, nil
	}
	return t.AllNull(column)
}

// subset selects rows of tournament id with invalid rating removed and returns
// them with tournament display name.
func (s *Stats) subset(id int64, idx *Tournaments) (*table.Table, string, error) {
	name, err := idx.Name(id)
	if err != nil {
		return nil, "", err
	}
	rows, err := s.data.WhereInt(ColumnEventID, id)
	if err != nil {
		return nil, "", err
	}
	rows, err = DropInvalidRating(rows)
	if err != nil {
		return nil, "", err
	}
	return rows, name, nil
}

// style applies presentation common for all stats images.
func (s *Stats) style(t *table.Table, title string) *styler.View {
	return styler.New(t).
		SetCaption(title).
		HideIndex().
		Hide(ColumnEventID).
		Format(s.opts.Precision).
		Map(s.opts.Palette.Color)
}

func (s *Stats) export(v *styler.View, dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	g := v.Grid()
	if s.opts.Trace != nil {
		s.opts.Trace(strings.TrimSuffix(name, filepath.Ext(name))+".txt", []byte(g.Dump()))
	}
	if err := s.painter.Export(g, path); err != nil {
		return "", fmt.Errorf("unable to export %s: %w", path, err)
	}
	s.log.Debug("Image written", zap.String("path", path), zap.Stringer("view", v))
	return path, nil
}

// Exporter produces images for a single tournament.
type Exporter interface {
	ExportOne(ctx context.Context, id int64, idx *Tournaments, dir string) error
}

// ExportAll exports every tournament of idx in index order. The first failure
// stops processing and is returned with tournament identifier.
func ExportAll(ctx context.Context, e Exporter, idx *Tournaments, dir string) error {
	for _, id := range idx.IDs() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.ExportOne(ctx, id, idx, dir); err != nil {
			return fmt.Errorf("tournament %d: %w", id, err)
		}
	}
	return nil
}
