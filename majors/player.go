package majors

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"statsnap/table"
)

const (
	DefaultPageSize = 16
	DefaultPages    = 5
)

// PlayerStats renders tournament players split into fixed number of pages.
type PlayerStats struct {
	*Stats
	pageSize int
	pages    int
}

// NewPlayerStats loads player statistics and its stylesheet. Every tournament
// produces pages images of pageSize rows, the last one takes the remainder.
func NewPlayerStats(statsPath, cssPath string, enc encoding.Encoding, opts Options, pageSize, pages int, painter Painter, log *zap.Logger) (*PlayerStats, error) {
	if pageSize <= 0 || pages <= 0 {
		return nil, fmt.Errorf("invalid paging %d x %d", pages, pageSize)
	}
	log = namedLogger(log).With(zap.String("stats", "player"))
	s, err := loadStats(statsPath, cssPath, enc, opts, painter, log)
	if err != nil {
		return nil, err
	}
	return &PlayerStats{Stats: s, pageSize: pageSize, pages: pages}, nil
}

// Paginate cuts t into pages slices of size rows, the last slice runs to the
// end of t. Slices past the end are empty.
func Paginate(t *table.Table, size, pages int) []*table.Table {
	out := make([]*table.Table, pages)
	for i := range pages {
		lo, hi := i*size, (i+1)*size
		if i == pages-1 {
			hi = t.Len()
		}
		out[i] = t.Slice(lo, hi)
	}
	return out
}

// ExportOne writes every page of tournament id into dir. Empty pages are
// written too so the set of files per tournament is fixed.
func (ps *PlayerStats) ExportOne(ctx context.Context, id int64, idx *Tournaments, dir string) error {
	rows, title, err := ps.subset(id, idx)
	if err != nil {
		return err
	}
	for i, page := range Paginate(rows, ps.pageSize, ps.pages) {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := i + 1
		name, err := ps.opts.Names.Player(NameValues{ID: id, Page: n, Event: title})
		if err != nil {
			return err
		}
		view := ps.style(page, title).Hide(ColumnRounds).SetTableStyles(ps.styles)
		if _, err := ps.export(view, dir, name); err != nil {
			return fmt.Errorf("page %d: %w", n, err)
		}
	}
	ps.log.Info("Player stats exported", zap.Int64("id", id), zap.String("event", title), zap.Int("rows", rows.Len()), zap.Int("pages", ps.pages))
	return nil
}

func namedLogger(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log.Named("majors")
}
