package majors

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"
)

// TeamStats renders one image per tournament.
type TeamStats struct {
	*Stats
}

// NewTeamStats loads team statistics and its stylesheet.
func NewTeamStats(statsPath, cssPath string, enc encoding.Encoding, opts Options, painter Painter, log *zap.Logger) (*TeamStats, error) {
	log = namedLogger(log).With(zap.String("stats", "team"))
	s, err := loadStats(statsPath, cssPath, enc, opts, painter, log)
	if err != nil {
		return nil, err
	}
	return &TeamStats{Stats: s}, nil
}

// ExportOne writes team stats of tournament id into dir, replacing existing
// image.
func (ts *TeamStats) ExportOne(ctx context.Context, id int64, idx *Tournaments, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows, title, err := ts.subset(id, idx)
	if err != nil {
		return err
	}
	name, err := ts.opts.Names.Team(NameValues{ID: id, Event: title})
	if err != nil {
		return err
	}
	view := ts.style(rows, title).SetTableStyles(ts.styles)
	path, err := ts.export(view, dir, name)
	if err != nil {
		return err
	}
	ts.log.Info("Team stats exported", zap.Int64("id", id), zap.String("event", title), zap.Int("rows", rows.Len()), zap.String("path", path))
	return nil
}
