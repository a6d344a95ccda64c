package export

import (
	"context"
	"fmt"
	"io"
	"slices"
	"text/tabwriter"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"statsnap/majors"
	"statsnap/state"
	"statsnap/table"
)

// List prints tournament index with number of player and team rows per
// tournament.
func List(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("list")
	env.CodePage = resolveEncoding(env.Cfg.Input.Encoding, log)

	idx, err := majors.LoadTournaments(env.Cfg.Input.Tournaments, env.CodePage)
	if err != nil {
		return fmt.Errorf("unable to load tournaments: %w", err)
	}
	players := countRows(env.Cfg.Input.PlayerStats, env.CodePage, log)
	teams := countRows(env.Cfg.Input.TeamStats, env.CodePage, log)

	return writeList(cmd.Root().Writer, idx, players, teams, cmd.Bool("by-name"))
}

// countRows returns rows per tournament identifier, unreadable tables are
// reported and counted as empty.
func countRows(path string, enc encoding.Encoding, log *zap.Logger) map[int64]int {
	counts := make(map[int64]int)
	t, err := table.Load(path, enc)
	if err != nil {
		log.Warn("Unable to count rows", zap.String("table", path), zap.Error(err))
		return counts
	}
	col, ok := t.ColumnIndex(majors.ColumnEventID)
	if !ok {
		log.Warn("Unable to count rows", zap.String("table", path), zap.Error(fmt.Errorf("%w: %q", table.ErrNoColumn, majors.ColumnEventID)))
		return counts
	}
	for i := range t.Len() {
		if id, ok := t.Cell(i, col).Int(); ok {
			counts[id]++
		}
	}
	return counts
}

func writeList(w io.Writer, idx *majors.Tournaments, players, teams map[int64]int, byName bool) error {
	list := idx.All()
	if byName {
		slices.SortStableFunc(list, func(a, b majors.Tournament) int {
			switch {
			case natural.Less(a.Name, b.Name):
				return -1
			case natural.Less(b.Name, a.Name):
				return 1
			}
			return 0
		})
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEVENT\tPLAYERS\tTEAMS")
	for _, t := range list {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\n", t.ID, t.Name, players[t.ID], teams[t.ID])
	}
	return tw.Flush()
}
