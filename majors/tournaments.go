package majors

import (
	"errors"
	"fmt"

	"golang.org/x/text/encoding"

	"statsnap/table"
)

// ErrUnknownTournament is returned when identifier is not present in the index.
var ErrUnknownTournament = errors.New("unknown tournament")

// ColumnEvent holds tournament display name in the index.
const ColumnEvent = "Event"

// Tournament is single index entry.
type Tournament struct {
	ID   int64
	Name string
}

// Tournaments is ordered, read-only index of tournaments keyed by identifier.
type Tournaments struct {
	list  []Tournament
	names map[int64]string
}

// NewTournaments builds index from a table whose first column is the
// identifier and which has "Event" column with display names.
func NewTournaments(t *table.Table) (*Tournaments, error) {
	cols := t.Columns()
	if len(cols) == 0 {
		return nil, errors.New("tournament index has no columns")
	}
	event, ok := t.ColumnIndex(ColumnEvent)
	if !ok {
		return nil, fmt.Errorf("tournament index: %w: %q", table.ErrNoColumn, ColumnEvent)
	}

	idx := &Tournaments{
		list:  make([]Tournament, 0, t.Len()),
		names: make(map[int64]string, t.Len()),
	}
	for i := range t.Len() {
		id, ok := t.Cell(i, 0).Int()
		if !ok {
			return nil, fmt.Errorf("tournament index row %d: %q is not an identifier", i+1, t.Cell(i, 0).String())
		}
		if _, dup := idx.names[id]; dup {
			return nil, fmt.Errorf("tournament index row %d: duplicate identifier %d", i+1, id)
		}
		name := t.Cell(i, event).String()
		idx.list = append(idx.list, Tournament{ID: id, Name: name})
		idx.names[id] = name
	}
	return idx, nil
}

// LoadTournaments reads tournament index from CSV file.
func LoadTournaments(path string, enc encoding.Encoding) (*Tournaments, error) {
	t, err := table.Load(path, enc)
	if err != nil {
		return nil, err
	}
	idx, err := NewTournaments(t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return idx, nil
}

// Len returns number of tournaments.
func (x *Tournaments) Len() int {
	return len(x.list)
}

// All returns tournaments in index order.
func (x *Tournaments) All() []Tournament {
	return append([]Tournament(nil), x.list...)
}

// IDs returns identifiers in index order.
func (x *Tournaments) IDs() []int64 {
	ids := make([]int64, len(x.list))
	for i, t := range x.list {
		ids[i] = t.ID
	}
	return ids
}

// Name returns display name for id.
func (x *Tournaments) Name(id int64) (string, error) {
	name, ok := x.names[id]
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownTournament, id)
	}
	return name, nil
}

// Select returns index restricted to ids, keeping index order. Every id must
// be known. Empty ids selects everything.
func (x *Tournaments) Select(ids []int64) (*Tournaments, error) {
	if len(ids) == 0 {
		return x, nil
	}
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if _, ok := x.names[id]; !ok {
			return nil, fmt.Errorf("%w: %d", ErrUnknownTournament, id)
		}
		want[id] = true
	}
	sel := &Tournaments{names: make(map[int64]string, len(want))}
	for _, t := range x.list {
		if want[t.ID] {
			sel.list = append(sel.list, t)
			sel.names[t.ID] = t.Name
		}
	}
	return sel, nil
}
