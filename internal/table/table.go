// Package table merges flattened rows from many documents into one table with
// an order-stable union of columns.
package table

import (
	"github.com/ginjaninja78/edi-json-consolidator/internal/document"
	"github.com/ginjaninja78/edi-json-consolidator/internal/flatten"
)

// Table is an ordered set of rows over an ordered column registry. A column,
// once registered, never moves. Rows appended before a column existed read as
// null in that column.
//
// A Table is not safe for concurrent mutation; readers should use Snapshot.
type Table struct {
	columns []string
	index   map[string]int

	// rows[i] holds one value per column known when row i was appended, in
	// column order. Later columns are implicitly null.
	rows [][]document.Value
}

// New returns an empty table.
func New() *Table {
	return &Table{index: make(map[string]int)}
}

// Append adds rows in order, registering unseen columns at the end.
func (t *Table) Append(rows []flatten.Row) {
	for _, row := range rows {
		for _, cell := range row {
			if _, ok := t.index[cell.Column]; !ok {
				t.index[cell.Column] = len(t.columns)
				t.columns = append(t.columns, cell.Column)
			}
		}

		values := make([]document.Value, len(t.columns))
		for _, cell := range row {
			values[t.index[cell.Column]] = cell.Value
		}
		t.rows = append(t.rows, values)
	}
}

// Columns returns a copy of the column registry.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Cell returns the value at row r for the named column. Unknown columns and
// back-filled cells are null.
func (t *Table) Cell(r int, column string) document.Value {
	c, ok := t.index[column]
	if !ok || r < 0 || r >= len(t.rows) {
		return document.Null()
	}
	return t.at(r, c)
}

func (t *Table) at(r, c int) document.Value {
	if c >= len(t.rows[r]) {
		return document.Null()
	}
	return t.rows[r][c]
}

// Snapshot returns an immutable, fully padded copy of the table.
func (t *Table) Snapshot() *Snapshot {
	s := &Snapshot{
		columns: t.Columns(),
		rows:    make([][]document.Value, len(t.rows)),
	}
	for r := range t.rows {
		padded := make([]document.Value, len(t.columns))
		copy(padded, t.rows[r])
		s.rows[r] = padded
	}
	return s
}

// Snapshot is a read-only view of a Table. It is safe for concurrent use.
type Snapshot struct {
	columns []string
	rows    [][]document.Value
}

// Columns returns the column names in registry order.
func (s *Snapshot) Columns() []string {
	return append([]string(nil), s.columns...)
}

// Len returns the number of rows.
func (s *Snapshot) Len() int { return len(s.rows) }

// Row returns a copy of row r with one value per column.
func (s *Snapshot) Row(r int) []document.Value {
	return append([]document.Value(nil), s.rows[r]...)
}

// Each calls fn for every row in order. The slice passed to fn must not be
// retained or modified.
func (s *Snapshot) Each(fn func(r int, values []document.Value) error) error {
	for r, values := range s.rows {
		if err := fn(r, values); err != nil {
			return err
		}
	}
	return nil
}
