// =============================================================================
// EDI JSON Consolidator - Record Flattener
// =============================================================================
//
// This module turns the record array of one parsed document into flat rows.
//
// FLATTENING RULES:
//   - Scalars become a column named by the dotted key path ("merchant.id").
//   - Nested objects are walked; an empty object contributes no column.
//   - Arrays are not exploded. They are stored as one string cell holding
//     their compact JSON text.
//   - Elements of the record array that are not objects are skipped.
//   - Every row also carries the document's metadata columns, resolved once
//     per document and identical on every row.
//
// =============================================================================

package flatten

import (
	"fmt"

	"github.com/ginjaninja78/edi-json-consolidator/internal/document"
)

// =============================================================================
// ROW STRUCTURE
// =============================================================================

// Cell is one column/value pair of a Row.
type Cell struct {
	Column string
	Value  document.Value
}

// Row is a flattened record. Cells are ordered by first appearance of their
// column while walking the record, followed by the metadata columns.
type Row []Cell

// Get returns the value stored for column, if present.
func (r Row) Get(column string) (document.Value, bool) {
	for _, c := range r {
		if c.Column == column {
			return c.Value, true
		}
	}
	return document.Value{}, false
}

// Columns returns the row's column names in order.
func (r Row) Columns() []string {
	cols := make([]string, len(r))
	for i, c := range r {
		cols[i] = c.Column
	}
	return cols
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorKind classifies a document-level flattening failure.
type ErrorKind int

const (
	// MissingRecordArray means the record key is absent or not an array.
	MissingRecordArray ErrorKind = iota + 1

	// ConflictingMetadata means a record field flattens to the same column
	// name as a metadata path.
	ConflictingMetadata
)

func (k ErrorKind) String() string {
	switch k {
	case MissingRecordArray:
		return "MissingRecordArray"
	case ConflictingMetadata:
		return "ConflictingMetadata"
	default:
		return "Unknown"
	}
}

// Error is returned by Flatten when the document cannot yield rows.
type Error struct {
	Kind ErrorKind

	// Key is the record key (MissingRecordArray) or the clashing column
	// (ConflictingMetadata).
	Key string

	// Found is the kind found under the record key when it exists but is not
	// an array.
	Found   document.Kind
	present bool
}

func (e *Error) Error() string {
	switch e.Kind {
	case MissingRecordArray:
		if e.present {
			return fmt.Sprintf("record key %q holds %s, want array", e.Key, e.Found)
		}
		return fmt.Sprintf("record key %q not found", e.Key)
	case ConflictingMetadata:
		return fmt.Sprintf("conflicting metadata name %q: a record field flattens to the same column", e.Key)
	}
	return "flatten failed"
}

// =============================================================================
// FLATTENING
// =============================================================================

// Flatten converts the array stored at recordKey into one Row per object
// element, appending the resolved metaPaths to every row.
//
// PARAMETERS:
//   - doc: The parsed document.
//   - recordKey: Top-level key holding the record array (e.g. "clientHeaders").
//   - metaPaths: Header paths copied onto every row.
//
// RETURNS:
//   - The rows, in array order.
//   - An *Error when the record array is missing or a metadata column clashes.
func Flatten(doc document.Value, recordKey string, metaPaths []document.MetaPath) ([]Row, error) {
	records, err := recordArray(doc, recordKey)
	if err != nil {
		return nil, err
	}

	meta := make(Row, 0, len(metaPaths))
	for _, p := range metaPaths {
		meta = append(meta, Cell{Column: p.Column(), Value: document.Resolve(doc, p)})
	}

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		if rec.Kind() != document.KindObject {
			continue
		}

		b := newRowBuilder(len(rec.Members()) + len(meta))
		b.walk("", rec)

		for _, m := range meta {
			if _, clash := b.index[m.Column]; clash {
				return nil, &Error{Kind: ConflictingMetadata, Key: m.Column}
			}
		}
		for _, m := range meta {
			b.set(m.Column, m.Value)
		}

		rows = append(rows, b.row)
	}

	return rows, nil
}

// Skipped counts elements of the record array that Flatten drops because they
// are not objects. It is zero when the record array is missing.
func Skipped(doc document.Value, recordKey string) int {
	records, err := recordArray(doc, recordKey)
	if err != nil {
		return 0
	}
	n := 0
	for _, rec := range records {
		if rec.Kind() != document.KindObject {
			n++
		}
	}
	return n
}

func recordArray(doc document.Value, recordKey string) ([]document.Value, error) {
	v, ok := doc.Get(recordKey)
	if !ok {
		return nil, &Error{Kind: MissingRecordArray, Key: recordKey}
	}
	if v.Kind() != document.KindArray {
		return nil, &Error{Kind: MissingRecordArray, Key: recordKey, Found: v.Kind(), present: true}
	}
	return v.Elems(), nil
}

// rowBuilder accumulates cells while keeping the first position of each column.
type rowBuilder struct {
	row   Row
	index map[string]int
}

func newRowBuilder(capacity int) *rowBuilder {
	return &rowBuilder{
		row:   make(Row, 0, capacity),
		index: make(map[string]int, capacity),
	}
}

func (b *rowBuilder) set(column string, v document.Value) {
	if i, ok := b.index[column]; ok {
		b.row[i].Value = v
		return
	}
	b.index[column] = len(b.row)
	b.row = append(b.row, Cell{Column: column, Value: v})
}

func (b *rowBuilder) walk(prefix string, obj document.Value) {
	for _, m := range obj.Members() {
		column := m.Key
		if prefix != "" {
			column = prefix + "." + m.Key
		}

		switch m.Value.Kind() {
		case document.KindObject:
			b.walk(column, m.Value)
		case document.KindArray:
			b.set(column, document.String(m.Value.JSON()))
		default:
			b.set(column, m.Value)
		}
	}
}
