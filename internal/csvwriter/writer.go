// =============================================================================
// EDI JSON Consolidator - CSV Writer Module
// =============================================================================
//
// This module renders a consolidated table as delimited text for spreadsheet
// tools. Output is deterministic for a given table:
//   - A UTF-8 byte-order mark (so spreadsheet tools detect the encoding)
//   - A header line with the table's columns, in registry order
//   - One line per row; null cells are empty fields
//   - Fields holding the delimiter, a quote or a line break are quoted,
//     with inner quotes doubled
//
// =============================================================================

package csvwriter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/ginjaninja78/edi-json-consolidator/internal/document"
	"github.com/ginjaninja78/edi-json-consolidator/internal/table"
)

// BOM is the UTF-8 byte-order mark written before the header line.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// DefaultDelimiter separates fields unless Options says otherwise.
const DefaultDelimiter = ';'

// =============================================================================
// OPTIONS
// =============================================================================

// Options controls the text layout.
type Options struct {
	// Delimiter is the field separator. Accepts a single character or one of
	// the names "semicolon", "comma", "tab", "pipe". Default: ";".
	Delimiter string

	// OmitBOM disables the byte-order mark.
	OmitBOM bool

	// UseCRLF terminates lines with \r\n instead of \n.
	UseCRLF bool
}

// DefaultOptions returns semicolon-delimited, BOM-prefixed output.
func DefaultOptions() Options {
	return Options{Delimiter: ";"}
}

// ParseDelimiter resolves a delimiter setting to a rune.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "", ";", "semicolon":
		return DefaultDelimiter, nil
	case ",", "comma":
		return ',', nil
	case "\\t", "\t", "tab", "TAB":
		return '\t', nil
	case "|", "pipe", "PIPE":
		return '|', nil
	}

	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) {
		return 0, fmt.Errorf("delimiter %q must be a single character", s)
	}
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}

// =============================================================================
// SERIALIZATION
// =============================================================================

// Serialize renders snap with the default options.
func Serialize(snap *table.Snapshot) ([]byte, error) {
	return SerializeWithOptions(snap, DefaultOptions())
}

// SerializeWithOptions renders snap to a byte buffer.
func SerializeWithOptions(snap *table.Snapshot, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, snap, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write streams snap to w.
//
// PARAMETERS:
//   - w: Destination of the CSV text.
//   - snap: The consolidated table.
//   - opts: Layout options.
//
// RETURNS:
//   - An error if the delimiter is invalid or writing fails.
func Write(w io.Writer, snap *table.Snapshot, opts Options) error {
	comma, err := ParseDelimiter(opts.Delimiter)
	if err != nil {
		return err
	}

	if !opts.OmitBOM {
		if _, err := w.Write(BOM); err != nil {
			return fmt.Errorf("failed to write byte-order mark: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	cw.Comma = comma
	cw.UseCRLF = opts.UseCRLF

	if err := cw.Write(snap.Columns()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	record := make([]string, len(snap.Columns()))
	err = snap.Each(func(r int, values []document.Value) error {
		for i, v := range values {
			record[i] = v.CellText()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}
