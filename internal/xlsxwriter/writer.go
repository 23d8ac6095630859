// =============================================================================
// EDI JSON Consolidator - XLSX Writer Module
// =============================================================================
//
// This module writes the consolidated table as a single-sheet workbook, the
// spreadsheet counterpart of the CSV output. Column order and row order are
// the table's. Cells keep their structural type:
//   - Strings are text cells
//   - Numbers are numeric cells when the literal survives a float round trip,
//     otherwise text holding the literal
//   - Booleans are boolean cells
//   - Nulls are left empty
//
// =============================================================================

package xlsxwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/edi-json-consolidator/internal/document"
	"github.com/ginjaninja78/edi-json-consolidator/internal/table"
)

// DefaultSheetName is used when Options.SheetName is empty.
const DefaultSheetName = "EDI"

// Options controls the workbook layout.
type Options struct {
	// SheetName names the only sheet. Default: "EDI".
	SheetName string

	// BoldHeader renders the header row in bold.
	BoldHeader bool
}

// Write renders snap as an XLSX workbook into w.
func Write(w io.Writer, snap *table.Snapshot, opts Options) error {
	f, err := build(snap, opts)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func build(snap *table.Snapshot, opts Options) (*excelize.File, error) {
	sheet := opts.SheetName
	if sheet == "" {
		sheet = DefaultSheetName
	}

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("invalid sheet name %q: %w", sheet, err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to open sheet writer: %w", err)
	}

	var headerOpts []excelize.RowOpts
	if opts.BoldHeader {
		styleID, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create header style: %w", err)
		}
		headerOpts = append(headerOpts, excelize.RowOpts{StyleID: styleID})
	}

	columns := snap.Columns()
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header, headerOpts...); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	cells := make([]interface{}, len(columns))
	err = snap.Each(func(r int, values []document.Value) error {
		for i, v := range values {
			cells[i] = cellValue(v)
		}
		ref, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(ref, cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
		return nil
	})
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := sw.Flush(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to flush sheet: %w", err)
	}
	return f, nil
}

// cellValue maps a table value onto the type excelize stores.
func cellValue(v document.Value) interface{} {
	switch v.Kind() {
	case document.KindNull:
		return nil
	case document.KindBool:
		return v.Truth()
	case document.KindNumber:
		lit := v.Text()
		if n, err := strconv.ParseFloat(lit, 64); err == nil && strconv.FormatFloat(n, 'f', -1, 64) == lit {
			return n
		}
		return lit
	default:
		return truncate(v.CellText())
	}
}

// truncate keeps text within the spreadsheet cell limit.
func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= excelize.TotalCellChars {
		return s
	}
	return string(runes[:excelize.TotalCellChars])
}
