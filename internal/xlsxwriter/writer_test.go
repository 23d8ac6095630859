package xlsxwriter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/edi-json-consolidator/internal/document"
	"github.com/ginjaninja78/edi-json-consolidator/internal/flatten"
	"github.com/ginjaninja78/edi-json-consolidator/internal/table"
)

func sample() *table.Snapshot {
	tbl := table.New()
	tbl.Append([]flatten.Row{
		{{Column: "amount", Value: document.Number("10")}, {Column: "name", Value: document.String("ACME")}},
		{{Column: "amount", Value: document.Number("10.50")}, {Column: "ok", Value: document.Bool(true)}},
	})
	return tbl.Snapshot()
}

func TestWrite_Workbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(), Options{BoldHeader: true}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, DefaultSheetName, f.GetSheetName(0))

	rows, err := f.GetRows(DefaultSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"amount", "name", "ok"}, rows[0])
	assert.Equal(t, []string{"10", "ACME"}, rows[1])
	assert.Equal(t, "10.50", rows[2][0])
	assert.Equal(t, "", rows[2][1])
	assert.Equal(t, "TRUE", rows[2][2])
}

func TestWrite_CustomSheet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(), Options{SheetName: "Dados"}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "Dados", f.GetSheetName(0))
}

func TestCellValue(t *testing.T) {
	assert.Nil(t, cellValue(document.Null()))
	assert.Equal(t, true, cellValue(document.Bool(true)))
	assert.Equal(t, 42.0, cellValue(document.Number("42")))
	assert.Equal(t, "1.50", cellValue(document.Number("1.50")))
	assert.Equal(t, "1e3", cellValue(document.Number("1e3")))
	assert.Equal(t, "x", cellValue(document.String("x")))
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("é", excelize.TotalCellChars+10)
	assert.Len(t, []rune(truncate(long)), excelize.TotalCellChars)
	assert.Equal(t, "short", truncate("short"))
}
