package csvwriter

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/edi-json-consolidator/internal/document"
	"github.com/ginjaninja78/edi-json-consolidator/internal/flatten"
	"github.com/ginjaninja78/edi-json-consolidator/internal/table"
)

func sampleTable() *table.Table {
	tbl := table.New()
	tbl.Append([]flatten.Row{
		{
			{Column: "amount", Value: document.Number("10.50")},
			{Column: "descrição", Value: document.String("pão; café")},
		},
		{
			{Column: "amount", Value: document.Number("3")},
			{Column: "note", Value: document.String("say \"hi\"\nbye")},
			{Column: "ok", Value: document.Bool(true)},
		},
	})
	return tbl
}

func TestSerialize_Layout(t *testing.T) {
	out, err := Serialize(sampleTable().Snapshot())
	require.NoError(t, err)

	require.True(t, bytes.HasPrefix(out, BOM))
	body := string(out[len(BOM):])

	want := "amount;descrição;note;ok\n" +
		"10.50;\"pão; café\";;\n" +
		"3;;\"say \"\"hi\"\"\nbye\";true\n"
	assert.Equal(t, want, body)
}

func TestSerialize_RoundTrip(t *testing.T) {
	snap := sampleTable().Snapshot()
	out, err := Serialize(snap)
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(out[len(BOM):]))
	r.Comma = ';'
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, snap.Len()+1)

	header := records[0]
	assert.Equal(t, snap.Columns(), header)

	for i, rec := range records[1:] {
		values := snap.Row(i)
		for c := range header {
			assert.Equal(t, values[c].CellText(), rec[c], "row %d column %s", i, header[c])
		}
	}
}

func TestSerialize_EmptyTable(t *testing.T) {
	out, err := Serialize(table.New().Snapshot())
	require.NoError(t, err)
	assert.Equal(t, append(append([]byte{}, BOM...), '\n'), out)
}

func TestSerializeWithOptions(t *testing.T) {
	tbl := table.New()
	tbl.Append([]flatten.Row{{{Column: "a", Value: document.String("x,y")}, {Column: "b", Value: document.Null()}}})

	out, err := SerializeWithOptions(tbl.Snapshot(), Options{Delimiter: "comma", OmitBOM: true, UseCRLF: true})
	require.NoError(t, err)
	assert.Equal(t, "a,b\r\n\"x,y\",\r\n", string(out))
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{"", ';', false},
		{";", ';', false},
		{"semicolon", ';', false},
		{"comma", ',', false},
		{"tab", '\t', false},
		{"\\t", '\t', false},
		{"pipe", '|', false},
		{"#", '#', false},
		{"\"", 0, true},
		{"\n", 0, true},
		{"ab", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDelimiter(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
