package flatten

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/edi-json-consolidator/internal/document"
)

var metaPaths = []document.MetaPath{
	{"fileHeader", "processingDate"},
	{"fileHeader", "acquiringName"},
	{"fileHeader", "fileNumber"},
}

func mustParse(t *testing.T, s string) document.Value {
	t.Helper()
	doc, err := document.Parse([]byte(s))
	require.NoError(t, err)
	return doc
}

func TestFlatten_NestedRecords(t *testing.T) {
	doc := mustParse(t, `{
		"fileHeader": {"processingDate": "2024-01-01", "acquiringName": "ACME", "fileNumber": "1"},
		"clientHeaders": [
			{"amount": 10, "merchant": {"id": "M1", "address": {"city": "SP"}}},
			{"amount": 20.5, "merchant": {"id": "M2"}, "active": false}
		]
	}`)

	rows, err := Flatten(doc, "clientHeaders", metaPaths)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{
		"amount", "merchant.id", "merchant.address.city",
		"fileHeader.processingDate", "fileHeader.acquiringName", "fileHeader.fileNumber",
	}, rows[0].Columns())

	assert.Equal(t, []string{
		"amount", "merchant.id", "active",
		"fileHeader.processingDate", "fileHeader.acquiringName", "fileHeader.fileNumber",
	}, rows[1].Columns())

	amount, _ := rows[1].Get("amount")
	assert.Equal(t, document.KindNumber, amount.Kind())
	assert.Equal(t, "20.5", amount.Text())

	active, _ := rows[1].Get("active")
	assert.Equal(t, document.KindBool, active.Kind())
}

func TestFlatten_MetadataRepeatedOnEveryRow(t *testing.T) {
	doc := mustParse(t, `{
		"fileHeader": {"processingDate": "2024-02-02", "acquiringName": "ACME", "fileNumber": 42},
		"clientHeaders": [{"a": 1}, {"b": 2}, {"c": 3}]
	}`)

	rows, err := Flatten(doc, "clientHeaders", metaPaths)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	for _, row := range rows {
		date, ok := row.Get("fileHeader.processingDate")
		require.True(t, ok)
		assert.Equal(t, "2024-02-02", date.Text())

		num, ok := row.Get("fileHeader.fileNumber")
		require.True(t, ok)
		assert.Equal(t, document.KindNumber, num.Kind())
		assert.Equal(t, "42", num.Text())
	}
}

func TestFlatten_MissingMetadataIsNull(t *testing.T) {
	doc := mustParse(t, `{"clientHeaders": [{"a": 1}]}`)

	rows, err := Flatten(doc, "clientHeaders", metaPaths)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	for _, p := range metaPaths {
		v, ok := rows[0].Get(p.Column())
		require.True(t, ok, p.Column())
		assert.True(t, v.IsNull())
	}
}

func TestFlatten_ArraysBecomeText(t *testing.T) {
	doc := mustParse(t, `{"clientHeaders": [{"tags": ["x", "y"], "items": [{"n": 1}], "empty": []}]}`)

	rows, err := Flatten(doc, "clientHeaders", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	tags, _ := rows[0].Get("tags")
	assert.Equal(t, document.KindString, tags.Kind())
	assert.Equal(t, `["x","y"]`, tags.Text())

	items, _ := rows[0].Get("items")
	assert.Equal(t, `[{"n":1}]`, items.Text())

	empty, _ := rows[0].Get("empty")
	assert.Equal(t, "[]", empty.Text())
}

func TestFlatten_EmptyObjectAddsNoColumn(t *testing.T) {
	doc := mustParse(t, `{"clientHeaders": [{"a": 1, "extra": {}}]}`)

	rows, err := Flatten(doc, "clientHeaders", nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"a"}, rows[0].Columns())
}

func TestFlatten_SkipsNonObjectElements(t *testing.T) {
	doc := mustParse(t, `{"clientHeaders": [{"a": 1}, 5, "x", null, [1], {"a": 2}]}`)

	rows, err := Flatten(doc, "clientHeaders", nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 4, Skipped(doc, "clientHeaders"))

	second, _ := rows[1].Get("a")
	assert.Equal(t, "2", second.Text())
}

func TestFlatten_MissingRecordArray(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"absent", `{"fileHeader": {}}`, `record key "clientHeaders" not found`},
		{"object", `{"clientHeaders": {"a": 1}}`, `record key "clientHeaders" holds object, want array`},
		{"null", `{"clientHeaders": null}`, `record key "clientHeaders" holds null, want array`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := Flatten(mustParse(t, tt.doc), "clientHeaders", metaPaths)
			assert.Empty(t, rows)

			var ferr *Error
			require.ErrorAs(t, err, &ferr)
			assert.Equal(t, MissingRecordArray, ferr.Kind)
			assert.EqualError(t, err, tt.want)
		})
	}
}

func TestFlatten_EmptyRecordArray(t *testing.T) {
	rows, err := Flatten(mustParse(t, `{"clientHeaders": []}`), "clientHeaders", metaPaths)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFlatten_ConflictingMetadata(t *testing.T) {
	doc := mustParse(t, `{
		"fileHeader": {"fileNumber": "1"},
		"clientHeaders": [{"fileHeader": {"fileNumber": "2"}}]
	}`)

	_, err := Flatten(doc, "clientHeaders", metaPaths)

	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, ConflictingMetadata, ferr.Kind)
	assert.Equal(t, "fileHeader.fileNumber", ferr.Key)
}

func TestFlatten_Deterministic(t *testing.T) {
	src := `{"clientHeaders": [{"b": 1, "a": {"d": 2, "c": 3}}]}`

	first, err := Flatten(mustParse(t, src), "clientHeaders", metaPaths)
	require.NoError(t, err)
	second, err := Flatten(mustParse(t, src), "clientHeaders", metaPaths)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"b", "a.d", "a.c"}, first[0].Columns()[:3])
}
