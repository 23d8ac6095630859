package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/edi-json-consolidator/internal/document"
	"github.com/ginjaninja78/edi-json-consolidator/internal/flatten"
)

func row(pairs ...any) flatten.Row {
	var r flatten.Row
	for i := 0; i < len(pairs); i += 2 {
		r = append(r, flatten.Cell{Column: pairs[i].(string), Value: pairs[i+1].(document.Value)})
	}
	return r
}

func TestAppend_UnionInFirstSeenOrder(t *testing.T) {
	tbl := New()
	tbl.Append([]flatten.Row{row("a", document.Number("1"), "b", document.String("x"))})
	tbl.Append([]flatten.Row{
		row("b", document.String("y"), "c", document.Bool(true)),
		row("d", document.Null(), "a", document.Number("2")),
	})

	assert.Equal(t, []string{"a", "b", "c", "d"}, tbl.Columns())
	assert.Equal(t, 3, tbl.Len())

	assert.True(t, tbl.Cell(0, "c").IsNull(), "back-filled")
	assert.True(t, tbl.Cell(0, "d").IsNull(), "back-filled")
	assert.True(t, tbl.Cell(1, "a").IsNull(), "missing in row")
	assert.Equal(t, "y", tbl.Cell(1, "b").Text())
	assert.Equal(t, "2", tbl.Cell(2, "a").Text())
	assert.True(t, tbl.Cell(2, "unknown").IsNull())
	assert.True(t, tbl.Cell(9, "a").IsNull())
}

func TestAppend_ColumnsAreMonotonic(t *testing.T) {
	tbl := New()
	batches := [][]flatten.Row{
		{row("x", document.Null())},
		{},
		{row("y", document.Null(), "x", document.Null())},
		{row("z", document.Null())},
	}

	prev := tbl.Columns()
	for _, batch := range batches {
		tbl.Append(batch)
		cur := tbl.Columns()
		require.GreaterOrEqual(t, len(cur), len(prev))
		assert.Equal(t, prev, cur[:len(prev)], "existing columns must keep their position")
		prev = cur
	}
	assert.Equal(t, []string{"x", "y", "z"}, prev)
}

func TestAppend_OrderOfFilesDrivesRowOrder(t *testing.T) {
	a := []flatten.Row{row("k", document.String("a1")), row("k", document.String("a2"))}
	b := []flatten.Row{row("k", document.String("b1"))}

	ab := New()
	ab.Append(a)
	ab.Append(b)

	ba := New()
	ba.Append(b)
	ba.Append(a)

	texts := func(tbl *Table) []string {
		var out []string
		for r := 0; r < tbl.Len(); r++ {
			out = append(out, tbl.Cell(r, "k").Text())
		}
		return out
	}

	assert.Equal(t, []string{"a1", "a2", "b1"}, texts(ab))
	assert.Equal(t, []string{"b1", "a1", "a2"}, texts(ba))
	assert.ElementsMatch(t, texts(ab), texts(ba))
}

func TestSnapshot_IsPaddedAndIndependent(t *testing.T) {
	tbl := New()
	tbl.Append([]flatten.Row{row("a", document.Number("1"))})
	tbl.Append([]flatten.Row{row("b", document.Number("2"))})

	snap := tbl.Snapshot()
	tbl.Append([]flatten.Row{row("c", document.Number("3"))})

	assert.Equal(t, []string{"a", "b"}, snap.Columns())
	assert.Equal(t, 2, snap.Len())
	require.Len(t, snap.Row(0), 2)
	assert.True(t, snap.Row(0)[1].IsNull())

	var seen int
	require.NoError(t, snap.Each(func(r int, values []document.Value) error {
		assert.Len(t, values, 2)
		seen++
		return nil
	}))
	assert.Equal(t, 2, seen)
}

func TestNew_Empty(t *testing.T) {
	tbl := New()
	assert.Empty(t, tbl.Columns())
	assert.Zero(t, tbl.Len())
	assert.Zero(t, tbl.Snapshot().Len())
}
