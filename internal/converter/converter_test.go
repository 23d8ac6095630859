package converter

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/edi-json-consolidator/internal/document"
	"github.com/ginjaninja78/edi-json-consolidator/internal/logging"
)

var defaultMeta = []document.MetaPath{
	{"fileHeader", "processingDate"},
	{"fileHeader", "acquiringName"},
	{"fileHeader", "fileNumber"},
}

func newTestConverter(maxSize int64) *Converter {
	return New(Options{
		RecordKey:   "clientHeaders",
		MetaPaths:   defaultMeta,
		MaxFileSize: maxSize,
	}, logging.Discard())
}

func TestConverterRun_Success(t *testing.T) {
	in := BytesInput("a.json", []byte(`{
		"fileHeader": {"processingDate": "2024-01-01", "acquiringName": "ACME", "fileNumber": "1"},
		"clientHeaders": [{"amount": 10}, 7, {"amount": 11}]
	}`))

	res := newTestConverter(0).Run(context.Background(), in)
	require.Nil(t, res.Err)
	assert.Equal(t, "a.json", res.FileName)
	assert.Len(t, res.Rows, 2)
	assert.Equal(t, 1, res.Skipped)
}

func TestConverterRun_Failures(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind ErrorKind
		msg  string
	}{
		{"malformed", `{"clientHeaders": [`, KindParse, "parse error"},
		{"not an object", `[1,2]`, KindParse, "want object"},
		{"missing records", `{"fileHeader": {}}`, KindMissingRecordArray, `record key "clientHeaders" not found`},
		{"records not array", `{"clientHeaders": "x"}`, KindMissingRecordArray, "want array"},
		{"conflict", `{"fileHeader":{"fileNumber":1},"clientHeaders":[{"fileHeader.fileNumber":2}]}`, KindConflictingMetadata, "conflicting metadata"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newTestConverter(0).Run(context.Background(), BytesInput("bad.json", []byte(tt.body)))
			require.NotNil(t, res.Err)
			assert.Empty(t, res.Rows)
			assert.Equal(t, "bad.json", res.Err.FileName)
			assert.Equal(t, tt.kind, res.Err.Kind)
			assert.Contains(t, res.Err.Message, tt.msg)
		})
	}
}

func TestConverterRun_TooLarge(t *testing.T) {
	body := []byte(`{"clientHeaders": [{"a": "` + strings.Repeat("x", 100) + `"}]}`)

	t.Run("known size", func(t *testing.T) {
		opened := false
		in := ReaderInput("big.json", int64(len(body)), func() (io.ReadCloser, error) {
			opened = true
			return io.NopCloser(strings.NewReader(string(body))), nil
		})
		res := newTestConverter(64).Run(context.Background(), in)
		require.NotNil(t, res.Err)
		assert.Equal(t, KindTooLarge, res.Err.Kind)
		assert.False(t, opened, "oversized input must not be read")
	})

	t.Run("unknown size", func(t *testing.T) {
		in := ReaderInput("big.json", -1, func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(string(body))), nil
		})
		res := newTestConverter(64).Run(context.Background(), in)
		require.NotNil(t, res.Err)
		assert.Equal(t, KindTooLarge, res.Err.Kind)
	})
}

func TestConverterRun_OpenError(t *testing.T) {
	in := ReaderInput("gone.json", -1, func() (io.ReadCloser, error) {
		return nil, errors.New("boom")
	})
	res := newTestConverter(0).Run(context.Background(), in)
	require.NotNil(t, res.Err)
	assert.Equal(t, KindRead, res.Err.Kind)
	assert.Contains(t, res.Err.Message, "boom")
}

func TestConverterRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newTestConverter(0).Run(ctx, BytesInput("a.json", []byte(`{"clientHeaders":[]}`)))
	require.NotNil(t, res.Err)
	assert.Contains(t, res.Err.Message, "operation cancelled")
}

func TestFileInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "edi.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"clientHeaders":[{"a":1}]}`), 0o644))

	in := FileInput(path)
	assert.Equal(t, "edi.json", in.Name)
	assert.Equal(t, path, in.Path)
	assert.EqualValues(t, 27, in.Size)

	res := newTestConverter(0).Run(context.Background(), in)
	require.Nil(t, res.Err)
	assert.Len(t, res.Rows, 1)

	missing := FileInput(filepath.Join(dir, "missing.json"))
	assert.EqualValues(t, -1, missing.Size)
	res = newTestConverter(0).Run(context.Background(), missing)
	require.NotNil(t, res.Err)
	assert.Equal(t, KindRead, res.Err.Kind)
}
