package converter

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// Input is one named document to consolidate.
type Input struct {
	// Name identifies the input in errors and logs, usually the file name.
	Name string

	// Path is the source file on disk, if any. Used for archival.
	Path string

	// Size is the byte size when known up front, or -1.
	Size int64

	open func() (io.ReadCloser, error)
}

// Open returns a reader over the input's bytes.
func (in Input) Open() (io.ReadCloser, error) {
	return in.open()
}

// BytesInput wraps an in-memory buffer.
func BytesInput(name string, data []byte) Input {
	return Input{
		Name: name,
		Size: int64(len(data)),
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// ReaderInput wraps a reader supplied by a caller such as a multipart upload.
// The opener is called once per run.
func ReaderInput(name string, size int64, open func() (io.ReadCloser, error)) Input {
	return Input{Name: name, Size: size, open: open}
}

// FileInput reads a file from disk. The size is taken lazily from Stat so a
// missing file surfaces as a per-file error rather than here.
func FileInput(path string) Input {
	in := Input{
		Name: filepath.Base(path),
		Path: path,
		Size: -1,
		open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
	if info, err := os.Stat(path); err == nil {
		in.Size = info.Size()
	}
	return in
}
