// =============================================================================
// EDI JSON Consolidator - Converter Module
// =============================================================================
//
// This module contains the per-file pipeline. For one input it:
//   1. Reads the bytes (rejecting inputs above the size limit)
//   2. Parses the document
//   3. Flattens the record array, projecting the header metadata
//
// Any failure is captured in Result.Err as a ProcessingError; Run never
// returns an error of its own so one bad file cannot stop a run.
//
// CONCURRENCY:
//   A Converter holds no mutable state and may be shared by many workers.
//
// =============================================================================

package converter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ginjaninja78/edi-json-consolidator/internal/document"
	"github.com/ginjaninja78/edi-json-consolidator/internal/flatten"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result is the outcome of processing a single input.
type Result struct {
	// Index is the input's position in the run.
	Index int

	// FileName is the input's name.
	FileName string

	// Rows are the flattened records, in array order.
	Rows []flatten.Row

	// Skipped counts record array elements dropped for not being objects.
	Skipped int

	// Err is set when the input contributed no rows because it failed.
	Err *ProcessingError

	// Duration is the time spent on this input.
	Duration time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Options configures a Converter.
type Options struct {
	// RecordKey is the top-level key holding the record array.
	RecordKey string

	// MetaPaths are the header paths repeated on every row.
	MetaPaths []document.MetaPath

	// MaxFileSize rejects larger inputs. Zero disables the limit.
	MaxFileSize int64
}

// Converter runs the per-file pipeline.
type Converter struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Converter. A nil logger uses slog.Default().
func New(opts Options, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{opts: opts, logger: logger}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run processes one input.
func (c *Converter) Run(ctx context.Context, in Input) Result {
	start := time.Now()
	result := Result{FileName: in.Name}

	fail := func(err error) Result {
		result.Err = classify(in.Name, err)
		result.Duration = time.Since(start)
		return result
	}

	if err := ctx.Err(); err != nil {
		return fail(fmt.Errorf("operation cancelled: %w", err))
	}

	// =========================================================================
	// STEP 1: READ
	// =========================================================================

	data, err := c.read(in)
	if err != nil {
		return fail(err)
	}

	// =========================================================================
	// STEP 2: PARSE
	// =========================================================================

	doc, err := document.Parse(data)
	if err != nil {
		return fail(err)
	}

	// =========================================================================
	// STEP 3: FLATTEN
	// =========================================================================

	rows, err := flatten.Flatten(doc, c.opts.RecordKey, c.opts.MetaPaths)
	if err != nil {
		return fail(err)
	}

	result.Rows = rows
	result.Skipped = flatten.Skipped(doc, c.opts.RecordKey)
	result.Duration = time.Since(start)

	if result.Skipped > 0 {
		c.logger.Debug("dropped non-object records", "file", in.Name, "skipped", result.Skipped)
	}
	return result
}

// read loads the input, failing fast when it is over the size limit.
func (c *Converter) read(in Input) ([]byte, error) {
	limit := c.opts.MaxFileSize
	if limit > 0 && in.Size > limit {
		return nil, fmt.Errorf("%w (%d bytes, limit %d)", ErrFileTooLarge, in.Size, limit)
	}

	rc, err := in.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if limit > 0 {
		r = io.LimitReader(rc, limit+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (limit %d bytes)", ErrFileTooLarge, limit)
	}
	return data, nil
}
