package converter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/edi-json-consolidator/internal/table"
)

// FileStat summarises one input of a run.
type FileStat struct {
	Name     string        `yaml:"name"`
	Path     string        `yaml:"path,omitempty"`
	Rows     int           `yaml:"rows"`
	Skipped  int           `yaml:"skipped_records,omitempty"`
	Duration time.Duration `yaml:"duration"`
	Failed   bool          `yaml:"failed"`
}

// RunResult is the outcome of a consolidation run.
type RunResult struct {
	// RunID identifies the run in logs and output names.
	RunID string

	// Table is the consolidated table; read-only.
	Table *table.Snapshot

	// Errors lists failed inputs in input order.
	Errors []ProcessingError

	// Files has one entry per input, in input order.
	Files []FileStat

	StartTime time.Time
	EndTime   time.Time
}

// Processed counts inputs that contributed (possibly zero) rows.
func (r *RunResult) Processed() int {
	return len(r.Files) - len(r.Errors)
}

// TotalRows is the number of rows in the table.
func (r *RunResult) TotalRows() int {
	return r.Table.Len()
}

// Summary is a one-line description for the operator.
func (r *RunResult) Summary() string {
	return fmt.Sprintf("%d file(s) processed, %d record(s) found, %d file(s) failed",
		r.Processed(), r.TotalRows(), len(r.Errors))
}

// Consolidator runs the per-file pipeline over many inputs with bounded
// parallelism and merges the results in input order.
type Consolidator struct {
	conv        *Converter
	concurrency int
	logger      *slog.Logger
}

// NewConsolidator creates a Consolidator running at most concurrency files at
// once. Values below one mean sequential processing.
func NewConsolidator(conv *Converter, concurrency int, logger *slog.Logger) *Consolidator {
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Consolidator{conv: conv, concurrency: concurrency, logger: logger}
}

// Run consolidates inputs into one table. Per-file failures are reported in
// RunResult.Errors; the returned error is non-nil only when ctx ends first.
func (c *Consolidator) Run(ctx context.Context, inputs []Input) (*RunResult, error) {
	run := &RunResult{
		RunID:     uuid.NewString(),
		Files:     make([]FileStat, len(inputs)),
		StartTime: time.Now(),
	}
	logger := c.logger.With("run_id", run.RunID)
	logger.Info("consolidation started", "files", len(inputs), "concurrency", c.concurrency)

	results := make(chan Result, c.concurrency)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	var waitErr error
	go func() {
		defer close(results)
		for i := range inputs {
			if gctx.Err() != nil {
				break
			}
			in := inputs[i]
			g.Go(func() error {
				res := c.conv.Run(gctx, in)
				res.Index = i
				select {
				case results <- res:
					return nil
				case <-gctx.Done():
					return gctx.Err()
				}
			})
		}
		waitErr = g.Wait()
	}()

	// Results are applied strictly in input order; early completions wait in
	// pending until every lower index has been applied.
	tbl := table.New()
	pending := make(map[int]Result)
	next := 0
	for res := range results {
		pending[res.Index] = res
		for {
			r, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			c.apply(logger, run, tbl, inputs[next], r)
			next++
		}
	}

	if waitErr == nil {
		waitErr = ctx.Err()
	}
	if waitErr != nil {
		logger.Warn("consolidation interrupted", "applied", next, "error", waitErr)
		return nil, fmt.Errorf("consolidation interrupted: %w", waitErr)
	}

	run.Table = tbl.Snapshot()
	run.EndTime = time.Now()
	logger.Info("consolidation complete",
		"processed", run.Processed(),
		"failed", len(run.Errors),
		"rows", run.TotalRows(),
		"columns", len(run.Table.Columns()),
		"elapsed", run.EndTime.Sub(run.StartTime))
	return run, nil
}

// apply is the single point where shared run state is mutated.
func (c *Consolidator) apply(logger *slog.Logger, run *RunResult, tbl *table.Table, in Input, res Result) {
	stat := FileStat{
		Name:     res.FileName,
		Path:     in.Path,
		Rows:     len(res.Rows),
		Skipped:  res.Skipped,
		Duration: res.Duration,
	}

	if res.Err != nil {
		stat.Failed = true
		run.Errors = append(run.Errors, *res.Err)
		logger.Warn("file failed", "file", res.FileName, "index", res.Index, "kind", res.Err.Kind, "error", res.Err.Message)
	} else {
		tbl.Append(res.Rows)
		logger.Info("file processed", "file", res.FileName, "index", res.Index, "rows", len(res.Rows))
	}

	run.Files[res.Index] = stat
}
