package web

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/ginjaninja78/edi-json-consolidator/internal/converter"
	"github.com/ginjaninja78/edi-json-consolidator/internal/csvwriter"
)

// multipartMemory is how much of a form is held in memory; the rest spills
// to temporary files.
const multipartMemory = 32 << 20

// ConsolidateResponse is the body of POST /api/consolidate?format=json.
type ConsolidateResponse struct {
	RunID   string                      `json:"run_id"`
	Summary string                      `json:"summary"`
	Columns []string                    `json:"columns"`
	Rows    [][]json.RawMessage         `json:"rows"`
	Errors  []converter.ProcessingError `json:"errors"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleConsolidate consolidates every part named "files" in upload order.
func (s *Server) handleConsolidate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "file too large or invalid form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		s.writeError(w, r, http.StatusBadRequest, "no files uploaded")
		return
	}

	inputs := make([]converter.Input, len(headers))
	for i, h := range headers {
		inputs[i] = uploadInput(h)
	}

	run, err := s.consolidator.Run(r.Context(), inputs)
	if err != nil {
		s.writeError(w, r, http.StatusServiceUnavailable, err.Error())
		return
	}

	w.Header().Set("X-Run-ID", run.RunID)
	w.Header().Set("X-Processing-Errors", strconv.Itoa(len(run.Errors)))

	if r.URL.Query().Get("format") == "json" {
		s.writeJSON(w, http.StatusOK, buildResponse(run))
		return
	}

	data, err := csvwriter.SerializeWithOptions(run.Table, s.opts.CSV)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "failed to serialize table")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.opts.DownloadName))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("failed to send csv", "run_id", run.RunID, "error", err)
	}
}

func uploadInput(h *multipart.FileHeader) converter.Input {
	return converter.ReaderInput(h.Filename, h.Size, func() (io.ReadCloser, error) {
		f, err := h.Open()
		if err != nil {
			return nil, err
		}
		return f, nil
	})
}

func buildResponse(run *converter.RunResult) ConsolidateResponse {
	resp := ConsolidateResponse{
		RunID:   run.RunID,
		Summary: run.Summary(),
		Columns: run.Table.Columns(),
		Rows:    make([][]json.RawMessage, 0, run.Table.Len()),
		Errors:  run.Errors,
	}
	if resp.Errors == nil {
		resp.Errors = []converter.ProcessingError{}
	}

	for r := 0; r < run.Table.Len(); r++ {
		values := run.Table.Row(r)
		row := make([]json.RawMessage, len(values))
		for i, v := range values {
			row[i] = json.RawMessage(v.JSON())
		}
		resp.Rows = append(resp.Rows, row)
	}
	return resp
}
