package converter

import (
	"errors"
	"fmt"

	"github.com/ginjaninja78/edi-json-consolidator/internal/document"
	"github.com/ginjaninja78/edi-json-consolidator/internal/flatten"
)

// ErrFileTooLarge is returned for inputs above the configured size limit.
var ErrFileTooLarge = errors.New("file exceeds the maximum size")

// ErrorKind classifies a ProcessingError.
type ErrorKind string

const (
	KindRead                ErrorKind = "read"
	KindTooLarge            ErrorKind = "too_large"
	KindParse               ErrorKind = "parse"
	KindMissingRecordArray  ErrorKind = "missing_record_array"
	KindConflictingMetadata ErrorKind = "conflicting_metadata"
)

// ProcessingError reports a file that contributed no rows. It never aborts a
// run.
type ProcessingError struct {
	FileName string    `json:"file_name" yaml:"file_name"`
	Message  string    `json:"message" yaml:"message"`
	Kind     ErrorKind `json:"kind" yaml:"kind"`
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %s", e.FileName, e.Message)
}

// classify converts a per-file failure into a ProcessingError.
func classify(fileName string, err error) *ProcessingError {
	pe := &ProcessingError{FileName: fileName, Message: err.Error(), Kind: KindRead}

	var (
		parseErr   *document.ParseError
		flattenErr *flatten.Error
	)
	switch {
	case errors.Is(err, ErrFileTooLarge):
		pe.Kind = KindTooLarge
	case errors.As(err, &parseErr):
		pe.Kind = KindParse
	case errors.As(err, &flattenErr):
		switch flattenErr.Kind {
		case flatten.ConflictingMetadata:
			pe.Kind = KindConflictingMetadata
		default:
			pe.Kind = KindMissingRecordArray
		}
	}
	return pe
}
