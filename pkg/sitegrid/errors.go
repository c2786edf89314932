package sitegrid

import (
	"errors"
	"fmt"

	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/parser"
)

// ErrInvalidFormat indicates the upload is not a readable spreadsheet.
var ErrInvalidFormat = parser.ErrInvalidFormat

// ErrNoRecords indicates the upload normalized to zero records. Nothing is
// saved in that case so an empty upload cannot wipe a stored document.
var ErrNoRecords = errors.New("no records found in spreadsheet")

// ImportError represents a failure at one stage of an import.
type ImportError struct {
	Kind  Kind
	Stage string // "read", "normalize", "save"
	Err   error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import %s failed at %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// NewImportError creates a new ImportError.
func NewImportError(kind Kind, stage string, err error) *ImportError {
	return &ImportError{
		Kind:  kind,
		Stage: stage,
		Err:   err,
	}
}

// UnknownKindError is returned for import kinds other than schedule and budget.
type UnknownKindError struct {
	Kind string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown import kind %q (expected schedule or budget)", e.Kind)
}
