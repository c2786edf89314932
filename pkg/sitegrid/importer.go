package sitegrid

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ukaji3/sitegrid-go/internal/logger"
	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/models"
	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/parser"
	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/store"
)

// DocumentSaver persists a record list as a project's document.
// *store.Store satisfies it.
type DocumentSaver interface {
	Save(ctx context.Context, table store.Table, projectID string, records any, existingID *int64) (models.Document, error)
}

// Table returns the store table that holds documents of this kind.
func (k Kind) Table() store.Table {
	if k == KindBudget {
		return store.TableBudgets
	}
	return store.TableSchedules
}

// Result describes a completed import.
type Result struct {
	// BatchID correlates the log lines of one import.
	BatchID  string          `json:"batch_id"`
	Kind     Kind            `json:"kind"`
	Records  int             `json:"records"`
	Document models.Document `json:"document"`
}

// Importer runs the read, normalize and save pipeline.
type Importer struct {
	store DocumentSaver
}

// NewImporter returns an importer that saves through s.
func NewImporter(s DocumentSaver) *Importer {
	return &Importer{store: s}
}

// ImportSchedule imports a schedule spreadsheet for projectID.
func (im *Importer) ImportSchedule(ctx context.Context, r io.Reader, filename, projectID string, opts Options) (*Result, error) {
	return im.Import(ctx, KindSchedule, r, filename, projectID, opts)
}

// ImportBudget imports a budget spreadsheet for projectID.
func (im *Importer) ImportBudget(ctx context.Context, r io.Reader, filename, projectID string, opts Options) (*Result, error) {
	return im.Import(ctx, KindBudget, r, filename, projectID, opts)
}

// ImportFile opens path and imports it as kind.
func (im *Importer) ImportFile(ctx context.Context, kind Kind, path, projectID string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewImportError(kind, "read", err)
	}
	defer f.Close()
	return im.Import(ctx, kind, f, filepath.Base(path), projectID, opts)
}

// Import validates projectID, decodes the first worksheet of r, normalizes
// it as kind and saves the records. An upload that yields no records is
// rejected with ErrNoRecords and nothing is written.
func (im *Importer) Import(ctx context.Context, kind Kind, r io.Reader, filename, projectID string, opts Options) (*Result, error) {
	if _, err := store.ParseProjectID(projectID); err != nil {
		return nil, NewImportError(kind, "validate", err)
	}

	batch := uuid.NewString()
	fields := []interface{}{"batch", batch, "kind", kind, "project", projectID, "file", filename}
	logger.Info("Import started", fields...)

	rows, err := parser.ReadFirstSheet(r, filename)
	if err != nil {
		logger.Error("Failed to read spreadsheet", append(fields, "error", err)...)
		return nil, NewImportError(kind, "read", err)
	}
	logger.Debug("Spreadsheet decoded", append(fields, "rows", len(rows))...)

	var (
		records any
		count   int
	)
	switch kind {
	case KindSchedule:
		tasks := parser.NormalizeSchedule(rows)
		records, count = tasks, len(tasks)
	case KindBudget:
		anchor := opts.Anchor()
		if _, found := parser.DetectHeaderRow(rows, anchor); !found {
			logger.Warn("Budget anchor not found, using first row as header", append(fields, "anchor", anchor)...)
		}
		budget := parser.NormalizeBudget(rows, anchor)
		records, count = budget, len(budget)
	default:
		return nil, &UnknownKindError{Kind: string(kind)}
	}

	if count == 0 {
		logger.Warn("Spreadsheet produced no records", fields...)
		return nil, NewImportError(kind, "normalize", ErrNoRecords)
	}

	doc, err := im.store.Save(ctx, kind.Table(), projectID, records, opts.ExistingID)
	if err != nil {
		logger.Error("Failed to save document", append(fields, "error", err)...)
		return nil, NewImportError(kind, "save", err)
	}

	logger.Info("Import saved", append(fields, "records", count, "document", doc.ID)...)
	return &Result{BatchID: batch, Kind: kind, Records: count, Document: doc}, nil
}

// IsInputError reports whether err stems from the upload or the request
// rather than from persistence.
func IsInputError(err error) bool {
	var (
		kindErr *UnknownKindError
		readErr *parser.ReadError
	)
	return errors.Is(err, store.ErrInvalidProjectID) ||
		errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrNoRecords) ||
		errors.As(err, &kindErr) ||
		errors.As(err, &readErr)
}
