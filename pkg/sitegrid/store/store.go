// Package store persists per-project schedule and budget documents in
// Postgres or SQLite.
//
// Each table holds at most one row per project (UNIQUE(project_id)). The row
// stores the full record list as a JSON array and is replaced wholesale on
// every save. Concurrent saves for the same project resolve as last write
// wins.
package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/ukaji3/sitegrid-go/internal/logger"
	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/models"
)

// Store is a document store backed by database/sql.
type Store struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

// Open connects to the database named by driver and dsn. For SQLite the
// parent directory of dsn is created when missing.
func Open(ctx context.Context, driver Driver, dsn string) (*Store, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite {
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0700); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open(string(driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite allows a single writer.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Debug("Database connected", "driver", driver)
	return &Store{db: db, dialect: d, now: time.Now}, nil
}

// New wraps an existing connection pool.
func New(db *sql.DB, driver Driver) (*Store, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, dialect: d, now: time.Now}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the backend in use.
func (s *Store) Driver() Driver {
	return s.dialect.driver
}

// Save writes records as the document for projectID in table and returns
// the stored document.
//
// With existingID set the row with that id is updated. Otherwise a new row
// is inserted; if the project already has a row, the insert's unique
// violation is absorbed and that row is updated instead. Either way the
// project ends up with exactly one row holding records.
func (s *Store) Save(ctx context.Context, table Table, projectID string, records any, existingID *int64) (models.Document, error) {
	if !table.Valid() {
		return models.Document{}, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	pid, err := ParseProjectID(projectID)
	if err != nil {
		return models.Document{}, err
	}
	payload, err := marshalRecords(records)
	if err != nil {
		return models.Document{}, err
	}

	now := s.now().UTC()
	doc := models.Document{ProjectID: pid, Data: payload, UpdatedAt: now}

	if existingID != nil {
		if err := s.updateByID(ctx, table, *existingID, pid, payload, now); err != nil {
			return models.Document{}, err
		}
		doc.ID = *existingID
		logger.Debug("Document updated", "table", table, "project", pid, "id", doc.ID)
		return doc, nil
	}

	id, err := s.insert(ctx, table, pid, payload, now)
	if err == nil {
		doc.ID = id
		logger.Debug("Document inserted", "table", table, "project", pid, "id", id)
		return doc, nil
	}
	if !s.dialect.isUniqueViolation(err) {
		return models.Document{}, wrap("insert", table, err)
	}

	logger.Debug("Project already has a document, updating", "table", table, "project", pid)
	id, err = s.updateByProject(ctx, table, pid, payload, now)
	if err != nil {
		return models.Document{}, err
	}
	doc.ID = id
	return doc, nil
}

func (s *Store) insert(ctx context.Context, table Table, pid int64, payload []byte, now time.Time) (int64, error) {
	query := s.dialect.rebind(fmt.Sprintf(
		`INSERT INTO %s (project_id, data, updated_at) VALUES (?, ?, ?) RETURNING id`, table))

	var id int64
	err := s.db.QueryRowContext(ctx, query, pid, string(payload), s.dialect.timeArg(now)).Scan(&id)
	return id, err
}

func (s *Store) updateByID(ctx context.Context, table Table, id, pid int64, payload []byte, now time.Time) error {
	query := s.dialect.rebind(fmt.Sprintf(
		`UPDATE %s SET data = ?, updated_at = ? WHERE id = ? AND project_id = ?`, table))

	res, err := s.db.ExecContext(ctx, query, string(payload), s.dialect.timeArg(now), id, pid)
	if err != nil {
		return wrap("update", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap("update", table, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s id %d for project %d", ErrNotFound, table, id, pid)
	}
	return nil
}

func (s *Store) updateByProject(ctx context.Context, table Table, pid int64, payload []byte, now time.Time) (int64, error) {
	query := s.dialect.rebind(fmt.Sprintf(
		`UPDATE %s SET data = ?, updated_at = ? WHERE project_id = ? RETURNING id`, table))

	var id int64
	err := s.db.QueryRowContext(ctx, query, string(payload), s.dialect.timeArg(now), pid).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: %s for project %d", ErrNotFound, table, pid)
	}
	if err != nil {
		return 0, wrap("update", table, err)
	}
	return id, nil
}

// Fetch returns the most recently updated document for projectID, breaking
// timestamp ties by highest id. It returns ErrNotFound when the project has
// no document.
func (s *Store) Fetch(ctx context.Context, table Table, projectID string) (models.Document, error) {
	if !table.Valid() {
		return models.Document{}, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	pid, err := ParseProjectID(projectID)
	if err != nil {
		return models.Document{}, err
	}

	query := s.dialect.rebind(fmt.Sprintf(
		`SELECT id, project_id, data, updated_at FROM %s WHERE project_id = ? ORDER BY updated_at DESC, id DESC`, table))

	rows, err := s.db.QueryContext(ctx, query, pid)
	if err != nil {
		return models.Document{}, wrap("fetch", table, err)
	}
	defer rows.Close()

	var (
		doc   models.Document
		count int
	)
	for rows.Next() {
		count++
		if count > 1 {
			continue
		}
		var (
			data      []byte
			updatedAt string
		)
		if err := rows.Scan(&doc.ID, &doc.ProjectID, &data, &updatedAt); err != nil {
			return models.Document{}, wrap("fetch", table, err)
		}
		doc.Data = json.RawMessage(data)
		if doc.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
			return models.Document{}, wrap("fetch", table, err)
		}
	}
	if err := rows.Err(); err != nil {
		return models.Document{}, wrap("fetch", table, err)
	}

	if count == 0 {
		return models.Document{}, fmt.Errorf("%w: %s for project %d", ErrNotFound, table, pid)
	}
	if count > 1 {
		logger.Warn("Project has more than one document, using the newest", "table", table, "project", pid, "rows", count)
	}
	return doc, nil
}

// Delete removes every document for projectID and reports how many rows
// were removed.
func (s *Store) Delete(ctx context.Context, table Table, projectID string) (int64, error) {
	if !table.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}
	pid, err := ParseProjectID(projectID)
	if err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, s.dialect.rebind(fmt.Sprintf(`DELETE FROM %s WHERE project_id = ?`, table)), pid)
	if err != nil {
		return 0, wrap("delete", table, err)
	}
	return res.RowsAffected()
}

// FetchSchedule returns the stored task records for projectID.
func (s *Store) FetchSchedule(ctx context.Context, projectID string) ([]models.TaskRecord, models.Document, error) {
	return fetchRecords[models.TaskRecord](ctx, s, TableSchedules, projectID)
}

// FetchBudget returns the stored budget records for projectID.
func (s *Store) FetchBudget(ctx context.Context, projectID string) ([]models.BudgetRecord, models.Document, error) {
	return fetchRecords[models.BudgetRecord](ctx, s, TableBudgets, projectID)
}

func fetchRecords[T any](ctx context.Context, s *Store, table Table, projectID string) ([]T, models.Document, error) {
	doc, err := s.Fetch(ctx, table, projectID)
	if err != nil {
		return nil, models.Document{}, err
	}
	var records []T
	if err := json.Unmarshal(doc.Data, &records); err != nil {
		return nil, models.Document{}, wrap("decode", table, err)
	}
	return records, doc, nil
}

// marshalRecords encodes records as a JSON array. nil encodes as [].
func marshalRecords(records any) ([]byte, error) {
	var payload []byte
	switch v := records.(type) {
	case json.RawMessage:
		payload = v
	case []byte:
		payload = v
	default:
		b, err := json.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("encode records: %w", err)
		}
		payload = b
	}

	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 || bytes.Equal(payload, []byte("null")) {
		return []byte("[]"), nil
	}
	if payload[0] != '[' {
		return nil, fmt.Errorf("encode records: document data must be a JSON array")
	}
	return payload, nil
}
