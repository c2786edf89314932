package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	s, err := Open(ctx, DriverSQLite, filepath.Join(t.TempDir(), "data", "sitegrid.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.CreateSchema(ctx))

	// Deterministic, strictly increasing clock.
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return s
}

func countRows(t *testing.T, s *Store, table Table, pid int64) int {
	t.Helper()
	var n int
	err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE project_id = ?", table), pid).Scan(&n)
	require.NoError(t, err)
	return n
}

func sampleTasks() []models.TaskRecord {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)
	return []models.TaskRecord{
		{ID: "t-0", Name: "Excavation", Start: &start, End: &end, Progress: 40},
		{ID: "t-1", Name: "Footings", Dependencies: "t-0"},
	}
}

func TestSaveAndFetchRoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	saved, err := s.Save(ctx, TableSchedules, "42", sampleTasks(), nil)
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.Equal(t, int64(42), saved.ProjectID)

	tasks, doc, err := s.FetchSchedule(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, doc.ID)
	assert.True(t, saved.UpdatedAt.Equal(doc.UpdatedAt))
	require.Len(t, tasks, 2)
	assert.Equal(t, "Excavation", tasks[0].Name)
	assert.Equal(t, 40, tasks[0].Progress)
	assert.Equal(t, "2026-03-13", tasks[0].End.Format("2006-01-02"))
	assert.Nil(t, tasks[1].Start)
	assert.Equal(t, "t-0", tasks[1].Dependencies)
}

func TestSaveTwiceKeepsOneRow(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first, err := s.Save(ctx, TableSchedules, "7", sampleTasks(), nil)
	require.NoError(t, err)

	// Second save without an id hits the unique constraint and falls back
	// to an update of the existing row.
	second, err := s.Save(ctx, TableSchedules, "7", sampleTasks()[:1], nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, countRows(t, s, TableSchedules, 7))

	tasks, _, err := s.FetchSchedule(ctx, "7")
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestSaveWithExistingID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first, err := s.Save(ctx, TableSchedules, "7", sampleTasks(), nil)
	require.NoError(t, err)

	id := first.ID
	updated, err := s.Save(ctx, TableSchedules, "7", []models.TaskRecord{}, &id)
	require.NoError(t, err)
	assert.Equal(t, id, updated.ID)
	assert.True(t, updated.UpdatedAt.After(first.UpdatedAt))

	doc, err := s.Fetch(ctx, TableSchedules, "7")
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(doc.Data))

	// An id belonging to another project is not touched.
	_, err = s.Save(ctx, TableSchedules, "8", sampleTasks(), &id)
	assert.ErrorIs(t, err, ErrNotFound)

	missing := int64(999)
	_, err = s.Save(ctx, TableSchedules, "7", sampleTasks(), &missing)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvalidProjectID(t *testing.T) {
	// A closed pool proves validation happens before any database call.
	s := setupTestStore(t)
	require.NoError(t, s.db.Close())
	ctx := context.Background()

	for _, id := range []string{"", "abc", "0", "-3", "1.5"} {
		_, err := s.Save(ctx, TableSchedules, id, sampleTasks(), nil)
		assert.ErrorIs(t, err, ErrInvalidProjectID, "Save(%q)", id)

		_, err = s.Fetch(ctx, TableBudgets, id)
		assert.ErrorIs(t, err, ErrInvalidProjectID, "Fetch(%q)", id)
	}
}

func TestFetchNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Fetch(context.Background(), TableBudgets, "5")
	assert.ErrorIs(t, err, ErrNotFound)

	var storeErr *StoreError
	assert.False(t, errors.As(err, &storeErr))
}

func TestUnknownTable(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, Table("users; DROP TABLE x"), "1", sampleTasks(), nil)
	assert.ErrorIs(t, err, ErrUnknownTable)

	_, err = s.Fetch(ctx, Table("users"), "1")
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestFetchPrefersNewestRow(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	// Tables created before the unique constraint may hold several rows
	// per project.
	_, err := s.db.Exec(`DROP TABLE project_budgets`)
	require.NoError(t, err)
	_, err = s.db.Exec(`CREATE TABLE project_budgets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id INTEGER NOT NULL,
		data TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	require.NoError(t, err)

	insert := func(data string, at time.Time) {
		_, err := s.db.Exec(`INSERT INTO project_budgets (project_id, data, updated_at) VALUES (3, ?, ?)`,
			data, at.Format(timeLayout))
		require.NoError(t, err)
	}
	older := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)
	insert(`[{"id":"b-0","TRADER":"old"}]`, newer)
	insert(`[{"id":"b-0","TRADER":"oldest"}]`, older)
	insert(`[{"id":"b-0","TRADER":"tie"}]`, newer)

	records, doc, err := s.FetchBudget(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, int64(3), doc.ID, "tie on updated_at resolves to the highest id")
	require.Len(t, records, 1)
	assert.Equal(t, "tie", records[0].Get("TRADER").String())
}

func TestSaveBudgetKeepsColumnOrder(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	records := []models.BudgetRecord{{
		ID:      "b-0",
		Columns: []string{"TRADER", "AMOUNT", "NOTES"},
		Fields: map[string]models.Value{
			"TRADER": models.StringValue("Acme Concrete"),
			"AMOUNT": models.NumberValue(1200),
			"NOTES":  models.StringValue(models.BudgetPlaceholder),
		},
	}}
	_, err := s.Save(ctx, TableBudgets, "11", records, nil)
	require.NoError(t, err)

	doc, err := s.Fetch(ctx, TableBudgets, "11")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"b-0","TRADER":"Acme Concrete","AMOUNT":1200,"NOTES":"--"}]`, string(doc.Data))
}

func TestDelete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, err := s.Save(ctx, TableSchedules, "9", sampleTasks(), nil)
	require.NoError(t, err)

	n, err := s.Delete(ctx, TableSchedules, "9")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.Fetch(ctx, TableSchedules, "9")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarshalRecords(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
		wantErr  bool
	}{
		{"nil slice", []models.TaskRecord(nil), "[]", false},
		{"raw array", json.RawMessage(` [1,2] `), "[1,2]", false},
		{"object rejected", map[string]int{"a": 1}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := marshalRecords(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestRebind(t *testing.T) {
	pg := dialect{driver: DriverPostgres}
	assert.Equal(t, "UPDATE t SET a = $1 WHERE b = $2", pg.rebind("UPDATE t SET a = ? WHERE b = ?"))

	lite := dialect{driver: DriverSQLite}
	assert.Equal(t, "SELECT ?", lite.rebind("SELECT ?"))
}

func TestParseDriver(t *testing.T) {
	tests := []struct {
		input    string
		expected Driver
		wantErr  bool
	}{
		{"postgres", DriverPostgres, false},
		{"PostgreSQL", DriverPostgres, false},
		{"sqlite3", DriverSQLite, false},
		{"", DriverSQLite, false},
		{"mysql", "", true},
	}

	for _, tt := range tests {
		got, err := ParseDriver(tt.input)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnsupportedDriver)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got)
	}
}
