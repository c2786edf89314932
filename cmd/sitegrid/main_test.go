package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	gokeyring "github.com/zalando/go-keyring"

	"github.com/ukaji3/sitegrid-go/internal/config"
	"github.com/ukaji3/sitegrid-go/internal/logger"
	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/models"
)

func setupWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv(config.EnvDatabaseDriver, "sqlite")
	t.Setenv(config.EnvDatabaseURL, filepath.Join(dir, "sitegrid.db"))
	t.Setenv(config.EnvLogDir, filepath.Join(dir, "logs"))
	t.Cleanup(func() { logger.Logger = nil })
	return dir
}

func writeBook(t *testing.T, dir, name string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInspectCommand(t *testing.T) {
	dir := setupWorkspace(t)
	path := writeBook(t, dir, "budget.xlsx", [][]interface{}{
		{"Budget"},
		{"TRADER", "AMOUNT"},
		{"Acme", 100},
	})

	out, err := execute(t, "inspect", path)
	require.NoError(t, err)

	var sheet models.SheetData
	require.NoError(t, json.Unmarshal([]byte(out), &sheet))
	assert.Equal(t, "Sheet1", sheet.Name)
	assert.True(t, sheet.HeaderFound)
	assert.Len(t, sheet.Rows, 2)
}

func TestInspectMissingFile(t *testing.T) {
	setupWorkspace(t)

	_, err := execute(t, "inspect", "nope.xlsx")
	assert.ErrorContains(t, err, "file not found")
}

func TestInspectWithoutDatabaseURL(t *testing.T) {
	dir := setupWorkspace(t)
	gokeyring.MockInit()
	t.Setenv(config.EnvDatabaseDriver, "postgres")
	t.Setenv(config.EnvDatabaseURL, "")

	path := writeBook(t, dir, "plan.xlsx", [][]interface{}{
		{"Task Name"},
		{"Excavation"},
	})

	_, err := execute(t, "inspect", path)
	require.NoError(t, err)

	// Commands that open the store still report the missing URL.
	_, err = execute(t, "import", "schedule", path, "--project", "1")
	assert.ErrorContains(t, err, "database URL required")
}

func TestImportShowReset(t *testing.T) {
	dir := setupWorkspace(t)
	path := writeBook(t, dir, "plan.xlsx", [][]interface{}{
		{"Task Name", "Planned Start Date", "Planned Finish Date", "Progress"},
		{"Excavation", "2026-03-02", "2026-03-13", 40},
		{"Footings", "2026-03-16", "2026-03-27", 0},
	})

	out, err := execute(t, "import", "schedule", path, "--project", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 schedule records into project 42")

	out, err = execute(t, "show", "schedule", "--project", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "page 1 of 1")
	assert.Contains(t, out, "Excavation")

	out, err = execute(t, "reset", "schedule", "--project", "42", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 1 schedule document(s)")

	_, err = execute(t, "show", "schedule", "--project", "42")
	assert.ErrorContains(t, err, "document not found")
}

func TestImportRejectsBadKind(t *testing.T) {
	setupWorkspace(t)

	_, err := execute(t, "import", "invoice", "x.xlsx", "--project", "1")
	assert.ErrorContains(t, err, "unknown import kind")
}

func TestPrintBudget(t *testing.T) {
	records := []models.BudgetRecord{
		{ID: "b-0", Columns: []string{"TRADER", "AMOUNT"}, Fields: map[string]models.Value{
			"TRADER": models.StringValue("Acme"), "AMOUNT": models.NumberValue(1200),
		}},
		{ID: "b-1", Columns: []string{"TRADER", "AMOUNT"}, Fields: map[string]models.Value{
			"TRADER": models.StringValue("Bolt"), "AMOUNT": models.StringValue(models.BudgetPlaceholder),
		}},
	}

	var out bytes.Buffer
	printBudget(&out, records, models.Document{ProjectID: 3, UpdatedAt: time.Now()})

	text := out.String()
	assert.Contains(t, text, "Project 3 budget · 2 rows")
	assert.Contains(t, text, "1200.00")
	assert.Contains(t, text, "1 rows with unparseable AMOUNT skipped")
	assert.True(t, strings.Contains(text, "Acme") && strings.Contains(text, "Bolt"))
}
