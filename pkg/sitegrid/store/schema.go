package store

import (
	"context"
	"fmt"
)

// Table names a document table.
type Table string

const (
	TableSchedules Table = "project_schedules"
	TableBudgets   Table = "project_budgets"
)

// Tables lists every document table managed by the store.
var Tables = []Table{TableSchedules, TableBudgets}

// Valid reports whether t is one of Tables. Table names are interpolated
// into SQL, so only these values may reach a query.
func (t Table) Valid() bool {
	for _, known := range Tables {
		if t == known {
			return true
		}
	}
	return false
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS %[1]s (
    id BIGSERIAL PRIMARY KEY,
    project_id BIGINT NOT NULL,
    data JSONB NOT NULL DEFAULT '[]'::jsonb,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT %[1]s_project_id_key UNIQUE (project_id)
);
CREATE INDEX IF NOT EXISTS idx_%[1]s_updated ON %[1]s(project_id, updated_at DESC);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS %[1]s (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    project_id INTEGER NOT NULL UNIQUE,
    data TEXT NOT NULL DEFAULT '[]',
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_%[1]s_updated ON %[1]s(project_id, updated_at DESC);
`

// CreateSchema creates the document tables if they do not exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	for _, table := range Tables {
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf(s.dialect.schema, table)); err != nil {
			return wrap("create schema", table, err)
		}
	}
	return nil
}
