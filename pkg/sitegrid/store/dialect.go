package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Driver names a supported database backend.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// ParseDriver accepts the driver names used in configuration.
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql", "pq":
		return DriverPostgres, nil
	case "sqlite", "sqlite3", "":
		return DriverSQLite, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, s)
}

// timeLayout is fixed-width so text timestamps in SQLite sort correctly.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type dialect struct {
	driver Driver
	schema string
}

func dialectFor(driver Driver) (dialect, error) {
	switch driver {
	case DriverPostgres:
		return dialect{driver: driver, schema: postgresSchema}, nil
	case DriverSQLite:
		return dialect{driver: driver, schema: sqliteSchema}, nil
	}
	return dialect{}, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
}

// rebind rewrites ? placeholders as $1, $2, ... for Postgres.
func (d dialect) rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d dialect) timeArg(t time.Time) any {
	if d.driver == DriverPostgres {
		return t
	}
	return t.UTC().Format(timeLayout)
}

// isUniqueViolation reports whether err is a unique-constraint failure on
// project_id.
func (d dialect) isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if d.driver == DriverPostgres {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return pqErr.Code == "23505" &&
				(pqErr.Constraint == "" || strings.Contains(pqErr.Constraint, "project_id"))
		}
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, "project_id")
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		// Postgres text form, e.g. "2026-03-02 10:00:00.123+00".
		t, err = time.Parse("2006-01-02 15:04:05.999999999-07", s)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("parse updated_at %q: %w", s, err)
	}
	return t.UTC(), nil
}
