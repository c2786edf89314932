package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors returned by the store.
var (
	// ErrInvalidProjectID is returned when a project id does not parse as a
	// positive integer. It is raised before any database access.
	ErrInvalidProjectID = errors.New("invalid project id")
	// ErrNotFound is returned when a project has no stored document, or an
	// update by id matched no row.
	ErrNotFound = errors.New("document not found")
	// ErrUnknownTable is returned for tables outside the known set.
	ErrUnknownTable = errors.New("unknown table")
	// ErrUnsupportedDriver is returned by Open for drivers other than
	// postgres and sqlite.
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)

// StoreError wraps a database failure with the operation and table involved.
type StoreError struct {
	Op    string
	Table Table
	Err   error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func wrap(op string, table Table, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Table: table, Err: err}
}

// ParseProjectID converts a textual project id to its integer form.
func ParseProjectID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidProjectID, s)
	}
	return id, nil
}
