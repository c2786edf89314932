package models

import "time"

// TaskRecord is a normalized schedule row.
type TaskRecord struct {
	// ID is a positional key, unique within one upload only.
	ID string `json:"id"`
	// Name is the task label.
	Name string `json:"name"`
	// Start is the planned start, nil when the sheet has none.
	Start *time.Time `json:"start"`
	// End is the planned finish, nil when the sheet has none.
	End *time.Time `json:"end"`
	// Progress is the completion percentage (0-100).
	Progress int `json:"progress"`
	// Dependencies is free text naming predecessor tasks.
	Dependencies string `json:"dependencies,omitempty"`
}

// StartOr returns Start, or fallback when Start is nil.
func (t TaskRecord) StartOr(fallback time.Time) time.Time {
	if t.Start == nil {
		return fallback
	}
	return *t.Start
}

// EndOr returns End, or fallback when End is nil.
func (t TaskRecord) EndOr(fallback time.Time) time.Time {
	if t.End == nil {
		return fallback
	}
	return *t.End
}
