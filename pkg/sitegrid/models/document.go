package models

import (
	"encoding/json"
	"time"
)

// Document is the persisted JSON document owned by a project.
type Document struct {
	// ID is the store-assigned row id.
	ID int64 `json:"id"`
	// ProjectID is the owning project.
	ProjectID int64 `json:"project_id"`
	// Data is the full record array from the latest upload.
	Data json.RawMessage `json:"data"`
	// UpdatedAt is the time of the last write.
	UpdatedAt time.Time `json:"updated_at"`
}
