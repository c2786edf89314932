package models

// SheetData represents the decoded first worksheet of an upload.
type SheetData struct {
	// Name is the worksheet name.
	Name string `json:"name"`
	// Rows contains the decoded rows keyed by the first sheet row.
	Rows []RawRow `json:"rows,omitempty"`
	// HeaderRow is the index into Rows of the detected budget header row.
	HeaderRow int `json:"header_row"`
	// HeaderFound reports whether the anchor token located HeaderRow.
	HeaderFound bool `json:"header_found"`
	// TableRange is the cell range holding data (e.g. "A1:H40"), if any.
	TableRange string `json:"table_range,omitempty"`
}
