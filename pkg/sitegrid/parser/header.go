package parser

import (
	"strings"

	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/models"
)

// DefaultAnchorToken locates the header row of contractor budget exports.
const DefaultAnchorToken = "TRADER"

// KeyRow is the header index meaning "the sheet's first row", i.e. the keys
// shared by every RawRow.
const KeyRow = -1

// Column is one canonical header and the 0-based sheet column it came from.
type Column struct {
	Name  string
	Index int
}

// DetectHeaderRow finds the budget header row by anchor token.
//
// The key row is checked first because it is physically the first row of the
// sheet, then each RawRow in order. The first row holding a cell that contains
// anchor (case-insensitive) wins. When no row matches, found is false and the
// key row is returned; callers treat the sheet's first row as the header.
//
// Failure mode: a preamble cell that happens to contain the anchor (for
// example a title "Trader summary") is taken as the header.
func DetectHeaderRow(rows []models.RawRow, anchor string) (index int, found bool) {
	if len(rows) == 0 {
		return KeyRow, false
	}
	anchor = strings.ToLower(strings.TrimSpace(anchor))
	if anchor == "" {
		anchor = strings.ToLower(DefaultAnchorToken)
	}

	for _, key := range rows[0].Keys {
		if strings.Contains(strings.ToLower(key), anchor) {
			return KeyRow, true
		}
	}
	for i, row := range rows {
		for _, v := range row.Values {
			if strings.Contains(strings.ToLower(v.String()), anchor) {
				return i, true
			}
		}
	}
	return KeyRow, false
}

// HeaderColumns builds the canonical header list for a header index returned
// by DetectHeaderRow. Names are trimmed; placeholder and blank cells are
// dropped but the surviving names keep their original column index.
func HeaderColumns(rows []models.RawRow, index int) []Column {
	if len(rows) == 0 {
		return nil
	}

	var cells []string
	if index == KeyRow {
		cells = rows[0].Keys
	} else if index >= 0 && index < len(rows) {
		for _, v := range rows[index].Values {
			cells = append(cells, v.String())
		}
	}

	seen := map[string]int{models.BudgetIDKey: 1}
	var columns []Column
	for colIdx, cell := range cells {
		name := strings.TrimSpace(cell)
		if name == "" || strings.HasPrefix(name, models.EmptyHeaderKey) {
			continue
		}
		columns = append(columns, Column{Name: uniqueName(name, seen), Index: colIdx})
	}
	return columns
}
