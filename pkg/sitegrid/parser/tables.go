package parser

import (
	"strings"

	"github.com/xuri/excelize/v2"
)

// TableParams tunes DetectTableRange.
type TableParams struct {
	// MinDensity is the smallest share of populated cells in the bounding box.
	MinDensity float64
	// MinCells is the fewest populated cells that still form a table.
	MinCells int
}

// DefaultTableParams returns the thresholds used by Inspect.
func DefaultTableParams() TableParams {
	return TableParams{MinDensity: 0.04, MinCells: 3}
}

// DetectTableRange returns the range (e.g. "A3:F40") bounding the populated
// cells of a grid, or "" when they are too few or too scattered to be a table.
// Whitespace-only cells count as empty.
func DetectTableRange(cells [][]string, params TableParams) string {
	top, bottom, left, right := -1, -1, -1, -1
	populated := 0
	for r, row := range cells {
		for c, cell := range row {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			populated++
			if top < 0 {
				top = r
			}
			bottom = r
			if left < 0 || c < left {
				left = c
			}
			right = max(right, c)
		}
	}
	if populated == 0 || populated < params.MinCells {
		return ""
	}

	area := (bottom - top + 1) * (right - left + 1)
	if float64(populated)/float64(area) < params.MinDensity {
		return ""
	}

	from, err := excelize.CoordinatesToCellName(left+1, top+1)
	if err != nil {
		return ""
	}
	to, err := excelize.CoordinatesToCellName(right+1, bottom+1)
	if err != nil {
		return ""
	}
	return from + ":" + to
}
