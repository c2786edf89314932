package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/models"
	"github.com/xuri/excelize/v2"
)

// Header aliases per task field, in priority order.
var (
	NameAliases       = []string{"name", "Task", "Task Name", "task_name"}
	StartAliases      = []string{"start", "Start", "Planned Start Date"}
	EndAliases        = []string{"end", "End", "Planned Finish Date", "Planned End Date"}
	ProgressAliases   = []string{"progress", "Progress", "Percent Complete"}
	DependencyAliases = []string{"dependencies", "Dependencies", "Linked From", "Linked To"}
)

// dateLayouts are the text date formats accepted for start/end cells.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"01-02-06",
	"02-Jan-2006",
	"02-Jan-06",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
}

// NormalizeSchedule maps decoded rows to task records. Every row yields a
// record; ids are positional ("t-0", "t-1", ...) and never read from the
// sheet. A row without a name becomes "Task {n}" (1-based).
//
// Progress is read on one scale per sheet: when every unsuffixed progress
// number lies in 0..1 the column is a percent-formatted fraction, so 1 means
// 100. Otherwise values are already percentages.
func NormalizeSchedule(rows []models.RawRow) []models.TaskRecord {
	fractional := fractionalProgress(rows)
	records := make([]models.TaskRecord, 0, len(rows))
	for i, row := range rows {
		rec := models.TaskRecord{
			ID:   fmt.Sprintf("t-%d", i),
			Name: fmt.Sprintf("Task %d", i+1),
		}
		if v, ok := firstOf(row, NameAliases); ok {
			rec.Name = strings.TrimSpace(v.String())
		}
		if v, ok := firstOf(row, StartAliases); ok {
			rec.Start = parseDate(v)
		}
		if v, ok := firstOf(row, EndAliases); ok {
			rec.End = parseDate(v)
		}
		if v, ok := firstOf(row, ProgressAliases); ok {
			rec.Progress = parseProgress(v, fractional)
		}
		if v, ok := firstOf(row, DependencyAliases); ok {
			rec.Dependencies = strings.TrimSpace(v.String())
		}
		records = append(records, rec)
	}
	return records
}

// firstOf returns the first non-empty value among aliases.
func firstOf(row models.RawRow, aliases []string) (models.Value, bool) {
	for _, alias := range aliases {
		if v, ok := row.Get(alias); ok && !v.IsEmpty() {
			return v, true
		}
	}
	return models.NullValue(), false
}

// parseDate reads an Excel serial number or a text date. Unreadable values
// yield nil.
func parseDate(v models.Value) *time.Time {
	if f, ok := v.Number(); ok {
		if f <= 0 {
			return nil
		}
		t, err := excelize.ExcelDateToTime(f, false)
		if err != nil {
			return nil
		}
		return &t
	}

	s := strings.TrimSpace(v.String())
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// progressNumber extracts the number from a progress cell and reports
// whether it carried an explicit "%" suffix.
func progressNumber(v models.Value) (f float64, explicit bool, ok bool) {
	if f, ok := v.Number(); ok {
		return f, false, true
	}
	s := strings.TrimSpace(v.String())
	explicit = strings.HasSuffix(s, "%")
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
	if err != nil {
		return 0, false, false
	}
	return f, explicit, true
}

// fractionalProgress reports whether the sheet's progress column holds
// fractions: at least one unsuffixed number and none above 1.
func fractionalProgress(rows []models.RawRow) bool {
	seen := false
	for _, row := range rows {
		v, ok := firstOf(row, ProgressAliases)
		if !ok {
			continue
		}
		f, explicit, ok := progressNumber(v)
		if !ok || explicit {
			continue
		}
		if f > 1 {
			return false
		}
		seen = true
	}
	return seen
}

// parseProgress reads a completion cell on the given scale. "45%" is 45 on
// either scale; results are rounded and clamped to 0-100.
func parseProgress(v models.Value, fractional bool) int {
	f, explicit, ok := progressNumber(v)
	if !ok {
		return 0
	}
	pct := f
	if fractional && !explicit {
		pct = f * 100
	}

	switch {
	case math.IsNaN(pct), pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return int(math.Round(pct))
	}
}
