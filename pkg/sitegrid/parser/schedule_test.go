package parser

import (
	"testing"
	"time"

	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/models"
)

func row(keys []string, values ...models.Value) models.RawRow {
	vals := make([]models.Value, len(keys))
	copy(vals, values)
	return models.RawRow{Keys: keys, Values: vals}
}

func str(s string) models.Value  { return models.StringValue(s) }
func num(f float64) models.Value { return models.NumberValue(f) }
func null() models.Value         { return models.NullValue() }

func TestNormalizeScheduleAliases(t *testing.T) {
	keys := []string{"Task Name", "Planned Start Date", "Planned Finish Date", "Percent Complete", "Linked From", "id"}
	rows := []models.RawRow{
		row(keys, str("Excavation"), str("2026-03-02"), str("2026-03-13"), num(0.25), str("t-9"), str("EXT-1")),
		row(keys, str("Footings"), num(46093), null(), str("80%"), null(), str("EXT-2")),
	}

	records := NormalizeSchedule(rows)
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.ID != "t-0" {
		t.Errorf("Expected positional id t-0, got %q", first.ID)
	}
	if first.Name != "Excavation" {
		t.Errorf("Expected Excavation, got %q", first.Name)
	}
	if first.Start == nil || !first.Start.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected start %v", first.Start)
	}
	if first.End == nil || !first.End.Equal(time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected end %v", first.End)
	}
	if first.Progress != 25 {
		t.Errorf("Expected progress 25, got %d", first.Progress)
	}
	if first.Dependencies != "t-9" {
		t.Errorf("Expected dependencies t-9, got %q", first.Dependencies)
	}

	second := records[1]
	if second.ID != "t-1" {
		t.Errorf("Expected positional id t-1, got %q", second.ID)
	}
	// 46093 is the Excel serial for 2026-03-12.
	if second.Start == nil || second.Start.Format("2006-01-02") != "2026-03-12" {
		t.Errorf("Unexpected serial start %v", second.Start)
	}
	if second.End != nil {
		t.Errorf("Expected nil end, got %v", second.End)
	}
	if second.Progress != 80 {
		t.Errorf("Expected progress 80, got %d", second.Progress)
	}
	if second.Dependencies != "" {
		t.Errorf("Expected no dependencies, got %q", second.Dependencies)
	}
}

func TestNormalizeScheduleAliasPriority(t *testing.T) {
	keys := []string{"Task", "name", "Start", "start"}
	rows := []models.RawRow{
		row(keys, str("from Task"), str("from name"), str("2026-01-05"), str("2026-02-02")),
		row(keys, str("from Task"), null(), null(), str("2026-02-02")),
	}

	records := NormalizeSchedule(rows)
	if records[0].Name != "from name" {
		t.Errorf("Expected name alias to win, got %q", records[0].Name)
	}
	if got := records[0].Start.Format("2006-01-02"); got != "2026-02-02" {
		t.Errorf("Expected start alias to win, got %s", got)
	}
	// An empty higher-priority cell falls through to the next alias.
	if records[1].Name != "from Task" {
		t.Errorf("Expected fallthrough to Task, got %q", records[1].Name)
	}
}

func TestNormalizeScheduleFallbackName(t *testing.T) {
	keys := []string{"Unrelated", "Other"}
	rows := []models.RawRow{
		row(keys, str("x"), str("y")),
		row(keys, null(), null()),
		row(keys, null(), null()),
	}

	records := NormalizeSchedule(rows)
	if len(records) != len(rows) {
		t.Fatalf("Expected %d records, got %d", len(rows), len(records))
	}

	ids := make(map[string]bool)
	for i, rec := range records {
		want := "Task " + string(rune('1'+i))
		if rec.Name != want {
			t.Errorf("record %d: expected name %q, got %q", i, want, rec.Name)
		}
		if rec.Progress != 0 {
			t.Errorf("record %d: expected progress 0, got %d", i, rec.Progress)
		}
		if rec.Start != nil || rec.End != nil {
			t.Errorf("record %d: expected nil dates", i)
		}
		if ids[rec.ID] {
			t.Errorf("duplicate id %q", rec.ID)
		}
		ids[rec.ID] = true
	}
}

func TestParseProgress(t *testing.T) {
	tests := []struct {
		input      models.Value
		fractional bool
		expected   int
	}{
		{num(45), false, 45},
		{num(1), false, 1},
		{num(150), false, 100},
		{num(-3), false, 0},
		{num(0.45), true, 45},
		{num(0.5), true, 50},
		{num(1), true, 100},
		{num(0), true, 0},
		{str("45%"), false, 45},
		{str("45%"), true, 45},
		{str("0.5%"), true, 1},
		{str(" 12.4 "), false, 12},
		{str("0.3"), true, 30},
		{str("done"), false, 0},
		{null(), true, 0},
	}

	for _, tt := range tests {
		if got := parseProgress(tt.input, tt.fractional); got != tt.expected {
			t.Errorf("parseProgress(%v, %v) = %d, expected %d", tt.input, tt.fractional, got, tt.expected)
		}
	}
}

func TestNormalizeScheduleProgressScale(t *testing.T) {
	keys := []string{"Task Name", "Progress"}
	tests := []struct {
		name     string
		values   []models.Value
		expected []int
	}{
		{"percent formatted", []models.Value{num(0.5), num(1), num(0), null()}, []int{50, 100, 0, 0}},
		{"whole percentages", []models.Value{num(45), num(100), num(1)}, []int{45, 100, 1}},
		{"explicit suffix ignored for detection", []models.Value{str("100%"), num(0.25), num(1)}, []int{100, 25, 100}},
		{"text numbers", []models.Value{str("0.75"), str("1")}, []int{75, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := make([]models.RawRow, len(tt.values))
			for i, v := range tt.values {
				rows[i] = row(keys, str("task"), v)
			}

			records := NormalizeSchedule(rows)
			for i, rec := range records {
				if rec.Progress != tt.expected[i] {
					t.Errorf("row %d: expected progress %d, got %d", i, tt.expected[i], rec.Progress)
				}
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    models.Value
		expected string
	}{
		{str("2026-04-01"), "2026-04-01"},
		{str("04/01/2026"), "2026-04-01"},
		{str("4/1/26"), "2026-04-01"},
		{str("01-Apr-2026"), "2026-04-01"},
		{str("Apr 1, 2026"), "2026-04-01"},
		{num(46113), "2026-04-01"},
		{str("someday"), ""},
		{num(0), ""},
	}

	for _, tt := range tests {
		got := parseDate(tt.input)
		if tt.expected == "" {
			if got != nil {
				t.Errorf("parseDate(%v) = %v, expected nil", tt.input, got)
			}
			continue
		}
		if got == nil || got.Format("2006-01-02") != tt.expected {
			t.Errorf("parseDate(%v) = %v, expected %s", tt.input, got, tt.expected)
		}
	}
}
