package timeline

import (
	"time"

	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/models"
)

// MaxAxisWeeks caps Layout.Weeks. Bars keep their true indexes past the cap.
const MaxAxisWeeks = 520

const secondsPerWeek = 7 * 24 * 60 * 60

// Bar is one task placed on the week axis.
type Bar struct {
	Task models.TaskRecord
	// Start and End are the effective dates after null substitution.
	Start time.Time
	End   time.Time
	// FirstWeek and LastWeek index into Layout.Weeks (inclusive).
	FirstWeek int
	LastWeek  int
	// Estimated is true when either date was missing and replaced by now.
	Estimated bool
}

// Layout is a set of tasks positioned on a Monday-aligned week axis.
type Layout struct {
	Weeks []time.Time
	Bars  []Bar
	// Height is the chart extent for len(Bars) rows.
	Height int
	// Truncated is set when the bars span more than MaxAxisWeeks.
	Truncated bool
}

// WeekStart returns midnight UTC of the Monday on or before t's calendar date.
func WeekStart(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	return d.AddDate(0, 0, -offset)
}

// NewLayout places tasks on a week axis spanning every bar. Missing start or
// end dates are replaced by now, and an end before its start is moved to the
// start.
func NewLayout(tasks []models.TaskRecord, now time.Time) Layout {
	layout := Layout{Height: ChartHeight(len(tasks))}
	if len(tasks) == 0 {
		return layout
	}

	bars := make([]Bar, len(tasks))
	var first, last time.Time
	for i, task := range tasks {
		start := task.StartOr(now)
		end := task.EndOr(now)
		if end.Before(start) {
			end = start
		}
		bars[i] = Bar{
			Task:      task,
			Start:     start,
			End:       end,
			Estimated: task.Start == nil || task.End == nil,
		}

		ws, we := WeekStart(start), WeekStart(end)
		if i == 0 || ws.Before(first) {
			first = ws
		}
		if i == 0 || we.After(last) {
			last = we
		}
	}

	span := weeksBetween(first, last) + 1
	if span > MaxAxisWeeks {
		span = MaxAxisWeeks
		layout.Truncated = true
	}
	layout.Weeks = make([]time.Time, span)
	for i := range layout.Weeks {
		layout.Weeks[i] = first.AddDate(0, 0, 7*i)
	}
	for i := range bars {
		bars[i].FirstWeek = weeksBetween(first, WeekStart(bars[i].Start))
		bars[i].LastWeek = weeksBetween(first, WeekStart(bars[i].End))
	}
	layout.Bars = bars
	return layout
}

// weeksBetween counts whole weeks between two Monday week starts. Unix
// seconds avoid the ~292 year limit of time.Duration.
func weeksBetween(from, to time.Time) int {
	return int((to.Unix() - from.Unix()) / secondsPerWeek)
}
