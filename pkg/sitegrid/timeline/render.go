package timeline

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	cellWidth    = 7
	filledCell   = "██████ "
	estimateCell = "░░░░░░ "
	emptyCell    = "  ·    "
)

// RenderOptions controls text rendering.
type RenderOptions struct {
	// LabelWidth is the width of the task name column (default 24).
	LabelWidth int
	// MaxWeeks caps the number of week columns; 0 renders all.
	MaxWeeks int
}

// Render draws a layout as a text Gantt chart: one line per task, one
// column per week. Bars with substituted dates use a lighter fill.
func Render(layout Layout, opts RenderOptions) string {
	if opts.LabelWidth <= 0 {
		opts.LabelWidth = 24
	}
	weeks := layout.Weeks
	if opts.MaxWeeks > 0 && len(weeks) > opts.MaxWeeks {
		weeks = weeks[:opts.MaxWeeks]
	}

	var b strings.Builder
	b.WriteString(runewidth.FillRight("Task", opts.LabelWidth))
	b.WriteString("  %  ")
	for _, w := range weeks {
		b.WriteString(runewidth.FillRight(w.Format("Jan 02"), cellWidth))
	}
	b.WriteString("\n")

	for _, bar := range layout.Bars {
		label := runewidth.Truncate(bar.Task.Name, opts.LabelWidth, "…")
		b.WriteString(runewidth.FillRight(label, opts.LabelWidth))
		fmt.Fprintf(&b, "%3d  ", bar.Task.Progress)
		for i := range weeks {
			switch {
			case i < bar.FirstWeek || i > bar.LastWeek:
				b.WriteString(emptyCell)
			case bar.Estimated:
				b.WriteString(estimateCell)
			default:
				b.WriteString(filledCell)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
