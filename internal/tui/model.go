// Package tui is an interactive, paginated Gantt viewer for a project's
// schedule.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/models"
	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/timeline"
)

// labelWidth is the task name column width; each week takes 7 cells.
const labelWidth = 24

type Model struct {
	projectID string
	updatedAt time.Time
	pager     *timeline.Pager[models.TaskRecord]
	keys      KeyMap
	help      help.Model
	now       func() time.Time
	width     int
	height    int
	quitting  bool
}

// NewModel returns a viewer over tasks starting on page 1.
func NewModel(projectID string, tasks []models.TaskRecord, pageSize int, updatedAt time.Time) Model {
	return Model{
		projectID: projectID,
		updatedAt: updatedAt,
		pager:     timeline.NewPager(tasks, pageSize),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		now:       time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Next):
			m.pager.NextPage()
		case key.Matches(msg, m.keys.Prev):
			m.pager.PrevPage()
		case key.Matches(msg, m.keys.First):
			m.pager.SetPage(1)
		case key.Matches(msg, m.keys.Last):
			m.pager.SetPage(m.pager.TotalPages())
		case key.Matches(msg, m.keys.Bigger):
			m.pager.SetPageSize(stepPageSize(m.pager.PageSize(), 1))
		case key.Matches(msg, m.keys.Smaller):
			m.pager.SetPageSize(stepPageSize(m.pager.PageSize(), -1))
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Project %s schedule", m.projectID)))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.status()))
	b.WriteString("\n\n")

	items := m.pager.CurrentPageItems()
	if len(items) == 0 {
		b.WriteString(emptyStyle.Render("No tasks in this schedule."))
	} else {
		layout := timeline.NewLayout(items, m.now())
		chart := timeline.Render(layout, timeline.RenderOptions{
			LabelWidth: labelWidth,
			MaxWeeks:   m.maxWeeks(),
		})
		b.WriteString(chartStyle.Render(strings.TrimRight(chart, "\n")))
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return docStyle.Render(b.String())
}

func (m Model) status() string {
	s := fmt.Sprintf("Page %d of %d · %d per page · %d tasks",
		m.pager.CurrentPage(), max(m.pager.TotalPages(), 1), m.pager.PageSize(), m.pager.TotalItems())
	if !m.updatedAt.IsZero() {
		s += " · updated " + m.updatedAt.Local().Format("2006-01-02 15:04")
	}
	return s
}

// maxWeeks fits the week columns to the terminal width. Zero (unknown
// width) renders every week.
func (m Model) maxWeeks() int {
	if m.width == 0 {
		return 0
	}
	// label + progress column + padding, border and doc margins
	avail := m.width - labelWidth - 5 - 10
	return max(avail/7, 1)
}

// stepPageSize moves to the neighbouring entry of timeline.PageSizes.
func stepPageSize(current, dir int) int {
	sizes := timeline.PageSizes
	if dir > 0 {
		for _, s := range sizes {
			if s > current {
				return s
			}
		}
		return sizes[len(sizes)-1]
	}
	for i := len(sizes) - 1; i >= 0; i-- {
		if sizes[i] < current {
			return sizes[i]
		}
	}
	return sizes[0]
}

// Run starts the viewer in the alternate screen and blocks until it exits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
