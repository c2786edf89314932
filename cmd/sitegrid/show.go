package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ukaji3/sitegrid-go/pkg/sitegrid"
	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/models"
	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/parser"
	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/timeline"
)

func (a *app) newShowCmd() *cobra.Command {
	var (
		project  string
		page     int
		pageSize int
		weeks    int
	)

	cmd := &cobra.Command{
		Use:   "show (schedule|budget)",
		Short: "Print a project's stored schedule or budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := sitegrid.ParseKind(args[0])
			if err != nil {
				return err
			}
			pid, err := projectID(project)
			if err != nil {
				return err
			}

			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			if kind == sitegrid.KindBudget {
				records, doc, err := s.FetchBudget(cmd.Context(), pid)
				if err != nil {
					return err
				}
				printBudget(out, records, doc)
				return nil
			}

			tasks, doc, err := s.FetchSchedule(cmd.Context(), pid)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("page-size") {
				pageSize = a.cfg.Timeline.PageSize
			}
			printSchedule(out, tasks, doc, page, pageSize, weeks, time.Now())
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Project id")
	cmd.Flags().IntVar(&page, "page", 1, "Schedule page to print")
	cmd.Flags().IntVar(&pageSize, "page-size", timeline.DefaultPageSize, "Tasks per page")
	cmd.Flags().IntVar(&weeks, "weeks", 0, "Maximum week columns (0 = all)")
	return cmd
}

func printSchedule(w io.Writer, tasks []models.TaskRecord, doc models.Document, page, pageSize, weeks int, now time.Time) {
	pager := timeline.NewPager(tasks, pageSize)
	pager.SetPage(page)

	fmt.Fprintf(w, "Project %d schedule · page %d of %d · %d tasks · updated %s\n\n",
		doc.ProjectID, pager.CurrentPage(), max(pager.TotalPages(), 1), pager.TotalItems(),
		doc.UpdatedAt.Local().Format("2006-01-02 15:04"))

	items := pager.CurrentPageItems()
	if len(items) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return
	}
	fmt.Fprint(w, timeline.Render(timeline.NewLayout(items, now), timeline.RenderOptions{MaxWeeks: weeks}))
}

func printBudget(w io.Writer, records []models.BudgetRecord, doc models.Document) {
	fmt.Fprintf(w, "Project %d budget · %d rows · updated %s\n\n",
		doc.ProjectID, len(records), doc.UpdatedAt.Local().Format("2006-01-02 15:04"))
	if len(records) == 0 {
		fmt.Fprintln(w, "No rows.")
		return
	}

	columns := records[0].Columns
	rows := make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(columns))
		for j, col := range columns {
			row[j] = rec.Get(col).String()
		}
		rows[i] = row
	}
	fmt.Fprintln(w, table.New().
		Border(lipgloss.NormalBorder()).
		Headers(columns...).
		Rows(rows...).
		String())

	summary := parser.SummarizeBudget(records)
	if summary.AmountColumn == "" {
		return
	}
	totals := make([][]string, 0, len(summary.Groups)+1)
	for _, g := range summary.Groups {
		totals = append(totals, []string{g.Label, fmt.Sprint(g.Count), g.Total.StringFixed(2)})
	}
	totals = append(totals, []string{"Total", fmt.Sprint(len(records) - summary.Skipped), summary.Total.StringFixed(2)})

	fmt.Fprintln(w)
	fmt.Fprintln(w, table.New().
		Border(lipgloss.NormalBorder()).
		Headers(summary.LabelColumn, "Rows", summary.AmountColumn).
		Rows(totals...).
		String())
	if summary.Skipped > 0 {
		fmt.Fprintf(w, "%d rows with unparseable %s skipped\n", summary.Skipped, summary.AmountColumn)
	}
}
