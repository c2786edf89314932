package main

import (
	"github.com/spf13/cobra"

	"github.com/ukaji3/sitegrid-go/internal/tui"
)

func (a *app) newGanttCmd() *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "gantt",
		Short: "Browse a project's schedule as an interactive Gantt chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := projectID(project)
			if err != nil {
				return err
			}

			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			tasks, doc, err := s.FetchSchedule(cmd.Context(), pid)
			s.Close()
			if err != nil {
				return err
			}

			return tui.Run(tui.NewModel(pid, tasks, a.cfg.Timeline.PageSize, doc.UpdatedAt))
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Project id")
	return cmd
}
