package main

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/ukaji3/sitegrid-go/internal/tui"
	"github.com/ukaji3/sitegrid-go/pkg/sitegrid"
)

func (a *app) newResetCmd() *cobra.Command {
	var (
		project string
		yes     bool
	)

	cmd := &cobra.Command{
		Use:   "reset (schedule|budget)",
		Short: "Delete a project's stored schedule or budget",
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

			if !yes {
				if !tui.IsInteractive() {
					return fmt.Errorf("refusing to delete without --yes")
				}
				confirmed := false
				err := huh.NewConfirm().
					Title(fmt.Sprintf("Delete the %s of project %s?", kind, pid)).
					Affirmative("Delete").
					Negative("Cancel").
					Value(&confirmed).
					Run()
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.Delete(cmd.Context(), kind.Table(), pid)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d %s document(s) for project %s\n", n, kind, pid)
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Project id")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
