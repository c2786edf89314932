package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ukaji3/sitegrid-go/pkg/sitegrid"
)

func (a *app) newImportCmd() *cobra.Command {
	var (
		project    string
		existingID int64
		anchor     string
	)

	cmd := &cobra.Command{
		Use:   "import (schedule|budget) [input.xlsx]",
		Short: "Normalize a spreadsheet and save it as the project's document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := sitegrid.ParseKind(args[0])
			if err != nil {
				return err
			}
			pid, err := projectID(project)
			if err != nil {
				return err
			}

			opts := sitegrid.Options{AnchorToken: a.cfg.Import.AnchorToken}
			if anchor != "" {
				opts.AnchorToken = anchor
			}
			if cmd.Flags().Changed("existing-id") {
				opts.ExistingID = &existingID
			}

			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := sitegrid.NewImporter(s).ImportFile(cmd.Context(), kind, args[1], pid, opts)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d %s records into project %s (document %d, batch %s)\n",
				res.Records, kind, pid, res.Document.ID, res.BatchID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Project id")
	cmd.Flags().Int64Var(&existingID, "existing-id", 0, "Update this stored document id instead of inserting")
	cmd.Flags().StringVar(&anchor, "anchor", "", "Budget header anchor token (default from config)")
	return cmd
}
