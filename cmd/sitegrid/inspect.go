package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ukaji3/sitegrid-go/pkg/sitegrid"
)

func (a *app) newInspectCmd() *cobra.Command {
	var (
		outputPath string
		pretty     bool
		anchor     string
	)

	cmd := &cobra.Command{
		Use:   "inspect [input.xlsx]",
		Short: "Dump the decoded first worksheet as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputPath := args[0]
			if _, err := os.Stat(inputPath); os.IsNotExist(err) {
				return fmt.Errorf("file not found: %s", inputPath)
			}

			opts := sitegrid.Options{AnchorToken: a.cfg.Import.AnchorToken}
			if anchor != "" {
				opts.AnchorToken = anchor
			}

			sheet, err := sitegrid.InspectFile(inputPath, opts)
			if err != nil {
				return fmt.Errorf("inspection failed: %w", err)
			}

			jsonData, err := toJSON(sheet, pretty)
			if err != nil {
				return fmt.Errorf("serialization failed: %w", err)
			}

			if outputPath != "" {
				if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	cmd.Flags().StringVar(&anchor, "anchor", "", "Budget header anchor token (default from config)")
	return cmd
}
