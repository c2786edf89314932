package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/ukaji3/sitegrid-go/pkg/sitegrid/store"
)

// IsInteractive reports whether stdin is a terminal.
func IsInteractive() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NewProjectForm returns a form asking for a project id into *projectID.
func NewProjectForm(projectID *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project ID").
				Description("Numeric id of the project this upload belongs to").
				Value(projectID).
				Validate(func(s string) error {
					_, err := store.ParseProjectID(s)
					return err
				}),
		),
	)
}

// PromptProjectID asks for a project id on the terminal.
func PromptProjectID() (string, error) {
	var projectID string
	if err := NewProjectForm(&projectID).Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(projectID), nil
}
