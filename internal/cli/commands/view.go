package commands

import (
	"github.com/spf13/cobra"
)

// ViewCommand handles the view command
type ViewCommand struct {
	deps *Deps
}

// NewViewCommand creates a new ViewCommand
func NewViewCommand(deps *Deps) *ViewCommand {
	return &ViewCommand{deps: deps}
}

// Execute runs the command
func (vc *ViewCommand) Execute(cmd *cobra.Command, args []string) error {
	doc, err := vc.deps.Storage.Load()
	if err != nil {
		return err
	}
	return vc.deps.Viewer.View(doc)
}
