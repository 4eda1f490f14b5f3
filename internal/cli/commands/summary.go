package commands

import (
	"github.com/spf13/cobra"
)

// SummaryCommand handles the summary command
type SummaryCommand struct {
	deps *Deps
}

// NewSummaryCommand creates a new SummaryCommand
func NewSummaryCommand(deps *Deps) *SummaryCommand {
	return &SummaryCommand{deps: deps}
}

// Execute runs the command
func (sc *SummaryCommand) Execute(cmd *cobra.Command, args []string) error {
	doc, err := sc.deps.Storage.Load()
	if err != nil {
		return err
	}
	sc.deps.Formatter.PrintSummary(doc)
	return nil
}
