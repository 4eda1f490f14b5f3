package commands

import (
	"github.com/spf13/cobra"

	"bmctest/internal/checks"
	"bmctest/internal/execution"
)

// LoadCommand handles the load command
type LoadCommand struct {
	deps *Deps
}

// NewLoadCommand creates a new LoadCommand
func NewLoadCommand(deps *Deps) *LoadCommand {
	return &LoadCommand{deps: deps}
}

// Execute runs the command
func (lc *LoadCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg, logger := lc.deps.Config, lc.deps.Logger

	engines := newEngineFactory(cfg, logger)
	load := checks.LoadCheck(cfg, engines.New, execution.NewRunner(cfg, logger))

	return lc.deps.execute(cmd.Context(), []checks.Check{load}, engines)
}
