package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bmctest/internal/checks"
	"bmctest/internal/execution"
)

// RunCommand handles the run command
type RunCommand struct {
	deps *Deps
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(deps *Deps) *RunCommand {
	return &RunCommand{deps: deps}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg, logger := rc.deps.Config, rc.deps.Logger
	ctx := cmd.Context()

	env := &checks.Env{}
	engines := newEngineFactory(cfg, logger)
	load := checks.LoadCheck(cfg, engines.New, execution.NewRunner(cfg, logger))

	list := checks.Select(checks.Catalog(env, checks.SettingsFromConfig(cfg), load), cfg.Flags)
	if len(list) == 0 {
		color.Yellow("No checks to execute")
		return nil
	}

	release := openEnv(ctx, cfg, env, list, logger)
	defer release()

	return rc.deps.execute(ctx, list, engines)
}
