package commands

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bmctest/internal/cli"
	"bmctest/internal/config"
	"bmctest/internal/logging"
	"bmctest/internal/storage"
	"bmctest/internal/ui"
)

// ErrRunFailed is returned when a run recorded failed or errored checks
var ErrRunFailed = errors.New("run finished with failed checks")

// Deps are shared by all commands. Logger and Viewer are set in PreRunE, once flags are known.
type Deps struct {
	Config    *config.Config
	Logger    *zap.Logger
	Storage   storage.Storage
	Formatter *ui.Formatter
	Viewer    ui.Viewer
	Out       io.Writer
}

// Commands holds all CLI commands
type Commands struct {
	deps    *Deps
	Run     *RunCommand
	Load    *LoadCommand
	List    *ListCommand
	Summary *SummaryCommand
	View    *ViewCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	deps := &Deps{
		Config:    cfg,
		Logger:    zap.NewNop(),
		Storage:   storage.NewXMLStorage(cfg),
		Formatter: ui.NewFormatter(cfg, os.Stdout),
		Out:       os.Stdout,
	}

	return &Commands{
		deps:    deps,
		Run:     NewRunCommand(deps),
		Load:    NewLoadCommand(deps),
		List:    NewListCommand(deps),
		Summary: NewSummaryCommand(deps),
		View:    NewViewCommand(deps),
	}
}

// prepare applies flags over the loaded configuration and builds the logger
func (d *Deps) prepare(flags *cli.Flags) error {
	d.Config.ApplyFlags(flags.ToConfigFlags())
	if err := d.Config.Validate(); err != nil {
		return err
	}
	logger, err := logging.New(d.Config.LogLevel, d.Config.LogFormat)
	if err != nil {
		return err
	}
	d.Logger = logger
	d.Viewer = ui.NewFailureViewer(d.Storage, logger, d.Out)
	return nil
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags) {
	preRun := func(cmd *cobra.Command, args []string) error {
		return c.deps.prepare(flags)
	}
	postRun := func(cmd *cobra.Command, args []string) {
		_ = c.deps.Logger.Sync()
	}

	flags.AddGlobalFlags(rootCmd.PersistentFlags())

	// Run command
	runCmd := &cobra.Command{
		Use:     "run",
		Short:   "Run web console, Redfish API and load checks",
		Long:    "Run the selected checks against the management controller, write the JUnit report and print a summary",
		RunE:    c.Run.Execute,
		PreRunE: preRun,
		PostRun: postRun,
		Args:    cobra.NoArgs,
	}
	flags.AddTargetFlags(runCmd.Flags())
	flags.AddSelectFlags(runCmd.Flags())
	flags.AddCheckFlags(runCmd.Flags())
	flags.AddLoadFlags(runCmd.Flags())
	rootCmd.AddCommand(runCmd)

	// Load command
	loadCmd := &cobra.Command{
		Use:     "load",
		Short:   "Run the load test only",
		Long:    "Run the embedded load profile, or an external load command, and record it as a single check",
		RunE:    c.Load.Execute,
		PreRunE: preRun,
		PostRun: postRun,
		Args:    cobra.NoArgs,
	}
	flags.AddTargetFlags(loadCmd.Flags())
	flags.AddLoadFlags(loadCmd.Flags())
	rootCmd.AddCommand(loadCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List available checks",
		Long:    "List the checks a run would execute, marking those that did not pass in the last report",
		RunE:    c.List.Execute,
		PreRunE: preRun,
		Args:    cobra.NoArgs,
	}
	flags.AddSelectFlags(listCmd.Flags())
	rootCmd.AddCommand(listCmd)

	// Summary command
	summaryCmd := &cobra.Command{
		Use:     "summary",
		Short:   "Print the summary of the last report",
		RunE:    c.Summary.Execute,
		PreRunE: preRun,
		Args:    cobra.NoArgs,
	}
	rootCmd.AddCommand(summaryCmd)

	// View command
	viewCmd := &cobra.Command{
		Use:     "view",
		Short:   "View failed checks interactively",
		Long:    "Display the failed, errored and skipped checks of the last report in an interactive viewer",
		RunE:    c.View.Execute,
		PreRunE: preRun,
		Args:    cobra.NoArgs,
	}
	rootCmd.AddCommand(viewCmd)
}
