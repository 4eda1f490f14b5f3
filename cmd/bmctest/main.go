package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bmctest/internal/cli"
	"bmctest/internal/cli/commands"
	"bmctest/internal/config"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:           "bmctest",
		Short:         "OpenBMC web console, Redfish API and load test driver",
		Long:          `Runs browser checks against the web console, Redfish API checks and a load test against an OpenBMC management controller, and writes one JUnit XML report for the run.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Defaults, then .env, then BMCTEST_* variables; flags are applied per command
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var flags cli.Flags
	cmds := commands.NewCommands(cfg)
	cmds.Register(rootCmd, &flags)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, commands.ErrRunFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
