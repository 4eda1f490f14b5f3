package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bmctest/internal/checks"
	"bmctest/internal/domain"
)

// ListCommand handles the list command
type ListCommand struct {
	deps *Deps
}

// NewListCommand creates a new ListCommand
func NewListCommand(deps *Deps) *ListCommand {
	return &ListCommand{deps: deps}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	cfg := lc.deps.Config

	// Listing never opens sessions or runs the load
	list := checks.Select(checks.Catalog(&checks.Env{}, checks.SettingsFromConfig(cfg), checks.LoadCheck(cfg, nil, nil)), cfg.Flags)
	if len(list) == 0 {
		color.Yellow("No checks found")
		return nil
	}

	infos := make([]domain.CheckInfo, 0, len(list))
	for _, c := range list {
		infos = append(infos, checks.Info(c))
	}

	lc.deps.Formatter.PrintCheckList(infos, true, lc.lastFailed())
	return nil
}

// lastFailed returns the non-passing cases of the saved report, keyed "suite/name"
func (lc *ListCommand) lastFailed() map[string]struct{} {
	doc, err := lc.deps.Storage.Load()
	if err != nil {
		lc.deps.Logger.Debug("No previous report", zap.Error(err))
		return nil
	}
	failed := make(map[string]struct{})
	for _, f := range doc.NonPassing() {
		if f.Status != domain.StatusSkipped {
			failed[f.Key()] = struct{}{}
		}
	}
	return failed
}
