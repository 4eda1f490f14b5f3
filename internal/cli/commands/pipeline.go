package commands

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"bmctest/internal/browser"
	"bmctest/internal/checks"
	"bmctest/internal/config"
	"bmctest/internal/domain"
	"bmctest/internal/loadgen"
	"bmctest/internal/redfish"
	"bmctest/internal/report"
	"bmctest/internal/ui"
)

// openEnv acquires the sessions needed by the checks in list. A resource that
// cannot be opened is recorded in env so its checks report the cause.
// The returned function releases everything that was opened.
func openEnv(ctx context.Context, cfg *config.Config, env *checks.Env, list []checks.Check, logger *zap.Logger) func() {
	var closers []func()

	if checks.HasSuite(list, domain.SuiteAPI) {
		client, err := redfish.Open(ctx, redfish.OptionsFromConfig(cfg), logger)
		if err != nil {
			logger.Warn("Redfish session unavailable", zap.Error(err))
			env.RedfishErr = err
		} else {
			env.Redfish = client
			closers = append(closers, func() {
				ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
				defer cancel()
				if err := client.Close(ctx); err != nil {
					logger.Warn("Failed to close Redfish session", zap.Error(err))
				}
			})
		}
	}

	if checks.HasSuite(list, domain.SuiteWebUI) {
		session, err := browser.Open(ctx, browser.OptionsFromConfig(cfg), logger)
		if err != nil {
			logger.Warn("Browser unavailable", zap.Error(err))
			env.BrowserErr = err
		} else {
			env.Browser = session
			closers = append(closers, session.Close)
		}
	}

	return func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}

// execute runs list into a new report, saves it and prints the summary
func (d *Deps) execute(ctx context.Context, list []checks.Check, engines *engineFactory) error {
	cfg, logger := d.Config, d.Logger

	agg := report.New(cfg.RunName)
	logger.Info("Starting run",
		zap.String("run_id", agg.ID()),
		zap.Int("checks", len(list)),
		zap.Strings("suites", checks.Suites(list)))

	runner := checks.NewRunner(cfg, agg, logger)
	if isatty.IsTerminal(os.Stderr.Fd()) {
		runner.SetProgress(ui.NewProgressBar(len(list)))
	}
	totals := runner.Run(ctx, list)

	if err := d.Storage.Save(agg); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	logger.Info("Run finished",
		zap.String("run_id", agg.ID()),
		zap.Int("passed", totals.Passed),
		zap.Int("failed", totals.Failed),
		zap.Int("errors", totals.Errors),
		zap.Int("skipped", totals.Skipped),
		zap.Duration("duration", totals.Duration))

	doc := agg.Snapshot()
	d.Formatter.PrintSummary(doc)
	if sum := engines.Last(); sum != nil {
		d.Formatter.PrintLoadSummary(sum)
	}
	fmt.Fprintf(d.Out, "\nReport written to %s\n", d.Storage.Path())

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run interrupted: %w", err)
	}
	if !totals.Broken() {
		return nil
	}
	if cfg.Flags.Interactive && d.Viewer != nil {
		if err := d.Viewer.View(doc); err != nil {
			return err
		}
	}
	return ErrRunFailed
}

// engineFactory builds the embedded load engine when the load check runs and
// keeps the summary of the last run for the console
type engineFactory struct {
	cfg    *config.Config
	logger *zap.Logger

	mu   sync.Mutex
	last *loadgen.Summary
}

func newEngineFactory(cfg *config.Config, logger *zap.Logger) *engineFactory {
	return &engineFactory{cfg: cfg, logger: logger}
}

// New builds an engine for the configured profile
func (f *engineFactory) New() (checks.LoadRunner, error) {
	p, err := loadgen.BuildProfile(f.cfg, f.logger)
	if err != nil {
		return nil, err
	}
	engine, err := loadgen.NewEngine(p, f.logger)
	if err != nil {
		return nil, err
	}
	return &servedEngine{engine: engine, factory: f}, nil
}

// Last returns the summary of the last embedded run, nil when none completed
func (f *engineFactory) Last() *loadgen.Summary {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

// servedEngine exposes the engine metrics while it runs when a metrics address is configured
type servedEngine struct {
	engine  *loadgen.Engine
	factory *engineFactory
}

func (s *servedEngine) Run(ctx context.Context) (*loadgen.Summary, error) {
	f := s.factory
	if addr := f.cfg.MetricsAddr; addr != "" {
		srv, err := loadgen.StartMetricsServer(addr, s.engine.Registry(), f.logger)
		if err != nil {
			return nil, err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				f.logger.Warn("Failed to stop metrics server", zap.Error(err))
			}
		}()
	}

	sum, err := s.engine.Run(ctx)
	if sum != nil {
		f.mu.Lock()
		f.last = sum
		f.mu.Unlock()
	}
	return sum, err
}
