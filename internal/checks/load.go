package checks

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"bmctest/internal/config"
	"bmctest/internal/domain"
	"bmctest/internal/execution"
	"bmctest/internal/loadgen"
	"bmctest/internal/parser"
)

// LoadCaseName is the single case recorded for a load run
const LoadCaseName = "test_load_performance"

const maxStderr = 2000

// LoadRunner runs the embedded load engine
type LoadRunner interface {
	Run(ctx context.Context) (*loadgen.Summary, error)
}

// LoadCheck builds the load check. With a command line the external tool is
// run instead of the embedded engine.
func LoadCheck(cfg *config.Config, newEngine func() (LoadRunner, error), exec execution.Executor) Check {
	l := &loadCheck{
		commandLine: cfg.Flags.LoadCommand,
		newEngine:   newEngine,
		exec:        exec,
		parser:      parser.NewLocustParser(),
	}
	desc := "embedded load profile completes without failed requests"
	if l.commandLine != "" {
		desc = "external load command exits with status 0"
	}
	return &Func{
		CaseName:  LoadCaseName,
		SuiteName: domain.SuiteLoad,
		Desc:      desc,
		Limit:     loadLimit(cfg),
		Fn:        l.run,
	}
}

// loadLimit bounds the check by the run time that will actually be used:
// the command's own --run-time, or the resolved load profile.
func loadLimit(cfg *config.Config) time.Duration {
	if cmd := cfg.Flags.LoadCommand; cmd != "" {
		return execution.LoadTimeout(cfg, cmd)
	}
	if d, err := loadgen.RunTime(cfg); err == nil {
		return d + config.DefaultLoadGrace
	}
	return cfg.GetLoadTimeout()
}

type loadCheck struct {
	commandLine string
	newEngine   func() (LoadRunner, error)
	exec        execution.Executor
	parser      parser.Parser
}

func (l *loadCheck) run(ctx context.Context) error {
	if l.commandLine != "" {
		return l.runCommand(ctx)
	}
	return l.runEngine(ctx)
}

func (l *loadCheck) runEngine(ctx context.Context) error {
	engine, err := l.newEngine()
	if err != nil {
		return err
	}
	sum, err := engine.Run(ctx)
	if err != nil {
		return err
	}
	if sum.TotalRequests == 0 {
		return Failf("load run made no requests")
	}
	if sum.FailureCount > 0 {
		return Failf("%s", sum.String())
	}
	return Passed("%s", sum.String())
}

func (l *loadCheck) runCommand(ctx context.Context) error {
	res, err := l.exec.Run(ctx, l.commandLine)
	if err != nil {
		return err
	}

	detail := "load command completed"
	if stats, ok := l.parser.ParseStats(res.Stdout + "\n" + res.Stderr); ok {
		detail = stats.String()
	}
	if res.Success() {
		return Passed("%s", detail)
	}

	stderr := strings.TrimSpace(res.Stderr)
	if len(stderr) > maxStderr {
		i := len(stderr) - maxStderr
		for i < len(stderr) && !utf8.RuneStart(stderr[i]) {
			i++
		}
		stderr = "..." + stderr[i:]
	}
	if errs := l.parser.ParseErrors(res.Stdout + "\n" + res.Stderr); len(errs) > 0 {
		detail = fmt.Sprintf("%s; top error: %s (x%d)", detail, errs[0].Message, errs[0].Occurrences)
	}
	return Failf("exit status %d: %s\n%s", res.ExitCode, detail, stderr)
}
