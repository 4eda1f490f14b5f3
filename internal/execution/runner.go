package execution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"bmctest/internal/config"
)

// Result is the outcome of a command that ran to completion
type Result struct {
	Command  []string
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Success reports whether the command exited with status 0
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Runner executes an external load tool such as locust
type Runner struct {
	config *config.Config
	logger *zap.Logger
}

// NewRunner creates a new Runner
func NewRunner(cfg *config.Config, logger *zap.Logger) *Runner {
	return &Runner{config: cfg, logger: logger}
}

// Run splits commandLine with shell quoting rules and runs it, bounded by the load timeout.
// A non-zero exit is reported in Result; failing to start or timing out is an error.
func (r *Runner) Run(ctx context.Context, commandLine string) (*Result, error) {
	args, err := shellquote.Split(commandLine)
	if err != nil {
		return nil, fmt.Errorf("parse load command: %w", err)
	}
	if len(args) == 0 {
		return nil, errors.New("load command is empty")
	}

	timeout := LoadTimeout(r.config, commandLine)
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, args[0], args[1:]...)
	cmd.WaitDelay = 5 * time.Second

	// Target settings for the load script
	cmd.Env = os.Environ()
	cmd.Env = append(cmd.Env,
		fmt.Sprintf("%sBASE_URL=%s", config.EnvPrefix, r.config.BaseURL),
		fmt.Sprintf("%sREDFISH_URL=%s", config.EnvPrefix, r.config.GetRedfishURL()),
		fmt.Sprintf("%sUSERNAME=%s", config.EnvPrefix, r.config.Username),
		fmt.Sprintf("%sPASSWORD=%s", config.EnvPrefix, r.config.Password),
		fmt.Sprintf("%sWEATHER_URL=%s", config.EnvPrefix, r.config.WeatherURL),
		fmt.Sprintf("%sCITY=%s", config.EnvPrefix, r.config.City),
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Info("running load command", zap.Strings("args", args), zap.Duration("timeout", timeout))
	start := time.Now()
	err = cmd.Run()
	result := &Result{
		Command:  args,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if runCtx.Err() != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("load command interrupted: %w", ctx.Err())
		}
		return nil, fmt.Errorf("load command timed out after %s", timeout)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		r.logger.Warn("load command failed", zap.Int("exit_code", result.ExitCode))
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("run load command: %w", err)
	}
	return result, nil
}

// LoadTimeout bounds a load command by the run time it asks for with
// -t/--run-time, falling back to the configured run time.
func LoadTimeout(cfg *config.Config, commandLine string) time.Duration {
	if d, ok := commandRunTime(commandLine); ok {
		return d + config.DefaultLoadGrace
	}
	return cfg.GetLoadTimeout()
}

// commandRunTime extracts the last run time option; a bare number means seconds
func commandRunTime(commandLine string) (time.Duration, bool) {
	args, err := shellquote.Split(commandLine)
	if err != nil {
		return 0, false
	}
	var value string
	for i, arg := range args {
		switch {
		case arg == "-t" || arg == "--run-time":
			if i+1 < len(args) {
				value = args[i+1]
			}
		case strings.HasPrefix(arg, "--run-time="):
			value = strings.TrimPrefix(arg, "--run-time=")
		}
	}
	if value == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(value); err == nil && n > 0 {
		return time.Duration(n) * time.Second, true
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}
