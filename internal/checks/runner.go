package checks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bmctest/internal/config"
	"bmctest/internal/domain"
)

// Recorder receives one outcome per check
type Recorder interface {
	Record(suite, name string, status domain.Status, message string, duration time.Duration)
}

// Progress is notified after every finished check
type Progress interface {
	Update(done, passed, failed int)
	Finish()
}

// Totals counts the outcomes of one Run
type Totals struct {
	Passed   int
	Failed   int
	Errors   int
	Skipped  int
	Duration time.Duration
}

// Broken reports whether any check failed or errored
func (t Totals) Broken() bool {
	return t.Failed+t.Errors > 0
}

func (t *Totals) add(s domain.Status) {
	switch s {
	case domain.StatusPassed:
		t.Passed++
	case domain.StatusFailed:
		t.Failed++
	case domain.StatusError:
		t.Errors++
	case domain.StatusSkipped:
		t.Skipped++
	}
}

// Runner executes checks, bounding each by a timeout and recording every outcome
type Runner struct {
	recorder Recorder
	logger   *zap.Logger
	timeout  time.Duration
	workers  int
	strict   bool
	progress Progress
}

// NewRunner creates a new Runner
func NewRunner(cfg *config.Config, recorder Recorder, logger *zap.Logger) *Runner {
	return &Runner{
		recorder: recorder,
		logger:   logger,
		timeout:  cfg.Timeout,
		workers:  cfg.Parallel,
		strict:   cfg.Flags.Strict,
	}
}

// SetProgress sets the progress bar notified by Run
func (r *Runner) SetProgress(p Progress) {
	r.progress = p
}

// Run executes all checks with the configured parallelism (sequential by default)
func (r *Runner) Run(ctx context.Context, list []Check) Totals {
	pool := NewWorkerPool(r.workers, r)
	pool.SetProgress(r.progress)
	return pool.Execute(ctx, list)
}

// RunOne executes a single check and records its outcome exactly once
func (r *Runner) RunOne(ctx context.Context, c Check) domain.CaseResult {
	timeout := r.timeout
	if t, ok := c.(Timeouter); ok && t.Timeout() > 0 {
		timeout = t.Timeout()
	}
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := ctx.Err()
	if err == nil {
		err = call(checkCtx, c)
	}
	duration := time.Since(start)

	status, message := Classify(err)
	if status == domain.StatusError && errors.Is(checkCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		message = fmt.Sprintf("timed out after %s: %s", timeout, message)
	}
	if status == domain.StatusSkipped && r.strict {
		status = domain.StatusFailed
		message = "skipped in strict mode: " + message
	}

	result := domain.CaseResult{
		Suite:    c.Suite(),
		Name:     c.Name(),
		Status:   status,
		Message:  message,
		Duration: duration,
	}
	r.recorder.Record(result.Suite, result.Name, result.Status, result.Message, result.Duration)
	r.log(result)
	return result
}

func (r *Runner) log(res domain.CaseResult) {
	fields := []zap.Field{
		zap.String("suite", res.Suite),
		zap.String("case", res.Name),
		zap.String("status", string(res.Status)),
		zap.Duration("duration", res.Duration),
	}
	if res.Message != "" {
		fields = append(fields, zap.String("message", res.Message))
	}
	switch res.Status {
	case domain.StatusFailed, domain.StatusError:
		r.logger.Warn("check finished", fields...)
	default:
		r.logger.Info("check finished", fields...)
	}
}

// call runs the check, turning a panic into an error so the outcome is still recorded
func call(ctx context.Context, c Check) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return c.Run(ctx)
}
