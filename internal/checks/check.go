// Package checks runs named end-to-end checks and records exactly one outcome per check.
package checks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bmctest/internal/domain"
)

// Check is one named end-to-end check
type Check interface {
	Name() string
	Suite() string
	Run(ctx context.Context) error
}

// Timeouter is implemented by checks needing a longer budget than the per-check default
type Timeouter interface {
	Timeout() time.Duration
}

// Describer is implemented by checks with a one-line description
type Describer interface {
	Description() string
}

// Failure reports that an assertion about observed behavior did not hold
type Failure struct {
	Message string
}

func (e *Failure) Error() string { return e.Message }

// Skip excuses a check whose resource is genuinely unavailable
type Skip struct {
	Reason string
}

func (e *Skip) Error() string { return "skipped: " + e.Reason }

// Pass carries the detail message of a passed check
type Pass struct {
	Message string
}

func (e *Pass) Error() string { return e.Message }

// Failf returns a *Failure
func Failf(format string, args ...any) error {
	return &Failure{Message: fmt.Sprintf(format, args...)}
}

// Skipf returns a *Skip
func Skipf(format string, args ...any) error {
	return &Skip{Reason: fmt.Sprintf(format, args...)}
}

// Passed returns a *Pass with a detail message for the report
func Passed(format string, args ...any) error {
	return &Pass{Message: fmt.Sprintf(format, args...)}
}

// Classify maps the error returned by Check.Run to an outcome kind and message
func Classify(err error) (domain.Status, string) {
	if err == nil {
		return domain.StatusPassed, ""
	}

	var pass *Pass
	if errors.As(err, &pass) {
		return domain.StatusPassed, pass.Message
	}
	var fail *Failure
	if errors.As(err, &fail) {
		return domain.StatusFailed, fail.Message
	}
	var skip *Skip
	if errors.As(err, &skip) {
		return domain.StatusSkipped, skip.Reason
	}
	return domain.StatusError, err.Error()
}

// Func adapts a function into a Check
type Func struct {
	CaseName  string
	SuiteName string
	Desc      string
	Limit     time.Duration // zero means the runner default
	Fn        func(ctx context.Context) error
}

func (f *Func) Name() string { return f.CaseName }
func (f *Func) Suite() string { return f.SuiteName }
func (f *Func) Description() string { return f.Desc }
func (f *Func) Timeout() time.Duration { return f.Limit }
func (f *Func) Run(ctx context.Context) error { return f.Fn(ctx) }

// Info describes a check for listing
func Info(c Check) domain.CheckInfo {
	info := domain.CheckInfo{Suite: c.Suite(), Name: c.Name()}
	if d, ok := c.(Describer); ok {
		info.Description = d.Description()
	}
	return info
}

// sleep pauses for d unless ctx ends first
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
