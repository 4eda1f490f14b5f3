package loadgen

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const stopTimeout = 5 * time.Second

// Engine runs one Profile
type Engine struct {
	profile  Profile
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics
	stats    *stats

	mu      sync.Mutex
	running bool
}

// NewEngine validates the profile and prepares a fresh metrics registry
func NewEngine(p Profile, logger *zap.Logger) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid load profile: %w", err)
	}
	if p.RequestTimeout <= 0 {
		p.RequestTimeout = 30 * time.Second
	}
	reg := prometheus.NewRegistry()
	return &Engine{
		profile:  p,
		logger:   logger,
		registry: reg,
		metrics:  newMetrics(reg),
		stats:    newStats(),
	}, nil
}

// Registry exposes the run's metrics
func (e *Engine) Registry() *prometheus.Registry {
	return e.registry
}

// Run spawns users at the profile's spawn rate and lets them work until RunTime elapses.
// It fails only when ctx ends before the run does.
func (e *Engine) Run(ctx context.Context) (*Summary, error) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil, errors.New("load run already in progress")
	}
	e.running = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	p := e.profile
	start := time.Now()
	runCtx, cancel := context.WithTimeout(ctx, p.RunTime)
	defer cancel()

	e.logger.Info("load run started",
		zap.String("profile", p.Name),
		zap.Int("users", p.Users),
		zap.Float64("spawn_rate", p.SpawnRate),
		zap.Duration("run_time", p.RunTime))

	limiter := rate.NewLimiter(rate.Limit(p.SpawnRate), 1)
	var g errgroup.Group
	spawned := 0
	for i := 0; i < p.Users; i++ {
		if err := limiter.Wait(runCtx); err != nil {
			// Run time ended before every user was spawned
			break
		}
		class := p.classFor(i)
		id := i + 1
		spawned++
		g.Go(func() error {
			e.runUser(runCtx, id, class)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load run interrupted: %w", err)
	}

	sum := e.stats.summary(start, time.Now())
	sum.Profile = p.Name
	sum.Users = spawned
	e.logger.Info("load run finished",
		zap.Int64("requests", sum.TotalRequests),
		zap.Int64("failures", sum.FailureCount),
		zap.Float64("rps", sum.RequestsPerSec))
	return sum, nil
}

func (e *Engine) runUser(ctx context.Context, id int, class UserClass) {
	logger := e.logger.With(zap.String("class", class.Name), zap.Int("user", id))
	u := class.New()
	tasks := u.Tasks()
	total := totalWeight(tasks)

	e.metrics.activeUsers.Inc()
	defer e.metrics.activeUsers.Dec()

	if s, ok := u.(Stopper); ok {
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
			defer cancel()
			if err := s.OnStop(stopCtx); err != nil {
				logger.Debug("user stop failed", zap.Error(err))
			}
		}()
	}

	if s, ok := u.(Starter); ok {
		e.execute(ctx, logger, class.Name+".on_start", s.OnStart)
	}
	if total == 0 {
		<-ctx.Done()
		return
	}

	for ctx.Err() == nil {
		task, _ := pickTask(tasks, rand.Intn(total))
		e.execute(ctx, logger, task.Name, task.Run)
		if !e.wait(ctx) {
			return
		}
	}
}

// execute runs fn under the request timeout and records it, unless the run ended meanwhile
func (e *Engine) execute(ctx context.Context, logger *zap.Logger, name string, fn func(context.Context) error) {
	reqCtx, cancel := context.WithTimeout(ctx, e.profile.RequestTimeout)
	defer cancel()

	start := time.Now()
	err := fn(reqCtx)
	d := time.Since(start)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		logger.Debug("task failed", zap.String("task", name), zap.Error(err))
	}
	e.stats.add(name, d, err)
	e.metrics.observe(name, d, err)
}

// wait sleeps a random time in [WaitMin, WaitMax]; false when the run ended
func (e *Engine) wait(ctx context.Context) bool {
	d := e.profile.WaitMin
	if span := e.profile.WaitMax - e.profile.WaitMin; span > 0 {
		d += time.Duration(rand.Int63n(int64(span + 1)))
	}
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
