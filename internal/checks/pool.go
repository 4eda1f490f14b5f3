package checks

import (
	"context"
	"sync"
	"time"

	"bmctest/internal/domain"
)

// WorkerPool runs checks on a fixed number of workers
type WorkerPool struct {
	workers  int
	runner   *Runner
	progress Progress
}

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(workers int, runner *Runner) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	return &WorkerPool{workers: workers, runner: runner}
}

// SetProgress sets the progress bar for the worker pool
func (wp *WorkerPool) SetProgress(progress Progress) {
	wp.progress = progress
}

// Execute runs every check once. With one worker checks run in order.
// With more, each suite is a lane run sequentially by one worker, since checks
// of a suite share a session or browser tab; lanes run in parallel and the
// load suite starts only after every other lane is done.
// Checks not yet started when ctx ends are still recorded, as errors.
func (wp *WorkerPool) Execute(ctx context.Context, list []Check) Totals {
	var totals Totals
	if len(list) == 0 {
		return totals
	}

	var mu sync.Mutex
	var done int
	startTime := time.Now()

	runLane := func(lane []Check) {
		for _, c := range lane {
			result := wp.runner.RunOne(ctx, c)
			mu.Lock()
			done++
			totals.add(result.Status)
			if wp.progress != nil {
				wp.progress.Update(done, totals.Passed, totals.Failed+totals.Errors)
			}
			mu.Unlock()
		}
	}

	if wp.workers == 1 {
		runLane(list)
	} else {
		lanes, last := suiteLanes(list)
		queue := make(chan []Check, len(lanes))
		for _, lane := range lanes {
			queue <- lane
		}
		close(queue)

		var wg sync.WaitGroup
		for i := 0; i < wp.workers && i < len(lanes); i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for lane := range queue {
					runLane(lane)
				}
			}()
		}
		wg.Wait()
		runLane(last)
	}

	if wp.progress != nil {
		wp.progress.Finish()
	}
	totals.Duration = time.Since(startTime)
	return totals
}

// suiteLanes groups checks by suite in order of first appearance.
// Load checks are returned apart.
func suiteLanes(list []Check) (lanes [][]Check, load []Check) {
	index := make(map[string]int)
	for _, c := range list {
		suite := c.Suite()
		if suite == domain.SuiteLoad {
			load = append(load, c)
			continue
		}
		i, ok := index[suite]
		if !ok {
			i = len(lanes)
			index[suite] = i
			lanes = append(lanes, nil)
		}
		lanes[i] = append(lanes[i], c)
	}
	return lanes, load
}
