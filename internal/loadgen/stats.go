package loadgen

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"
)

const maxErrorKey = 100

// TaskStats summarises one task of a run
type TaskStats struct {
	Name       string
	Requests   int64
	Failures   int64
	AvgLatency time.Duration
	P95Latency time.Duration
	MaxLatency time.Duration
}

// ErrorCount is one distinct error and how often it occurred
type ErrorCount struct {
	Message string
	Count   int64
}

// Summary aggregates the results of a load run
type Summary struct {
	Profile        string
	Users          int
	StartTime      time.Time
	EndTime        time.Time
	TotalRequests  int64
	FailureCount   int64
	MinLatency     time.Duration
	MaxLatency     time.Duration
	AvgLatency     time.Duration
	P50Latency     time.Duration
	P95Latency     time.Duration
	P99Latency     time.Duration
	RequestsPerSec float64
	ErrorRate      float64
	Tasks          []TaskStats
	Errors         []ErrorCount // most frequent first
}

// String is the one-line form stored in the report
func (s *Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d requests, %d failures (%.2f%%), %.2f req/s, avg %s, p95 %s, max %s",
		s.TotalRequests, s.FailureCount, s.ErrorRate*100, s.RequestsPerSec,
		s.AvgLatency.Round(time.Millisecond), s.P95Latency.Round(time.Millisecond), s.MaxLatency.Round(time.Millisecond))
	if len(s.Errors) > 0 {
		fmt.Fprintf(&b, "; top error: %s (x%d)", s.Errors[0].Message, s.Errors[0].Count)
	}
	return b.String()
}

// maxSamples bounds the latencies kept per task for percentiles
const maxSamples = 10000

type taskSamples struct {
	requests  int64
	failures  int64
	total     time.Duration
	min       time.Duration
	max       time.Duration
	latencies []time.Duration // uniform sample of at most maxSamples
}

// observe counts one request. Min, max and average stay exact; percentiles
// come from a reservoir sample once more than maxSamples requests were seen.
func (t *taskSamples) observe(d time.Duration) {
	t.requests++
	t.total += d
	if t.requests == 1 || d < t.min {
		t.min = d
	}
	if d > t.max {
		t.max = d
	}
	if len(t.latencies) < maxSamples {
		t.latencies = append(t.latencies, d)
		return
	}
	if i := rand.Int63n(t.requests); i < maxSamples {
		t.latencies[i] = d
	}
}

func (t *taskSamples) avg() time.Duration {
	if t.requests == 0 {
		return 0
	}
	return t.total / time.Duration(t.requests)
}

// stats collects raw samples of a run
type stats struct {
	mu     sync.Mutex
	tasks  map[string]*taskSamples
	order  []string
	errors map[string]int64
}

func newStats() *stats {
	return &stats{
		tasks:  make(map[string]*taskSamples),
		errors: make(map[string]int64),
	}
}

func (s *stats) add(task string, d time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[task]
	if !ok {
		t = &taskSamples{}
		s.tasks[task] = t
		s.order = append(s.order, task)
	}
	t.observe(d)
	if err != nil {
		t.failures++
		key := fmt.Sprintf("%s: %s", task, err.Error())
		if len(key) > maxErrorKey {
			key = key[:maxErrorKey]
		}
		s.errors[key]++
	}
}

func (s *stats) summary(start, end time.Time) *Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := &Summary{StartTime: start, EndTime: end}
	var all []time.Duration
	var total time.Duration
	for _, name := range s.order {
		t := s.tasks[name]
		sum.TotalRequests += t.requests
		sum.FailureCount += t.failures
		all = append(all, t.latencies...)
		total += t.total
		if t.requests > 0 && (sum.MinLatency == 0 || t.min < sum.MinLatency) {
			sum.MinLatency = t.min
		}
		if t.max > sum.MaxLatency {
			sum.MaxLatency = t.max
		}

		_, _, _, _, p95, _ := calculatePercentiles(t.latencies)
		sum.Tasks = append(sum.Tasks, TaskStats{
			Name:       name,
			Requests:   t.requests,
			Failures:   t.failures,
			AvgLatency: t.avg(),
			P95Latency: p95,
			MaxLatency: t.max,
		})
	}

	if d := end.Sub(start).Seconds(); d > 0 {
		sum.RequestsPerSec = float64(sum.TotalRequests) / d
	}
	if sum.TotalRequests > 0 {
		sum.ErrorRate = float64(sum.FailureCount) / float64(sum.TotalRequests)
		sum.AvgLatency = total / time.Duration(sum.TotalRequests)
	}
	_, _, _, sum.P50Latency, sum.P95Latency, sum.P99Latency = calculatePercentiles(all)

	for msg, n := range s.errors {
		sum.Errors = append(sum.Errors, ErrorCount{Message: msg, Count: n})
	}
	sort.Slice(sum.Errors, func(i, j int) bool {
		if sum.Errors[i].Count != sum.Errors[j].Count {
			return sum.Errors[i].Count > sum.Errors[j].Count
		}
		return sum.Errors[i].Message < sum.Errors[j].Message
	})
	return sum
}

// calculatePercentiles computes latency statistics
func calculatePercentiles(latencies []time.Duration) (min, max, avg, p50, p95, p99 time.Duration) {
	if len(latencies) == 0 {
		return
	}

	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	min = sorted[0]
	max = sorted[len(sorted)-1]

	var total time.Duration
	for _, l := range sorted {
		total += l
	}
	avg = total / time.Duration(len(sorted))

	p50 = sorted[len(sorted)*50/100]
	p95 = sorted[len(sorted)*95/100]
	p99 = sorted[len(sorted)*99/100]
	return
}
