// Package report aggregates check outcomes into one JUnit-style report per run.
package report

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"bmctest/internal/domain"
)

// Aggregator collects outcome events from every check of a run.
// It is safe for concurrent use.
type Aggregator struct {
	mu      sync.Mutex
	name    string
	id      string
	started time.Time
	suites  []*suiteState
	index   map[string]*suiteState
}

type suiteState struct {
	name     string
	failures int
	errors   int
	skipped  int
	elapsed  time.Duration
	cases    []Case
}

// New creates an empty aggregator for a run started now
func New(name string) *Aggregator {
	return &Aggregator{
		name:    name,
		id:      uuid.NewString(),
		started: time.Now(),
		index:   make(map[string]*suiteState),
	}
}

// ID returns the run identifier written into the report
func (a *Aggregator) ID() string {
	return a.id
}

// Record appends one case to the named suite, creating the suite on first use.
// An unknown status is a programming error and panics. Negative durations count as zero.
func (a *Aggregator) Record(suite, name string, status domain.Status, message string, duration time.Duration) {
	if !status.Valid() {
		panic(fmt.Sprintf("report: invalid status %q for %s/%s", status, suite, name))
	}
	if duration < 0 {
		duration = 0
	}

	c := Case{Name: name, Time: Seconds(duration.Seconds())}
	switch status {
	case domain.StatusFailed:
		c.Failure = &Message{Message: message, Text: message}
	case domain.StatusError:
		c.Error = &Message{Message: message, Text: message}
	case domain.StatusSkipped:
		c.Skipped = &Message{Message: message}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.index[suite]
	if !ok {
		s = &suiteState{name: suite}
		a.index[suite] = s
		a.suites = append(a.suites, s)
	}
	s.cases = append(s.cases, c)
	s.elapsed += duration
	switch status {
	case domain.StatusFailed:
		s.failures++
	case domain.StatusError:
		s.errors++
	case domain.StatusSkipped:
		s.skipped++
	}
}

// RecordResult is Record for a prepared event
func (a *Aggregator) RecordResult(r domain.CaseResult) {
	a.Record(r.Suite, r.Name, r.Status, r.Message, r.Duration)
}

// Snapshot returns a copy of the accumulated state as a report document
func (a *Aggregator) Snapshot() *Document {
	a.mu.Lock()
	defer a.mu.Unlock()

	doc := &Document{
		Name:      a.name,
		Timestamp: a.started.Format(time.RFC3339),
		ID:        a.id,
	}
	var total time.Duration
	for _, s := range a.suites {
		cases := make([]Case, len(s.cases))
		copy(cases, s.cases)
		doc.Suites = append(doc.Suites, Suite{
			Name:     s.name,
			Tests:    len(s.cases),
			Failures: s.failures,
			Errors:   s.errors,
			Skipped:  s.skipped,
			Time:     Seconds(s.elapsed.Seconds()),
			Cases:    cases,
		})
		doc.Tests += len(s.cases)
		doc.Failures += s.failures
		doc.Errors += s.errors
		doc.Skipped += s.skipped
		total += s.elapsed
	}
	doc.Time = Seconds(total.Seconds())
	return doc
}

// Failed reports whether any recorded case failed or errored
func (a *Aggregator) Failed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, s := range a.suites {
		if s.failures > 0 || s.errors > 0 {
			return true
		}
	}
	return false
}

// Serialize writes the report to path, creating its directory if needed.
// Readers see either the previous file or the complete new one.
func (a *Aggregator) Serialize(path string) error {
	data, err := a.Snapshot().Encode()
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}
