package report

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bmctest/internal/domain"
)

func findSuite(t *testing.T, doc *Document, name string) Suite {
	t.Helper()
	for _, s := range doc.Suites {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("suite %q not found", name)
	return Suite{}
}

func TestAggregator_Record(t *testing.T) {
	t.Run("passed then failed in one suite", func(t *testing.T) {
		agg := New("run")
		agg.Record("api", "t1", domain.StatusPassed, "", 500*time.Millisecond)
		agg.Record("api", "t2", domain.StatusFailed, "boom", time.Second)

		doc := agg.Snapshot()
		require.Len(t, doc.Suites, 1)
		api := findSuite(t, doc, "api")
		assert.Equal(t, 2, api.Tests)
		assert.Equal(t, 1, api.Failures)
		assert.Equal(t, 0, api.Errors)
		assert.InDelta(t, 1.5, float64(api.Time), 1e-9)

		require.Len(t, api.Cases, 2)
		assert.Equal(t, "t1", api.Cases[0].Name)
		assert.Nil(t, api.Cases[0].Failure)
		require.NotNil(t, api.Cases[1].Failure)
		assert.Equal(t, "boom", api.Cases[1].Failure.Message)
		assert.Equal(t, "boom", api.Cases[1].Failure.Text)
		assert.True(t, agg.Failed())
	})

	t.Run("different suites are independent", func(t *testing.T) {
		agg := New("run")
		agg.Record("api", "a", domain.StatusPassed, "", 0)
		agg.Record("webui", "w", domain.StatusError, "no browser", 0)

		doc := agg.Snapshot()
		require.Len(t, doc.Suites, 2)
		assert.Equal(t, "api", doc.Suites[0].Name)
		assert.Equal(t, "webui", doc.Suites[1].Name)
		assert.Equal(t, 1, doc.Suites[0].Tests)
		assert.Equal(t, 1, doc.Suites[1].Tests)
		assert.Equal(t, 1, doc.Suites[1].Errors)
		require.NotNil(t, doc.Suites[1].Cases[0].Error)
	})

	t.Run("skipped does not break the run", func(t *testing.T) {
		agg := New("run")
		agg.Record("api", "thermal", domain.StatusSkipped, "no endpoint", 0)

		doc := agg.Snapshot()
		s := findSuite(t, doc, "api")
		assert.Equal(t, 1, s.Skipped)
		assert.Equal(t, 0, s.Failures+s.Errors)
		assert.False(t, agg.Failed())
		assert.Equal(t, domain.StatusSkipped, s.Cases[0].Status())
	})

	t.Run("invalid status panics", func(t *testing.T) {
		agg := New("run")
		assert.Panics(t, func() {
			agg.Record("api", "x", domain.Status("frobnicated"), "", 0)
		})
		assert.Empty(t, agg.Snapshot().Suites)
	})

	t.Run("negative duration counts as zero", func(t *testing.T) {
		agg := New("run")
		agg.Record("load", "l", domain.StatusPassed, "", -time.Second)
		assert.Equal(t, Seconds(0), agg.Snapshot().Suites[0].Time)
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		agg := New("run")
		agg.Record("api", "a", domain.StatusPassed, "", 0)
		doc := agg.Snapshot()
		agg.Record("api", "b", domain.StatusPassed, "", 0)
		assert.Len(t, doc.Suites[0].Cases, 1)
	})
}

func TestAggregator_CountersMatchCases(t *testing.T) {
	statuses := []domain.Status{domain.StatusPassed, domain.StatusFailed, domain.StatusError, domain.StatusSkipped}
	suites := []string{"webui", "api", "load"}
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 20; round++ {
		agg := New("run")
		want := map[string]map[domain.Status]int{}
		calls := map[string]int{}
		n := rng.Intn(50)
		for i := 0; i < n; i++ {
			suite := suites[rng.Intn(len(suites))]
			st := statuses[rng.Intn(len(statuses))]
			agg.Record(suite, fmt.Sprintf("c%d", i), st, "m", time.Duration(rng.Intn(1000))*time.Millisecond)
			if want[suite] == nil {
				want[suite] = map[domain.Status]int{}
			}
			want[suite][st]++
			calls[suite]++
		}

		doc := agg.Snapshot()
		assert.Len(t, doc.Suites, len(calls))
		for _, s := range doc.Suites {
			assert.Equal(t, calls[s.Name], s.Tests)
			assert.Equal(t, len(s.Cases), s.Tests)
			assert.Equal(t, want[s.Name][domain.StatusFailed], s.Failures)
			assert.Equal(t, want[s.Name][domain.StatusError], s.Errors)
			assert.Equal(t, want[s.Name][domain.StatusSkipped], s.Skipped)
			assert.LessOrEqual(t, s.Failures+s.Errors, s.Tests)

			var sum float64
			for _, c := range s.Cases {
				sum += float64(c.Time)
			}
			assert.InDelta(t, sum, float64(s.Time), 1e-6)
		}
	}
}

func TestAggregator_ConcurrentRecord(t *testing.T) {
	agg := New("run")
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				status := domain.StatusPassed
				if i%10 == 0 {
					status = domain.StatusFailed
				}
				agg.Record(fmt.Sprintf("suite-%d", worker%2), fmt.Sprintf("w%d-%d", worker, i), status, "", time.Millisecond)
			}
		}(w)
	}
	wg.Wait()

	doc := agg.Snapshot()
	require.Len(t, doc.Suites, 2)
	assert.Equal(t, 800, doc.Tests)
	assert.Equal(t, 80, doc.Failures)
	for _, s := range doc.Suites {
		assert.Equal(t, 400, s.Tests)
	}
}
