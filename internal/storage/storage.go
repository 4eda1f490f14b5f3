package storage

import (
	"bmctest/internal/config"
	"bmctest/internal/report"
)

// Storage persists the run report and loads it back (e.g. for the summary and view commands).
type Storage interface {
	Save(agg *report.Aggregator) error
	Load() (*report.Document, error)
	Path() string

	// Resolved marks set in the failure viewer, scoped to one run ID
	LoadResolved(runID string) (map[string]bool, error)
	SaveResolved(runID string, resolved map[string]bool) error
}

// XMLStorage stores the report as a JUnit-style XML file under the configured results directory.
type XMLStorage struct {
	cfg *config.Config
}

// NewXMLStorage returns a Storage that reads/writes the config's report path.
func NewXMLStorage(cfg *config.Config) *XMLStorage {
	return &XMLStorage{cfg: cfg}
}
