package storage

import (
	"fmt"

	"bmctest/internal/report"
)

// Path returns the report file location, resolved at call time so flags apply.
func (s *XMLStorage) Path() string {
	return s.cfg.GetReportPath()
}

// Save serializes the aggregated run to the report file.
func (s *XMLStorage) Save(agg *report.Aggregator) error {
	if err := agg.Serialize(s.Path()); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

// Load reads the last report from the report file.
func (s *XMLStorage) Load() (*report.Document, error) {
	doc, err := report.Load(s.Path())
	if err != nil {
		return nil, fmt.Errorf("load report %s: %w", s.Path(), err)
	}
	return doc, nil
}
