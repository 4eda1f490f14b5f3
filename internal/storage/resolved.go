package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// resolvedFile is the sidecar written next to the report
type resolvedFile struct {
	RunID    string   `json:"run_id"`
	Resolved []string `json:"resolved"`
}

// ResolvedPath returns the sidecar location for the report
func (s *XMLStorage) ResolvedPath() string {
	p := s.Path()
	return strings.TrimSuffix(p, filepath.Ext(p)) + ".resolved.json"
}

// LoadResolved returns the case keys marked resolved for runID.
// Marks of another run or a missing file yield an empty set.
func (s *XMLStorage) LoadResolved(runID string) (map[string]bool, error) {
	resolved := make(map[string]bool)
	data, err := os.ReadFile(s.ResolvedPath())
	if errors.Is(err, os.ErrNotExist) {
		return resolved, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read resolved marks: %w", err)
	}

	var f resolvedFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse resolved marks: %w", err)
	}
	if f.RunID != runID {
		return resolved, nil
	}
	for _, k := range f.Resolved {
		resolved[k] = true
	}
	return resolved, nil
}

// SaveResolved replaces the sidecar with the marks of runID
func (s *XMLStorage) SaveResolved(runID string, resolved map[string]bool) error {
	f := resolvedFile{RunID: runID, Resolved: []string{}}
	for k, ok := range resolved {
		if ok {
			f.Resolved = append(f.Resolved, k)
		}
	}
	sort.Strings(f.Resolved)

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal resolved marks: %w", err)
	}
	if err := os.WriteFile(s.ResolvedPath(), data, 0644); err != nil {
		return fmt.Errorf("write resolved marks: %w", err)
	}
	return nil
}
