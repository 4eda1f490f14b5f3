package domain

import (
	"fmt"
	"time"
)

// Status is the outcome kind of a recorded test case
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// Valid reports whether s is one of the known outcome kinds
func (s Status) Valid() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusError, StatusSkipped:
		return true
	}
	return false
}

// Broken reports whether the status marks the whole run as unsuccessful
func (s Status) Broken() bool {
	return s == StatusFailed || s == StatusError
}

// ParseStatus converts a string into a Status
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown status %q", s)
	}
	return st, nil
}

// CaseResult is a single outcome event delivered to the aggregator
type CaseResult struct {
	Suite    string        // Suite category (webui, api, load)
	Name     string        // Case name
	Status   Status        // Outcome kind
	Message  string        // Human readable detail, may be empty
	Duration time.Duration // Wall-clock time of the check
}
