package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// "         Aggregated      80     2(2.50%) |     35      12     120     30 |    2.67        0.07"
	aggregatedLine = regexp.MustCompile(`Aggregated\s+(\d+)\s+(\d+)\(([\d.]+)%\)\s*\|\s*(\d+)\s+(\d+)\s+(\d+)\s+(\d+)\s*\|\s*([\d.]+)\s+([\d.]+)`)
	// "3                  GET /redfish/v1/Systems/system: HTTPError('503 Server Error')"
	errorLine = regexp.MustCompile(`^\s*(\d+)\s+(\S.*)$`)
)

// Stats is the aggregated request line of a locust run
type Stats struct {
	Requests       int
	Failures       int
	FailurePercent float64
	AvgMs          int
	MinMs          int
	MaxMs          int
	MedianMs       int
	RPS            float64
	FailuresPerSec float64
}

// String is the short form stored in the report
func (s Stats) String() string {
	return fmt.Sprintf("%d requests, %d failures (%.2f%%), %.2f req/s, avg %dms, max %dms",
		s.Requests, s.Failures, s.FailurePercent, s.RPS, s.AvgMs, s.MaxMs)
}

// ErrorLine is one row of locust's error report
type ErrorLine struct {
	Occurrences int
	Message     string
}

// LocustParser parses locust headless console output
type LocustParser struct{}

// NewLocustParser creates a new LocustParser
func NewLocustParser() *LocustParser {
	return &LocustParser{}
}

// ParseStats returns the last "Aggregated" line. Locust prints the table
// periodically, the last one holds the final totals.
func (p *LocustParser) ParseStats(output string) (Stats, bool) {
	matches := aggregatedLine.FindAllStringSubmatch(output, -1)
	if len(matches) == 0 {
		return Stats{}, false
	}
	m := matches[len(matches)-1]

	var s Stats
	s.Requests, _ = strconv.Atoi(m[1])
	s.Failures, _ = strconv.Atoi(m[2])
	s.FailurePercent, _ = strconv.ParseFloat(m[3], 64)
	s.AvgMs, _ = strconv.Atoi(m[4])
	s.MinMs, _ = strconv.Atoi(m[5])
	s.MaxMs, _ = strconv.Atoi(m[6])
	s.MedianMs, _ = strconv.Atoi(m[7])
	s.RPS, _ = strconv.ParseFloat(m[8], 64)
	s.FailuresPerSec, _ = strconv.ParseFloat(m[9], 64)
	return s, true
}

// ParseErrors reads the rows of the last "Error report" table
func (p *LocustParser) ParseErrors(output string) []ErrorLine {
	lines := strings.Split(output, "\n")

	start := -1
	for i, line := range lines {
		if strings.Contains(line, "Error report") {
			start = i
		}
	}
	if start < 0 {
		return nil
	}

	var errs []ErrorLine
	for _, line := range lines[start+1:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if len(errs) > 0 {
				break
			}
			continue
		}
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "-") {
			continue
		}
		m := errorLine.FindStringSubmatch(line)
		if m == nil {
			break
		}
		n, _ := strconv.Atoi(m[1])
		errs = append(errs, ErrorLine{Occurrences: n, Message: strings.TrimSpace(m[2])})
	}
	return errs
}
