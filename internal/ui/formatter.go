package ui

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"bmctest/internal/config"
	"bmctest/internal/domain"
	"bmctest/internal/loadgen"
	"bmctest/internal/report"
)

// Formatter formats and displays output
type Formatter struct {
	config *config.Config
	out    io.Writer
}

// NewFormatter creates a new Formatter writing to out (stdout when nil)
func NewFormatter(cfg *config.Config, out io.Writer) *Formatter {
	if out == nil {
		out = os.Stdout
	}
	return &Formatter{
		config: cfg,
		out:    out,
	}
}

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
)

// PrintSummary prints the per-suite statistics of a report and its non-passing cases
func (f *Formatter) PrintSummary(doc *report.Document) {
	fmt.Fprintln(f.out)
	cyan.Fprintln(f.out, "╔═══════════════════════════════════════════════════════════════╗")
	cyan.Fprintln(f.out, "║                     Test Run Statistics                       ║")
	cyan.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")
	fmt.Fprintf(f.out, "%s  %s  %s\n\n", doc.Name, doc.Timestamp, doc.ID)

	table := tablewriter.NewWriter(f.out)
	table.SetHeader([]string{"SUITE", "TESTS", "PASSED", "FAILED", "ERRORS", "SKIPPED", "TIME"})
	for _, s := range doc.Suites {
		passed := s.Tests - s.Failures - s.Errors - s.Skipped
		table.Append([]string{
			s.Name,
			strconv.Itoa(s.Tests),
			strconv.Itoa(passed),
			strconv.Itoa(s.Failures),
			strconv.Itoa(s.Errors),
			strconv.Itoa(s.Skipped),
			formatSeconds(float64(s.Time)),
		})
	}
	passed := doc.Tests - doc.Failures - doc.Errors - doc.Skipped
	table.SetFooter([]string{
		"total",
		strconv.Itoa(doc.Tests),
		strconv.Itoa(passed),
		strconv.Itoa(doc.Failures),
		strconv.Itoa(doc.Errors),
		strconv.Itoa(doc.Skipped),
		formatSeconds(float64(doc.Time)),
	})
	table.Render()

	fmt.Fprintln(f.out)
	switch {
	case doc.Tests == 0:
		yellow.Fprintln(f.out, "! No checks were run")
	case !doc.Broken():
		green.Fprintf(f.out, "✓ All %d checks passed", passed)
		if doc.Skipped > 0 {
			yellow.Fprintf(f.out, " (%d skipped)", doc.Skipped)
		}
		fmt.Fprintln(f.out)
	default:
		red.Fprintf(f.out, "✗ %d check(s) failed, %d errored\n", doc.Failures, doc.Errors)
	}

	nonPassing := doc.NonPassing()
	if len(nonPassing) > 0 {
		fmt.Fprintln(f.out)
		f.printFailedTree(nonPassing)
	}
}

// printFailedTree prints non-passing cases grouped by suite
func (f *Formatter) printFailedTree(failures []domain.Failure) {
	var suites []string
	bySuite := make(map[string][]domain.Failure)
	for _, fl := range failures {
		if _, ok := bySuite[fl.Suite]; !ok {
			suites = append(suites, fl.Suite)
		}
		bySuite[fl.Suite] = append(bySuite[fl.Suite], fl)
	}

	for i, suite := range suites {
		cyan.Fprintln(f.out, suite)
		cases := bySuite[suite]
		for j, fl := range cases {
			connector := "  |_"
			if j == len(cases)-1 {
				connector = "   |_"
			}
			c := red
			if fl.Status == domain.StatusSkipped {
				c = yellow
			}
			c.Fprintf(f.out, "%s %s [%s]", connector, fl.Name, fl.Status)
			if fl.Message != "" {
				fmt.Fprintf(f.out, " %s", firstLine(fl.Message))
			}
			fmt.Fprintln(f.out)
		}
		if i < len(suites)-1 {
			fmt.Fprintln(f.out)
		}
	}
}

// PrintCheckList prints checks as a tree by suite. failed is optional; checks in it
// (keyed "suite/name", from the last report) are marked with [F].
func (f *Formatter) PrintCheckList(infos []domain.CheckInfo, showDescriptions bool, failed map[string]struct{}) {
	green.Fprintf(f.out, "Found %d check(s):\n\n", len(infos))

	var suites []string
	bySuite := make(map[string][]domain.CheckInfo)
	for _, info := range infos {
		if _, ok := bySuite[info.Suite]; !ok {
			suites = append(suites, info.Suite)
		}
		bySuite[info.Suite] = append(bySuite[info.Suite], info)
	}

	for i, suite := range suites {
		isLastSuite := i == len(suites)-1
		if isLastSuite {
			cyan.Fprintf(f.out, "└── %s\n", suite)
		} else {
			cyan.Fprintf(f.out, "├── %s\n", suite)
		}

		cases := bySuite[suite]
		for j, info := range cases {
			isLastCase := j == len(cases)-1
			var prefix string
			switch {
			case isLastSuite && isLastCase:
				prefix = "    └── "
			case isLastSuite:
				prefix = "    ├── "
			case isLastCase:
				prefix = "│   └── "
			default:
				prefix = "│   ├── "
			}

			line := prefix + yellow.Sprint(info.Name)
			if _, ok := failed[info.Suite+"/"+info.Name]; ok {
				line += " " + red.Sprint("[F]")
			}
			if showDescriptions && info.Description != "" {
				line += "  " + info.Description
			}
			fmt.Fprintln(f.out, line)
		}
	}
}

// PrintLoadSummary prints the per-task statistics of an embedded load run
func (f *Formatter) PrintLoadSummary(sum *loadgen.Summary) {
	fmt.Fprintln(f.out)
	cyan.Fprintf(f.out, "Load profile %q: %d users, %s\n", sum.Profile, sum.Users, sum.EndTime.Sub(sum.StartTime).Round(time.Millisecond))

	table := tablewriter.NewWriter(f.out)
	table.SetHeader([]string{"TASK", "REQUESTS", "FAILURES", "AVG", "P95", "MAX"})
	for _, t := range sum.Tasks {
		table.Append([]string{
			t.Name,
			strconv.FormatInt(t.Requests, 10),
			strconv.FormatInt(t.Failures, 10),
			formatLatency(t.AvgLatency),
			formatLatency(t.P95Latency),
			formatLatency(t.MaxLatency),
		})
	}
	table.SetFooter([]string{
		"total",
		strconv.FormatInt(sum.TotalRequests, 10),
		strconv.FormatInt(sum.FailureCount, 10),
		formatLatency(sum.AvgLatency),
		formatLatency(sum.P95Latency),
		formatLatency(sum.MaxLatency),
	})
	table.Render()

	fmt.Fprintf(f.out, "%.2f req/s, error rate %.2f%%\n", sum.RequestsPerSec, sum.ErrorRate*100)
	for _, e := range sum.Errors {
		red.Fprintf(f.out, "  %dx %s\n", e.Count, e.Message)
	}
}

func formatSeconds(s float64) string {
	return fmt.Sprintf("%.2fs", s)
}

func formatLatency(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
