package ui

import "bmctest/internal/report"

// Viewer displays a saved report interactively
type Viewer interface {
	View(doc *report.Document) error
}
