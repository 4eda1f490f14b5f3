package domain

// Suite categories used by the checks driver
const (
	SuiteWebUI = "webui"
	SuiteAPI   = "api"
	SuiteLoad  = "load"
)

// Suites lists the known categories in report order
var Suites = []string{SuiteWebUI, SuiteAPI, SuiteLoad}

// CheckInfo describes a registered check without running it
type CheckInfo struct {
	Suite       string // Suite category
	Name        string // Case name recorded in the report
	Description string // One line shown by the list command
}
