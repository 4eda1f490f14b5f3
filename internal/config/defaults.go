package config

import "time"

const (
	// DefaultBaseURL is the management controller address (web console and Redfish)
	DefaultBaseURL = "https://localhost:2443"
	// DefaultRedfishPath is the Redfish service root below the base URL
	DefaultRedfishPath = "/redfish/v1"
	// DefaultUsername is the management controller user
	DefaultUsername = "root"
	// DefaultPassword is the management controller password
	DefaultPassword = "0penBmc"
	// DefaultTimeout bounds every outbound network or browser call
	DefaultTimeout = 30 * time.Second
	// DefaultResultsDir is where the report and screenshots are written
	DefaultResultsDir = "/tmp/results"
	// DefaultReportFile is the report file name inside the results directory
	DefaultReportFile = "unified_test_results.xml"
	// DefaultRunName is the name attribute of the report root
	DefaultRunName = "OpenBMC Unified Tests"
	// DefaultWeatherURL is the public weather API
	DefaultWeatherURL = "https://wttr.in"
	// DefaultCity is the weather location queried by the load profile
	DefaultCity = "Novosibirsk"
	// DefaultParallel is the number of suites run at the same time
	DefaultParallel = 1

	// DefaultLoadUsers is the number of simulated users
	DefaultLoadUsers = 5
	// DefaultSpawnRate is the number of users started per second
	DefaultSpawnRate = 1.0
	// DefaultRunTime is the total load run duration
	DefaultRunTime = 30 * time.Second
	// DefaultWaitMin is the shortest pause between two tasks of one user
	DefaultWaitMin = 1 * time.Second
	// DefaultWaitMax is the longest pause between two tasks of one user
	DefaultWaitMax = 3 * time.Second
	// DefaultPageSettle is the pause after opening the web console
	DefaultPageSettle = 3 * time.Second
	// DefaultLoginSettle is the pause after submitting the login form
	DefaultLoginSettle = 5 * time.Second
	// DefaultLoadGrace is added to the run time to bound an external load command
	DefaultLoadGrace = 30 * time.Second

	// EnvPrefix prefixes every environment override
	EnvPrefix = "BMCTEST_"
)

// DefaultResetTypes are the reset actions posted by the power management check
var DefaultResetTypes = []string{"GracefulRestart", "ForceRestart"}

// DefaultChromePaths are tried in order when no browser binary is configured
var DefaultChromePaths = []string{
	"/usr/bin/google-chrome",
	"/usr/bin/chromium-browser",
	"/usr/bin/chromium",
	"/usr/bin/chrome",
}
