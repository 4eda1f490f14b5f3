package cli

import (
	"time"

	"github.com/spf13/pflag"

	"bmctest/internal/config"
)

// Flags holds command-line flags
type Flags struct {
	BaseURL     string
	Username    string
	Password    string
	Timeout     time.Duration
	VerifyTLS   bool
	ResultsDir  string
	ReportFile  string
	Parallel    int
	NameFilter  string
	SkipUI      bool
	SkipAPI     bool
	SkipLoad    bool
	Strict      bool
	DryReset    bool
	ResetTypes  []string
	ChromePath  string
	WeatherURL  string
	City        string
	LoadUsers   int
	SpawnRate   float64
	RunTime     time.Duration
	ProfileFile string
	LoadCommand string
	MetricsAddr string
	LogLevel    string
	LogFormat   string
	Interactive bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		BaseURL:     f.BaseURL,
		Username:    f.Username,
		Password:    f.Password,
		Timeout:     f.Timeout,
		VerifyTLS:   f.VerifyTLS,
		ResultsDir:  f.ResultsDir,
		ReportFile:  f.ReportFile,
		Parallel:    f.Parallel,
		NameFilter:  f.NameFilter,
		SkipUI:      f.SkipUI,
		SkipAPI:     f.SkipAPI,
		SkipLoad:    f.SkipLoad,
		Strict:      f.Strict,
		DryReset:    f.DryReset,
		ResetTypes:  f.ResetTypes,
		ChromePath:  f.ChromePath,
		WeatherURL:  f.WeatherURL,
		City:        f.City,
		LoadUsers:   f.LoadUsers,
		SpawnRate:   f.SpawnRate,
		RunTime:     f.RunTime,
		ProfileFile: f.ProfileFile,
		LoadCommand: f.LoadCommand,
		MetricsAddr: f.MetricsAddr,
		LogLevel:    f.LogLevel,
		LogFormat:   f.LogFormat,
		Interactive: f.Interactive,
	}
}

// AddGlobalFlags registers flags shared by every command
func (f *Flags) AddGlobalFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.ResultsDir, "results-dir", "", "Directory for the report and screenshots (default "+config.DefaultResultsDir+")")
	fs.StringVar(&f.ReportFile, "report", "", "Report file name inside the results directory (default "+config.DefaultReportFile+")")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.StringVar(&f.LogFormat, "log-format", "", "Log format: console or json")
}

// AddTargetFlags registers the management controller connection flags
func (f *Flags) AddTargetFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.BaseURL, "base-url", "", "Management controller base URL (default "+config.DefaultBaseURL+")")
	fs.StringVarP(&f.Username, "user", "u", "", "Management controller user")
	fs.StringVar(&f.Password, "password", "", "Management controller password")
	fs.DurationVar(&f.Timeout, "timeout", 0, "Timeout of every network or browser call (default 30s)")
	fs.BoolVar(&f.VerifyTLS, "verify-tls", false, "Verify the controller TLS certificate")
}

// AddSelectFlags registers the check selection flags
func (f *Flags) AddSelectFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&f.NameFilter, "filter", "f", "", "Filter checks by name pattern (supports wildcards, e.g. 'test_api_*' or 'webui/*')")
	fs.BoolVar(&f.SkipUI, "skip-ui", false, "Skip the web console checks")
	fs.BoolVar(&f.SkipAPI, "skip-api", false, "Skip the Redfish API checks")
	fs.BoolVar(&f.SkipLoad, "skip-load", false, "Skip the load test")
}

// AddCheckFlags registers the check behavior flags
func (f *Flags) AddCheckFlags(fs *pflag.FlagSet) {
	fs.IntVarP(&f.Parallel, "parallel", "p", 0, "Number of suites run at the same time; checks of one suite stay sequential (default 1)")
	fs.BoolVar(&f.Strict, "strict", false, "Record skipped checks as failures")
	fs.BoolVar(&f.DryReset, "dry-reset", false, "Validate reset types without posting reset actions")
	fs.StringSliceVar(&f.ResetTypes, "reset-types", nil, "Reset types posted by the power management check")
	fs.StringVar(&f.ChromePath, "chrome-path", "", "Browser binary used by the web console checks")
	fs.BoolVar(&f.Interactive, "view", false, "Open the failure viewer when the run finishes with failures")
}

// AddLoadFlags registers the load test flags
func (f *Flags) AddLoadFlags(fs *pflag.FlagSet) {
	fs.IntVar(&f.LoadUsers, "users", 0, "Number of simulated users (default 5)")
	fs.Float64Var(&f.SpawnRate, "spawn-rate", 0, "Users started per second (default 1)")
	fs.DurationVar(&f.RunTime, "run-time", 0, "Load run duration (default 30s)")
	fs.StringVar(&f.ProfileFile, "profile", "", "YAML load profile file")
	fs.StringVar(&f.LoadCommand, "load-command", "", "Run this external load command instead of the embedded engine")
	fs.StringVar(&f.WeatherURL, "weather-url", "", "Weather API base URL")
	fs.StringVar(&f.City, "city", "", "City queried by the weather users")
	fs.StringVar(&f.MetricsAddr, "metrics-addr", "", "Serve load metrics on this address while the load test runs")
}
