package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Target settings
	BaseURL     string
	RedfishPath string
	Username    string
	Password    string
	Timeout     time.Duration
	VerifyTLS   bool

	// Output settings
	ResultsDir string
	ReportFile string
	RunName    string

	// Check settings
	Parallel   int
	ResetTypes []string
	ChromePath string

	// Load settings
	WeatherURL  string
	City        string
	LoadUsers   int
	SpawnRate   float64
	RunTime     time.Duration
	WaitMin     time.Duration
	WaitMax     time.Duration
	MetricsAddr string

	// Logging
	LogLevel  string
	LogFormat string

	// Command flags
	Flags Flags
}

// Flags holds command-line flags. Zero values mean "not given".
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

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		BaseURL:     DefaultBaseURL,
		RedfishPath: DefaultRedfishPath,
		Username:    DefaultUsername,
		Password:    DefaultPassword,
		Timeout:     DefaultTimeout,
		ResultsDir:  DefaultResultsDir,
		ReportFile:  DefaultReportFile,
		RunName:     DefaultRunName,
		Parallel:    DefaultParallel,
		WeatherURL:  DefaultWeatherURL,
		City:        DefaultCity,
		LoadUsers:   DefaultLoadUsers,
		SpawnRate:   DefaultSpawnRate,
		RunTime:     DefaultRunTime,
		WaitMin:     DefaultWaitMin,
		WaitMax:     DefaultWaitMax,
		LogLevel:    "info",
		LogFormat:   "console",
	}
	cfg.ResetTypes = make([]string, len(DefaultResetTypes))
	copy(cfg.ResetTypes, DefaultResetTypes)
	return cfg
}

// Load creates a config from defaults, the optional .env file and BMCTEST_* variables.
// A missing .env file is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	cfg := New()
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	str("BASE_URL", &c.BaseURL)
	str("REDFISH_PATH", &c.RedfishPath)
	str("USERNAME", &c.Username)
	str("PASSWORD", &c.Password)
	str("RESULTS_DIR", &c.ResultsDir)
	str("REPORT_FILE", &c.ReportFile)
	str("WEATHER_URL", &c.WeatherURL)
	str("CITY", &c.City)
	str("CHROME_PATH", &c.ChromePath)
	str("METRICS_ADDR", &c.MetricsAddr)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)

	if v, ok := lookup(EnvPrefix + "TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %sTIMEOUT: %w", EnvPrefix, err)
		}
		c.Timeout = d
	}
	if v, ok := lookup(EnvPrefix + "VERIFY_TLS"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse %sVERIFY_TLS: %w", EnvPrefix, err)
		}
		c.VerifyTLS = b
	}
	if v, ok := lookup(EnvPrefix + "RESET_TYPES"); ok && v != "" {
		c.ResetTypes = splitList(v)
	}
	return nil
}

// ApplyFlags overrides configuration with every flag that was given
func (c *Config) ApplyFlags(f Flags) {
	c.Flags = f
	if f.BaseURL != "" {
		c.BaseURL = f.BaseURL
	}
	if f.Username != "" {
		c.Username = f.Username
	}
	if f.Password != "" {
		c.Password = f.Password
	}
	if f.Timeout > 0 {
		c.Timeout = f.Timeout
	}
	if f.VerifyTLS {
		c.VerifyTLS = true
	}
	if f.ResultsDir != "" {
		c.ResultsDir = f.ResultsDir
	}
	if f.ReportFile != "" {
		c.ReportFile = f.ReportFile
	}
	if f.Parallel > 0 {
		c.Parallel = f.Parallel
	}
	if len(f.ResetTypes) > 0 {
		c.ResetTypes = f.ResetTypes
	}
	if f.ChromePath != "" {
		c.ChromePath = f.ChromePath
	}
	if f.WeatherURL != "" {
		c.WeatherURL = f.WeatherURL
	}
	if f.City != "" {
		c.City = f.City
	}
	if f.LoadUsers > 0 {
		c.LoadUsers = f.LoadUsers
	}
	if f.SpawnRate > 0 {
		c.SpawnRate = f.SpawnRate
	}
	if f.RunTime > 0 {
		c.RunTime = f.RunTime
	}
	if f.MetricsAddr != "" {
		c.MetricsAddr = f.MetricsAddr
	}
	if f.LogLevel != "" {
		c.LogLevel = f.LogLevel
	}
	if f.LogFormat != "" {
		c.LogFormat = f.LogFormat
	}
}

// Validate checks the values that would make a run meaningless
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base URL is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.LoadUsers <= 0 {
		return fmt.Errorf("load users must be positive, got %d", c.LoadUsers)
	}
	if c.SpawnRate <= 0 {
		return fmt.Errorf("spawn rate must be positive, got %g", c.SpawnRate)
	}
	if c.WaitMax < c.WaitMin {
		return fmt.Errorf("wait max %s is below wait min %s", c.WaitMax, c.WaitMin)
	}
	return nil
}

// GetRedfishURL returns the Redfish service root URL
func (c *Config) GetRedfishURL() string {
	return strings.TrimSuffix(c.BaseURL, "/") + "/" + strings.Trim(c.RedfishPath, "/")
}

// GetReportPath returns the full path of the report file.
// An absolute report file name is used as is.
func (c *Config) GetReportPath() string {
	if filepath.IsAbs(c.ReportFile) {
		return c.ReportFile
	}
	return filepath.Join(c.ResultsDir, c.ReportFile)
}

// GetArtifactPath returns a path inside the results directory
func (c *Config) GetArtifactPath(name string) string {
	return filepath.Join(c.ResultsDir, name)
}

// GetLoadTimeout bounds a whole load run, including an external load tool's startup and shutdown
func (c *Config) GetLoadTimeout() time.Duration {
	return c.RunTime + DefaultLoadGrace
}

// GetChromePath returns the configured browser binary or the first well-known one that exists.
// Empty means "let the browser driver find it".
func (c *Config) GetChromePath() string {
	if c.ChromePath != "" {
		return c.ChromePath
	}
	for _, p := range DefaultChromePaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
