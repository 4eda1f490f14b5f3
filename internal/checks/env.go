package checks

import (
	"context"
	"time"

	"bmctest/internal/browser"
	"bmctest/internal/config"
	"bmctest/internal/redfish"
)

// RedfishAPI is the part of the Redfish client the API checks use
type RedfishAPI interface {
	ServiceRoot(ctx context.Context) (int, error)
	System(ctx context.Context) (*redfish.ComputerSystem, error)
	Reset(ctx context.Context, target, resetType string) (int, error)
	Thermal(ctx context.Context) (*redfish.Thermal, string, error)
}

// Browser is the part of the browser session the web console checks use
type Browser interface {
	Navigate(ctx context.Context, url string) error
	Page(ctx context.Context) (*browser.Page, error)
	Type(ctx context.Context, selector, text string) error
	ClickButton(ctx context.Context, labels ...string) error
	Location(ctx context.Context) (string, error)
	Screenshot(ctx context.Context, path string) error
}

// Env holds the shared resources of a run. It is filled before checks run and
// read-only afterwards. A nil resource makes its checks report the matching Err.
type Env struct {
	Redfish    RedfishAPI
	RedfishErr error
	Browser    Browser
	BrowserErr error
}

// Settings configure the built-in checks
type Settings struct {
	ConsoleURL     string
	Username       string
	Password       string
	ResetTypes     []string
	DryReset       bool
	ScreenshotPath string
	PageSettle     time.Duration
	LoginSettle    time.Duration
}

// SettingsFromConfig builds check settings from the run configuration
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		ConsoleURL:     cfg.BaseURL,
		Username:       cfg.Username,
		Password:       cfg.Password,
		ResetTypes:     cfg.ResetTypes,
		DryReset:       cfg.Flags.DryReset,
		ScreenshotPath: cfg.GetArtifactPath("webui_login_success.png"),
		PageSettle:     config.DefaultPageSettle,
		LoginSettle:    config.DefaultLoginSettle,
	}
}
