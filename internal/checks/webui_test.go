package checks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bmctest/internal/browser"
	"bmctest/internal/domain"
)

const (
	consoleURL = "https://bmc.example:2443"

	loginHTML = `<html><body><form>
<input id="username" type="text"><input id="password" type="password">
<button>Log in</button></form></body></html>`

	dashboardHTML = `<html><body><nav><a href="#/">Overview</a><a href="#/logs">Logs</a></nav></body></html>`

	blankHTML = `<html><body><p>Loading</p></body></html>`
)

// fakeBrowser serves loginHTML until the login button is clicked, then afterLogin
type fakeBrowser struct {
	afterLogin    string
	afterLoginURL string
	loggedIn      bool
	typed         map[string]string
	screenshots   []string
	clickErr      error
}

func newFakeBrowser(afterLogin, afterLoginURL string) *fakeBrowser {
	return &fakeBrowser{afterLogin: afterLogin, afterLoginURL: afterLoginURL, typed: make(map[string]string)}
}

func (b *fakeBrowser) Navigate(ctx context.Context, url string) error {
	b.loggedIn = false
	return nil
}

func (b *fakeBrowser) Page(ctx context.Context) (*browser.Page, error) {
	if b.loggedIn {
		return browser.ParsePage(b.afterLogin)
	}
	return browser.ParsePage(loginHTML)
}

func (b *fakeBrowser) Type(ctx context.Context, selector, text string) error {
	b.typed[selector] = text
	return nil
}

func (b *fakeBrowser) ClickButton(ctx context.Context, labels ...string) error {
	if b.clickErr != nil {
		return b.clickErr
	}
	b.loggedIn = true
	return nil
}

func (b *fakeBrowser) Location(ctx context.Context) (string, error) {
	if b.loggedIn {
		return b.afterLoginURL, nil
	}
	return consoleURL + "/#/login", nil
}

func (b *fakeBrowser) Screenshot(ctx context.Context, path string) error {
	b.screenshots = append(b.screenshots, path)
	return nil
}

func uiSettings() Settings {
	return Settings{
		ConsoleURL:     consoleURL,
		Username:       "root",
		Password:       "0penBmc",
		ScreenshotPath: "/tmp/results/webui_login_success.png",
	}
}

func runUI(t *testing.T, b Browser, name string) (domain.Status, string) {
	t.Helper()
	c := findCheck(t, WebUIChecks(&Env{Browser: b}, uiSettings()), name)
	assert.Equal(t, domain.SuiteWebUI, c.Suite())
	return Classify(c.Run(context.Background()))
}

func TestWebUILogin(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		url     string
		status  domain.Status
		message string
	}{
		{"left login route", blankHTML, consoleURL + "/#/", domain.StatusPassed, ""},
		{"dashboard text on login route", dashboardHTML, consoleURL + "/#/login", domain.StatusPassed, ""},
		{"still on login page", blankHTML, consoleURL + "/#/login", domain.StatusFailed, "login did not leave " + consoleURL + "/#/login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBrowser(tt.page, tt.url)
			status, message := runUI(t, b, "test_webui_login")
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, message)
			assert.Equal(t, map[string]string{"#username": "root", "#password": "0penBmc"}, b.typed)
			assert.Equal(t, []string{"/tmp/results/webui_login_success.png"}, b.screenshots)
		})
	}
}

func TestWebUILogin_Errors(t *testing.T) {
	b := newFakeBrowser(dashboardHTML, consoleURL+"/#/")
	b.clickErr = errors.New("node not visible")
	status, message := runUI(t, b, "test_webui_login")
	assert.Equal(t, domain.StatusError, status)
	assert.Equal(t, "click login: node not visible", message)

	// a page without a login form
	noForm := &noFormBrowser{fakeBrowser: newFakeBrowser(blankHTML, "")}
	status, message = runUI(t, noForm, "test_webui_login")
	assert.Equal(t, domain.StatusFailed, status)
	assert.Equal(t, "login form not found", message)
}

type noFormBrowser struct {
	*fakeBrowser
}

func (b *noFormBrowser) Page(ctx context.Context) (*browser.Page, error) {
	return browser.ParsePage(blankHTML)
}

func TestWebUINavigation(t *testing.T) {
	b := newFakeBrowser(dashboardHTML, consoleURL+"/#/")
	status, message := runUI(t, b, "test_webui_navigation")
	assert.Equal(t, domain.StatusPassed, status)
	assert.Equal(t, "found links: overview", message)

	b = newFakeBrowser(blankHTML, consoleURL+"/#/")
	status, message = runUI(t, b, "test_webui_navigation")
	assert.Equal(t, domain.StatusFailed, status)
	assert.Equal(t, "no navigation links found", message)
}

func TestWebUIChecks_NoBrowser(t *testing.T) {
	env := &Env{BrowserErr: errors.New("exec: \"google-chrome\": executable file not found in $PATH")}
	list := WebUIChecks(env, uiSettings())
	require.Len(t, list, 2)
	for _, c := range list {
		status, message := Classify(c.Run(context.Background()))
		assert.Equal(t, domain.StatusSkipped, status)
		assert.Contains(t, message, "browser not available")
	}
}
