package checks

import (
	"context"
	"fmt"
	"strings"

	"bmctest/internal/browser"
	"bmctest/internal/domain"
)

var (
	dashboardWords = []string{"System", "Dashboard", "Overview"}
	navKeywords    = []string{"system", "overview", "dashboard", "inventory"}
)

type webUIChecks struct {
	env *Env
	set Settings
}

// WebUIChecks returns the web console checks, sharing env's browser
func WebUIChecks(env *Env, set Settings) []Check {
	w := &webUIChecks{env: env, set: set}
	return []Check{
		w.check("test_webui_login", "log in to the web console and reach the dashboard", w.login),
		w.check("test_webui_navigation", "after login the console shows system navigation links", w.navigation),
	}
}

func (w *webUIChecks) check(name, desc string, fn func(context.Context, Browser) error) Check {
	return &Func{
		CaseName:  name,
		SuiteName: domain.SuiteWebUI,
		Desc:      desc,
		Fn: func(ctx context.Context) error {
			if w.env.Browser == nil {
				if w.env.BrowserErr != nil {
					return Skipf("browser not available: %v", w.env.BrowserErr)
				}
				return Skipf("browser not available")
			}
			return fn(ctx, w.env.Browser)
		},
	}
}

func (w *webUIChecks) login(ctx context.Context, b Browser) error {
	if err := w.submitLogin(ctx, b); err != nil {
		return err
	}

	loc, err := b.Location(ctx)
	if err != nil {
		return fmt.Errorf("read location: %w", err)
	}
	if w.set.ScreenshotPath != "" {
		if err := b.Screenshot(ctx, w.set.ScreenshotPath); err != nil {
			return err
		}
	}

	if !onLoginRoute(loc) {
		return nil
	}
	page, err := b.Page(ctx)
	if err != nil {
		return err
	}
	if page.Mentions(dashboardWords...) {
		return nil
	}
	return Failf("login did not leave %s", loc)
}

func (w *webUIChecks) navigation(ctx context.Context, b Browser) error {
	if err := w.submitLogin(ctx, b); err != nil {
		return err
	}

	page, err := b.Page(ctx)
	if err != nil {
		return err
	}
	links := page.NavLinks(navKeywords...)
	if len(links) == 0 {
		return Failf("no navigation links found")
	}
	return Passed("found links: %s", strings.Join(links, ", "))
}

// submitLogin opens the console, fills the credentials and clicks the login button
func (w *webUIChecks) submitLogin(ctx context.Context, b Browser) error {
	if err := b.Navigate(ctx, w.set.ConsoleURL); err != nil {
		return fmt.Errorf("open console: %w", err)
	}
	if err := sleep(ctx, w.set.PageSettle); err != nil {
		return err
	}

	page, err := b.Page(ctx)
	if err != nil {
		return err
	}
	form, ok := page.LoginForm()
	if !ok {
		return Failf("login form not found")
	}
	if _, ok := page.LoginButton(); !ok {
		return Failf("login button not found")
	}

	if err := b.Type(ctx, form.UserSelector, w.set.Username); err != nil {
		return fmt.Errorf("type username: %w", err)
	}
	if err := b.Type(ctx, form.PasswordSelector, w.set.Password); err != nil {
		return fmt.Errorf("type password: %w", err)
	}
	if err := b.ClickButton(ctx, browser.LoginButtonLabels...); err != nil {
		return fmt.Errorf("click login: %w", err)
	}
	return sleep(ctx, w.set.LoginSettle)
}

func onLoginRoute(loc string) bool {
	return strings.Contains(strings.ToLower(loc), "#/login")
}
