package browser

import (
	"testing"

	"github.com/andybalholm/cascadia"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loginPage = `<!DOCTYPE html>
<html><head><title>OpenBMC</title><script>var System = 1;</script></head>
<body>
  <form>
    <input id="username" type="text" name="username">
    <input type="password" name="password">
    <input type="checkbox" name="remember">
    <button type="submit"> Log in </button>
  </form>
</body></html>`

const dashboardPage = `<html><body>
  <nav>
    <a href="#/">Overview</a>
    <a href="#/logs">Logs</a>
    <a href="#/hardware-status/inventory">Inventory and LEDs</a>
  </nav>
  <main><h1>Overview</h1></main>
</body></html>`

func TestPage_LoginForm(t *testing.T) {
	page, err := ParsePage(loginPage)
	require.NoError(t, err)

	form, ok := page.LoginForm()
	require.True(t, ok)
	assert.Equal(t, "#username", form.UserSelector)
	assert.Equal(t, `input[name="password"]`, form.PasswordSelector)

	label, ok := page.LoginButton()
	require.True(t, ok)
	assert.Equal(t, "Log in", label)

	// script text is not page content
	assert.False(t, page.Mentions("System"))
}

func TestPage_LoginForm_Missing(t *testing.T) {
	page, err := ParsePage(`<html><body><input type="password"><button>Cancel</button></body></html>`)
	require.NoError(t, err)

	form, ok := page.LoginForm()
	assert.False(t, ok)
	assert.Equal(t, `input[type="password"]`, form.PasswordSelector)

	_, ok = page.LoginButton()
	assert.False(t, ok)
}

func TestPage_Dashboard(t *testing.T) {
	page, err := ParsePage(dashboardPage)
	require.NoError(t, err)

	assert.True(t, page.Mentions("System", "Dashboard", "Overview"))
	assert.False(t, page.Mentions("Dashboard"))

	links := page.NavLinks("system", "overview", "dashboard", "inventory")
	assert.Equal(t, []string{"overview", "inventory and leds"}, links)
}

func TestCSSEscape(t *testing.T) {
	assert.Equal(t, "user-name_1", cssEscape("user-name_1"))
	assert.Equal(t, `a\.b\:c`, cssEscape("a.b:c"))
	assert.Equal(t, `\31 user`, cssEscape("1user"))
	assert.Equal(t, `-\32 fa`, cssEscape("-2fa"))
	assert.Equal(t, `\-`, cssEscape("-"))
}

func TestPage_LoginForm_NumericID(t *testing.T) {
	page, err := ParsePage(`<html><body><form>
    <input id="1user" type="text">
    <input id="-2pw" type="password">
  </form></body></html>`)
	require.NoError(t, err)

	form, ok := page.LoginForm()
	require.True(t, ok)

	for _, sel := range []string{form.UserSelector, form.PasswordSelector} {
		compiled, err := cascadia.Compile(sel)
		require.NoError(t, err, sel)
		assert.NotNil(t, cascadia.Query(page.root, compiled), sel)
	}
}
