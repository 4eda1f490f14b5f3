package browser

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// LoginButtonLabels are the button texts recognised as the login submit
var LoginButtonLabels = []string{"Log in", "Login"}

var (
	selInput  = cascadia.MustCompile("input")
	selButton = cascadia.MustCompile("button")
	selLink   = cascadia.MustCompile("a")
)

// Page is a snapshot of the rendered DOM
type Page struct {
	root *html.Node
}

// LoginForm holds CSS selectors of the credential inputs
type LoginForm struct {
	UserSelector     string
	PasswordSelector string
}

// ParsePage parses rendered HTML
func ParsePage(doc string) (*Page, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}
	return &Page{root: root}, nil
}

// LoginForm finds the first text and password inputs.
// ok is false unless both are present.
func (p *Page) LoginForm() (form LoginForm, ok bool) {
	for _, n := range cascadia.QueryAll(p.root, selInput) {
		typ := strings.ToLower(attr(n, "type"))
		switch {
		case (typ == "text" || typ == "") && form.UserSelector == "":
			form.UserSelector = inputSelector(n, "text")
		case typ == "password" && form.PasswordSelector == "":
			form.PasswordSelector = inputSelector(n, "password")
		}
	}
	return form, form.UserSelector != "" && form.PasswordSelector != ""
}

// LoginButton returns the text of the first button labelled as a login submit
func (p *Page) LoginButton() (string, bool) {
	for _, n := range cascadia.QueryAll(p.root, selButton) {
		label := strings.TrimSpace(text(n))
		for _, want := range LoginButtonLabels {
			if strings.Contains(label, want) {
				return label, true
			}
		}
	}
	return "", false
}

// Mentions reports whether any text node of the body contains one of words (case-sensitive)
func (p *Page) Mentions(words ...string) bool {
	body := text(p.root)
	for _, w := range words {
		if strings.Contains(body, w) {
			return true
		}
	}
	return false
}

// NavLinks returns the lowercased texts of links mentioning one of keywords
func (p *Page) NavLinks(keywords ...string) []string {
	var out []string
	for _, n := range cascadia.QueryAll(p.root, selLink) {
		label := strings.ToLower(strings.TrimSpace(text(n)))
		for _, k := range keywords {
			if strings.Contains(label, strings.ToLower(k)) {
				out = append(out, label)
				break
			}
		}
	}
	return out
}

// inputSelector builds the most specific selector available for an input
func inputSelector(n *html.Node, typ string) string {
	if id := attr(n, "id"); id != "" {
		return "#" + cssEscape(id)
	}
	if name := attr(n, "name"); name != "" {
		return fmt.Sprintf("input[name=%q]", name)
	}
	return fmt.Sprintf("input[type=%q]", typ)
}

// cssEscape makes s usable as a CSS identifier. A digit cannot start an
// identifier, even after a leading '-', so it is written as a hex escape.
func cssEscape(s string) string {
	var b strings.Builder
	for i, r := range s {
		isDigit := r >= '0' && r <= '9'
		switch {
		case isDigit && (i == 0 || i == 1 && s[0] == '-'):
			fmt.Fprintf(&b, "\\%x ", r)
		case r == '-' && i == 0 && len(s) == 1:
			b.WriteString("\\-")
		case r == '-' || r == '_' || isDigit || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// text concatenates the text nodes below n, skipping scripts and styles
func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
