package checks

import (
	"path/filepath"
	"strings"
)

// FilterByName keeps checks whose name matches pattern.
// Supports wildcards like "*thermal*" or "test_api_*", a "suite/name" form
// like "api/*", and plain substrings.
func FilterByName(list []Check, pattern string) []Check {
	if pattern == "" {
		return list
	}

	var filtered []Check
	for _, c := range list {
		if matchName(c.Suite()+"/"+c.Name(), c.Name(), pattern) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

func matchName(qualified, name, pattern string) bool {
	target := name
	if strings.Contains(pattern, "/") {
		target = qualified
	}

	if matched, err := filepath.Match(pattern, target); err == nil && matched {
		return true
	}

	if strings.ContainsAny(pattern, "*?") {
		// Loose match: every literal part must appear, in order
		rest := target
		found := false
		for _, part := range strings.Split(pattern, "*") {
			if part == "" || strings.Contains(part, "?") {
				continue
			}
			i := strings.Index(rest, part)
			if i < 0 {
				return false
			}
			rest = rest[i+len(part):]
			found = true
		}
		return found
	}

	return strings.Contains(target, pattern)
}

// Suites returns the distinct suites of list in first-seen order
func Suites(list []Check) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range list {
		if !seen[c.Suite()] {
			seen[c.Suite()] = true
			out = append(out, c.Suite())
		}
	}
	return out
}

// HasSuite reports whether any check of list belongs to suite
func HasSuite(list []Check, suite string) bool {
	for _, c := range list {
		if c.Suite() == suite {
			return true
		}
	}
	return false
}
