package checks

import (
	"bmctest/internal/config"
	"bmctest/internal/domain"
)

// Catalog returns every built-in check in report order. load may be nil.
func Catalog(env *Env, set Settings, load Check) []Check {
	list := WebUIChecks(env, set)
	list = append(list, APIChecks(env, set)...)
	if load != nil {
		list = append(list, load)
	}
	return list
}

// Select drops skipped suites and applies the name filter
func Select(list []Check, f config.Flags) []Check {
	skip := map[string]bool{
		domain.SuiteWebUI: f.SkipUI,
		domain.SuiteAPI:   f.SkipAPI,
		domain.SuiteLoad:  f.SkipLoad,
	}
	var kept []Check
	for _, c := range list {
		if !skip[c.Suite()] {
			kept = append(kept, c)
		}
	}
	return FilterByName(kept, f.NameFilter)
}
