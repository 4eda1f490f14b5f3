package checks

import (
	"context"
	"testing"

	"bmctest/internal/config"
)

func catalogForFilter() []Check {
	noop := func(ctx context.Context) error { return nil }
	return []Check{
		newCheck("webui", "test_webui_login", noop),
		newCheck("webui", "test_webui_navigation", noop),
		newCheck("api", "test_api_authentication", noop),
		newCheck("api", "test_api_system_info", noop),
		newCheck("api", "test_api_power_management", noop),
		newCheck("api", "test_api_thermal_sensors", noop),
		newCheck("load", "test_load_performance", noop),
	}
}

func TestFilterByName(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		expected int // Expected number of matches
	}{
		{name: "empty pattern returns all", pattern: "", expected: 7},
		{name: "exact name", pattern: "test_api_system_info", expected: 1},
		{name: "prefix wildcard", pattern: "test_api_*", expected: 4},
		{name: "substring wildcard", pattern: "*thermal*", expected: 1},
		{name: "multiple wildcards in order", pattern: "*webui*n", expected: 2},
		{name: "simple contains match", pattern: "power", expected: 1},
		{name: "suite form", pattern: "webui/*", expected: 2},
		{name: "suite form with name", pattern: "api/*info*", expected: 1},
		{name: "no matches", pattern: "*redis*", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FilterByName(catalogForFilter(), tt.pattern)
			if len(result) != tt.expected {
				t.Errorf("expected %d matches, got %d", tt.expected, len(result))
			}
		})
	}
}

func TestSelect(t *testing.T) {
	list := catalogForFilter()

	kept := Select(list, config.Flags{SkipUI: true, SkipLoad: true})
	if len(kept) != 4 {
		t.Fatalf("expected 4 api checks, got %d", len(kept))
	}
	if HasSuite(kept, "webui") || HasSuite(kept, "load") {
		t.Error("skipped suites must be dropped")
	}

	kept = Select(list, config.Flags{SkipAPI: true, NameFilter: "*login*"})
	if len(kept) != 1 || kept[0].Name() != "test_webui_login" {
		t.Errorf("unexpected selection %v", Suites(kept))
	}
}

func TestSuites(t *testing.T) {
	got := Suites(catalogForFilter())
	want := []string{"webui", "api", "load"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %v, got %v", want, got)
		}
	}
}
