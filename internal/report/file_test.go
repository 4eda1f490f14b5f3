package report

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bmctest/internal/domain"
)

func TestAggregator_Serialize(t *testing.T) {
	t.Run("empty run is a well-formed document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "report.xml")
		agg := New("OpenBMC Unified Tests")

		require.NoError(t, agg.Serialize(path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), xml.Header))

		var root struct {
			XMLName xml.Name
			Suites  []struct{} `xml:"testsuite"`
		}
		require.NoError(t, xml.Unmarshal(data, &root))
		assert.Equal(t, "testsuites", root.XMLName.Local)
		assert.Empty(t, root.Suites)
	})

	t.Run("writes suites and cases", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.xml")
		agg := New("run")
		agg.Record(domain.SuiteAPI, "test_api_authentication", domain.StatusPassed, "", 250*time.Millisecond)
		agg.Record(domain.SuiteAPI, "test_api_thermal_sensors", domain.StatusFailed, "no valid temperature readings", time.Second)
		agg.Record(domain.SuiteLoad, "test_load_performance", domain.StatusError, "exec: locust not found", 0)
		agg.Record(domain.SuiteWebUI, "test_webui_login", domain.StatusSkipped, "browser unavailable", 0)

		require.NoError(t, agg.Serialize(path))

		doc, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "run", doc.Name)
		assert.Equal(t, agg.ID(), doc.ID)
		assert.Equal(t, 4, doc.Tests)
		assert.Equal(t, 1, doc.Failures)
		assert.Equal(t, 1, doc.Errors)
		assert.Equal(t, 1, doc.Skipped)
		assert.True(t, doc.Broken())

		require.Len(t, doc.Suites, 3)
		api := findSuite(t, doc, domain.SuiteAPI)
		assert.Equal(t, 2, api.Tests)
		assert.Equal(t, Seconds(1.25), api.Time)
		assert.Equal(t, "no valid temperature readings", api.Cases[1].Failure.Message)

		failures := doc.NonPassing()
		require.Len(t, failures, 3)
		assert.Equal(t, domain.StatusFailed, failures[0].Status)
		assert.Equal(t, domain.StatusError, failures[1].Status)
		assert.Equal(t, "exec: locust not found", failures[1].Message)
		assert.Equal(t, domain.StatusSkipped, failures[2].Status)
	})

	t.Run("replaces an existing file and leaves no temp files", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "report.xml")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

		require.NoError(t, New("run").Serialize(path))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "<testsuites")
	})

	t.Run("fails when the directory cannot be created", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "file")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

		err := New("run").Serialize(filepath.Join(blocker, "report.xml"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "create report dir")
	})
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.xml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.xml")
	require.NoError(t, os.WriteFile(path, []byte("<testsuites><testsuite time=\"soon\"/></testsuites>"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}
