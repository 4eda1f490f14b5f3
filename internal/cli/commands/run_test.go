package commands

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bmctest/internal/checks"
	"bmctest/internal/domain"
	"bmctest/internal/redfish/redfishtest"
)

func testCommand() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	return cmd
}

func newAPIRunDeps(t *testing.T, srv *redfishtest.Server) *Deps {
	t.Helper()
	deps, _ := newTestDeps(t)
	deps.Config.BaseURL = srv.URL
	deps.Config.Timeout = 5 * time.Second
	deps.Config.Flags.SkipUI = true
	deps.Config.Flags.SkipLoad = true
	return deps
}

func apiCases(t *testing.T, deps *Deps) map[string]domain.Status {
	t.Helper()
	doc, err := deps.Storage.Load()
	require.NoError(t, err)
	require.Len(t, doc.Suites, 1)
	require.Equal(t, domain.SuiteAPI, doc.Suites[0].Name)

	statuses := make(map[string]domain.Status)
	for _, c := range doc.Suites[0].Cases {
		switch {
		case c.Failure != nil:
			statuses[c.Name] = domain.StatusFailed
		case c.Error != nil:
			statuses[c.Name] = domain.StatusError
		case c.Skipped != nil:
			statuses[c.Name] = domain.StatusSkipped
		default:
			statuses[c.Name] = domain.StatusPassed
		}
	}
	return statuses
}

func TestRunCommand_ClosesSessionAfterChecks(t *testing.T) {
	srv := redfishtest.NewServer()
	defer srv.Close()
	srv.Lock()
	srv.Temperatures = []*float64{redfishtest.Reading(500)}
	srv.Unlock()

	deps := newAPIRunDeps(t, srv)
	err := NewRunCommand(deps).Execute(testCommand(), nil)
	require.ErrorIs(t, err, ErrRunFailed)

	assert.Equal(t, map[string]domain.Status{
		"test_api_authentication":   domain.StatusPassed,
		"test_api_system_info":      domain.StatusPassed,
		"test_api_power_management": domain.StatusPassed,
		"test_api_thermal_sensors":  domain.StatusFailed,
	}, apiCases(t, deps))

	srv.Lock()
	assert.Equal(t, []string{"1"}, srv.Deleted)
	assert.Empty(t, srv.Sessions)
	srv.Unlock()

	thermal := srv.CallIndex("GET /redfish/v1/Chassis/chassis/ThermalSubSystem")
	deleted := srv.CallIndex("DELETE /redfish/v1/SessionService/Sessions/1")
	require.NotEqual(t, -1, thermal)
	assert.Greater(t, deleted, thermal, "session deleted before the last check ran")
}

func TestRunCommand_LoginFailureErrorsEveryAPICase(t *testing.T) {
	srv := redfishtest.NewServer()
	defer srv.Close()
	srv.Lock()
	srv.LoginStatus = http.StatusInternalServerError
	srv.Unlock()

	deps := newAPIRunDeps(t, srv)
	err := NewRunCommand(deps).Execute(testCommand(), nil)
	require.ErrorIs(t, err, ErrRunFailed)

	statuses := apiCases(t, deps)
	assert.Len(t, statuses, 4)
	for name, status := range statuses {
		assert.Equal(t, domain.StatusError, status, name)
	}

	doc, err := deps.Storage.Load()
	require.NoError(t, err)
	for _, c := range doc.Suites[0].Cases {
		require.NotNil(t, c.Error)
		assert.Contains(t, c.Error.Message, "redfish session", c.Name)
	}

	srv.Lock()
	assert.Empty(t, srv.Deleted)
	srv.Unlock()
	assert.Equal(t, 1, srv.Count("POST /redfish/v1/SessionService/Sessions"))
}

func TestRunCommand_NothingSelected(t *testing.T) {
	deps, _ := newTestDeps(t)
	deps.Config.Flags.SkipUI = true
	deps.Config.Flags.SkipAPI = true
	deps.Config.Flags.SkipLoad = true

	require.NoError(t, NewRunCommand(deps).Execute(testCommand(), nil))
	_, err := deps.Storage.Load()
	assert.Error(t, err, "no report is written when nothing ran")
}

func TestLoadCommand_ExternalTool(t *testing.T) {
	tests := []struct {
		name    string
		command string
		status  domain.Status
		wantErr error
	}{
		{"exit 0", `sh -c 'echo done'`, domain.StatusPassed, nil},
		{"exit 2", `sh -c 'echo boom >&2; exit 2'`, domain.StatusFailed, ErrRunFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, _ := newTestDeps(t)
			deps.Config.Flags.LoadCommand = tt.command

			err := NewLoadCommand(deps).Execute(testCommand(), nil)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			doc, err := deps.Storage.Load()
			require.NoError(t, err)
			require.Len(t, doc.Suites, 1)
			require.Len(t, doc.Suites[0].Cases, 1)
			c := doc.Suites[0].Cases[0]
			assert.Equal(t, checks.LoadCaseName, c.Name)
			assert.Equal(t, tt.status == domain.StatusFailed, c.Failure != nil)
		})
	}
}
