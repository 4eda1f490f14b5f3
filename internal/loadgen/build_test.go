package loadgen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bmctest/internal/config"
	"bmctest/internal/redfish/redfishtest"
)

func newWeatherServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current_condition":[{"temp_C":"-7"}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(bmc *redfishtest.Server, wx *httptest.Server) *config.Config {
	cfg := config.New()
	cfg.BaseURL = bmc.URL
	cfg.WeatherURL = wx.URL
	cfg.Timeout = 5 * time.Second
	cfg.LoadUsers = 2
	cfg.SpawnRate = 50
	cfg.RunTime = 500 * time.Millisecond
	cfg.WaitMin = 10 * time.Millisecond
	cfg.WaitMax = 20 * time.Millisecond
	return cfg
}

func TestBuildProfile_Run(t *testing.T) {
	bmc := redfishtest.NewServer()
	defer bmc.Close()
	wx := newWeatherServer(t)

	p, err := BuildProfile(testConfig(bmc, wx), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, DefaultProfileName, p.Name)
	require.Len(t, p.Classes, 2)

	engine, err := NewEngine(p, zap.NewNop())
	require.NoError(t, err)
	sum, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, sum.FailureCount, sum.String())
	byName := make(map[string]TaskStats)
	for _, ts := range sum.Tasks {
		byName[ts.Name] = ts
	}
	assert.Equal(t, int64(1), byName[ClassOpenBMC+".on_start"].Requests)
	assert.Greater(t, byName[TaskWeather].Requests, int64(0))

	// sessions are released when users stop
	bmc.Lock()
	assert.Empty(t, bmc.Sessions)
	bmc.Unlock()
}

func TestBuildProfile_FailingTarget(t *testing.T) {
	bmc := redfishtest.NewServer()
	defer bmc.Close()
	bmc.SystemStatus = http.StatusServiceUnavailable
	wx := newWeatherServer(t)

	cfg := testConfig(bmc, wx)
	cfg.LoadUsers = 1
	// one user, of the first class
	p, err := BuildProfile(cfg, zap.NewNop())
	require.NoError(t, err)

	engine, err := NewEngine(p, zap.NewNop())
	require.NoError(t, err)
	sum, err := engine.Run(context.Background())
	require.NoError(t, err)

	assert.Greater(t, sum.FailureCount, int64(0))
	assert.Contains(t, sum.String(), "HTTP 503")
}

func TestBuildProfile_File(t *testing.T) {
	bmc := redfishtest.NewServer()
	defer bmc.Close()
	wx := newWeatherServer(t)

	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users: 9\nrun_time: 2m\nclasses:\n  weather:\n    weight: 0\n"), 0644))

	cfg := testConfig(bmc, wx)
	cfg.Flags.ProfileFile = path
	cfg.Flags.RunTime = 5 * time.Second

	p, err := BuildProfile(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 9, p.Users)
	assert.Equal(t, 5*time.Second, p.RunTime, "flag wins over file")
	assert.Equal(t, ClassOpenBMC, p.classFor(0).Name)
	assert.Equal(t, ClassOpenBMC, p.classFor(5).Name)

	cfg.Flags.ProfileFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = BuildProfile(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestRunTime(t *testing.T) {
	cfg := config.New()
	cfg.RunTime = 500 * time.Millisecond

	d, err := RunTime(cfg)
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, d)

	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("run_time: 32s\n"), 0644))
	cfg.Flags.ProfileFile = path

	d, err = RunTime(cfg)
	require.NoError(t, err)
	assert.Equal(t, 32*time.Second, d, "file wins over config")

	cfg.Flags.RunTime = 2 * time.Second
	d, err = RunTime(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, d, "flag wins over file")

	cfg.Flags.ProfileFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = RunTime(cfg)
	assert.Error(t, err)
}
