package cli

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlags_Parse(t *testing.T) {
	var f Flags
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	f.AddGlobalFlags(fs)
	f.AddTargetFlags(fs)
	f.AddSelectFlags(fs)
	f.AddCheckFlags(fs)
	f.AddLoadFlags(fs)

	err := fs.Parse([]string{
		"--base-url", "https://bmc:443",
		"-u", "admin",
		"--timeout", "5s",
		"-f", "test_api_*",
		"-p", "2",
		"--skip-ui",
		"--strict",
		"--reset-types", "On,ForceOff",
		"--users", "3",
		"--spawn-rate", "0.5",
		"--run-time", "1m",
		"--log-format", "json",
	})
	require.NoError(t, err)

	cf := f.ToConfigFlags()
	assert.Equal(t, "https://bmc:443", cf.BaseURL)
	assert.Equal(t, "admin", cf.Username)
	assert.Equal(t, 5*time.Second, cf.Timeout)
	assert.Equal(t, "test_api_*", cf.NameFilter)
	assert.Equal(t, 2, cf.Parallel)
	assert.True(t, cf.SkipUI)
	assert.False(t, cf.SkipAPI)
	assert.True(t, cf.Strict)
	assert.Equal(t, []string{"On", "ForceOff"}, cf.ResetTypes)
	assert.Equal(t, 3, cf.LoadUsers)
	assert.Equal(t, 0.5, cf.SpawnRate)
	assert.Equal(t, time.Minute, cf.RunTime)
	assert.Equal(t, "json", cf.LogFormat)
}

func TestFlags_Defaults(t *testing.T) {
	var f Flags
	fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
	f.AddGlobalFlags(fs)
	f.AddSelectFlags(fs)
	require.NoError(t, fs.Parse(nil))

	cf := f.ToConfigFlags()
	assert.Empty(t, cf.NameFilter)
	assert.Zero(t, cf.Parallel)
	assert.Nil(t, cf.ResetTypes)
}
