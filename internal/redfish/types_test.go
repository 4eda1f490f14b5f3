package redfish

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePowerState(t *testing.T) {
	tests := []struct {
		state   PowerState
		wantErr bool
	}{
		{"On", false},
		{"Off", false},
		{"PoweringOn", false},
		{"PoweringOff", false},
		{"Unknown", false},
		{"", false},
		{"Frobnicated", true},
		{"on", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			err := ValidatePowerState(tt.state)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPowerState)
				assert.Contains(t, err.Error(), string(tt.state))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidTemperature(t *testing.T) {
	assert.True(t, ValidTemperature(-20))
	assert.True(t, ValidTemperature(120))
	assert.True(t, ValidTemperature(36.6))
	assert.False(t, ValidTemperature(-20.1))
	assert.False(t, ValidTemperature(150))
}

func TestThermal_ValidReadings(t *testing.T) {
	var th Thermal
	require.NoError(t, json.Unmarshal([]byte(`{
		"Temperatures": [
			{"Name": "cpu", "ReadingCelsius": 150},
			{"Name": "inlet", "ReadingCelsius": null},
			{"Name": "dimm"}
		]}`), &th))
	assert.Len(t, th.Temperatures, 3)
	assert.Equal(t, 0, th.ValidReadings())
}

func TestComputerSystem_MissingFields(t *testing.T) {
	var sys ComputerSystem
	require.NoError(t, json.Unmarshal([]byte(`{"@odata.id": "/redfish/v1/Systems/system", "PowerState": "Off"}`), &sys))
	assert.Equal(t, []string{"@odata.type", "Status"}, sys.MissingFields())
	assert.Equal(t, PowerOff, sys.PowerState)
	_, ok := sys.ResetAction()
	assert.False(t, ok)
}

func TestValidateResetType(t *testing.T) {
	assert.NoError(t, ValidateResetType("GracefulRestart"))
	assert.NoError(t, ValidateResetType("PowerCycle"))
	assert.ErrorIs(t, ValidateResetType("Reboot"), ErrInvalidResetType)
}
