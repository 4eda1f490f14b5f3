package redfish

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Resource paths relative to the Redfish service root
const (
	SessionsPath       = "SessionService/Sessions"
	SessionServicePath = "SessionService"
	SystemPath         = "Systems/system"
	ResetPath          = "Systems/system/Actions/ComputerSystem.Reset"
	ResetActionName    = "#ComputerSystem.Reset"
	AuthTokenHeader    = "X-Auth-Token"
)

// ThermalPaths are tried in order; the first answering 200 wins
var ThermalPaths = []string{
	"Chassis/chassis/ThermalSubSystem",
	"Chassis/chassis/Thermal",
	"Thermal",
}

// RequiredSystemFields must be present in a ComputerSystem resource
var RequiredSystemFields = []string{"@odata.id", "@odata.type", "Status"}

// Temperature bounds (inclusive) of a plausible sensor reading
const (
	MinReadingCelsius = -20.0
	MaxReadingCelsius = 120.0
)

var (
	// ErrInvalidPowerState is returned for a PowerState outside the Redfish enumeration
	ErrInvalidPowerState = errors.New("invalid power state")
	// ErrInvalidResetType is returned for a reset type outside the Redfish enumeration
	ErrInvalidResetType = errors.New("invalid reset type")
	// ErrNoThermalEndpoint is returned when none of ThermalPaths answers 200
	ErrNoThermalEndpoint = errors.New("no thermal endpoint available")
	// ErrNoToken is returned when a session was created without an auth token
	ErrNoToken = errors.New("session created without " + AuthTokenHeader)
)

// PowerState is the ComputerSystem power state
type PowerState string

const (
	PowerOn          PowerState = "On"
	PowerOff         PowerState = "Off"
	PowerPoweringOn  PowerState = "PoweringOn"
	PowerPoweringOff PowerState = "PoweringOff"
	PowerUnknown     PowerState = "Unknown"
)

// Valid reports whether p belongs to the enumeration
func (p PowerState) Valid() bool {
	switch p {
	case PowerOn, PowerOff, PowerPoweringOn, PowerPoweringOff, PowerUnknown:
		return true
	}
	return false
}

// ValidatePowerState accepts an absent state or one of the enumeration
func ValidatePowerState(p PowerState) error {
	if p == "" || p.Valid() {
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidPowerState, string(p))
}

// ResetTypes are the values accepted by the ComputerSystem.Reset action
var ResetTypes = []string{
	"On", "ForceOff", "GracefulShutdown", "GracefulRestart", "ForceRestart",
	"Nmi", "ForceOn", "PushPowerButton", "PowerCycle",
}

// ValidateResetType rejects values the action would never accept
func ValidateResetType(t string) error {
	for _, v := range ResetTypes {
		if v == t {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidResetType, t)
}

// ValidTemperature reports whether a reading lies within the plausible range
func ValidTemperature(c float64) bool {
	return c >= MinReadingCelsius && c <= MaxReadingCelsius
}

// Status is the common Redfish status object
type Status struct {
	State  string `json:"State,omitempty"`
	Health string `json:"Health,omitempty"`
}

// Action is an entry of a resource's Actions object
type Action struct {
	Target          string   `json:"target"`
	AllowableValues []string `json:"ResetType@Redfish.AllowableValues,omitempty"`
}

// ComputerSystem is the subset of the Systems/system resource the checks look at
type ComputerSystem struct {
	ODataID    string            `json:"@odata.id"`
	ODataType  string            `json:"@odata.type"`
	ID         string            `json:"Id"`
	Name       string            `json:"Name"`
	PowerState PowerState        `json:"PowerState,omitempty"`
	Status     *Status           `json:"Status,omitempty"`
	Actions    map[string]Action `json:"Actions,omitempty"`

	present map[string]struct{}
}

// UnmarshalJSON keeps track of which top-level fields were sent
func (s *ComputerSystem) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	type plain ComputerSystem
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = ComputerSystem(p)
	s.present = make(map[string]struct{}, len(raw))
	for k := range raw {
		s.present[k] = struct{}{}
	}
	return nil
}

// MissingFields lists the RequiredSystemFields absent from the decoded document
func (s *ComputerSystem) MissingFields() []string {
	var missing []string
	for _, f := range RequiredSystemFields {
		if _, ok := s.present[f]; !ok {
			missing = append(missing, f)
		}
	}
	sort.Strings(missing)
	return missing
}

// ResetAction returns the reset action if the system exposes one
func (s *ComputerSystem) ResetAction() (Action, bool) {
	a, ok := s.Actions[ResetActionName]
	return a, ok
}

// Temperature is one thermal sensor
type Temperature struct {
	Name           string   `json:"Name"`
	ReadingCelsius *float64 `json:"ReadingCelsius"`
}

// Thermal is the subset of a thermal resource the checks look at
type Thermal struct {
	ODataID      string        `json:"@odata.id"`
	Temperatures []Temperature `json:"Temperatures"`
}

// ValidReadings counts sensors with a reading inside the plausible range
func (t *Thermal) ValidReadings() int {
	n := 0
	for _, s := range t.Temperatures {
		if s.ReadingCelsius != nil && ValidTemperature(*s.ReadingCelsius) {
			n++
		}
	}
	return n
}

// StatusError is returned when the service answers with an unexpected status code
type StatusError struct {
	Method string
	URL    string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.URL, e.Code)
}
