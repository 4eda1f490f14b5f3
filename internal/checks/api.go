package checks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"bmctest/internal/domain"
	"bmctest/internal/redfish"
)

// Accepted reset responses. 400 means the service understood the request but
// refused it for the current power state.
var resetAccepted = map[int]bool{
	http.StatusOK:         true,
	http.StatusAccepted:   true,
	http.StatusNoContent:  true,
	http.StatusBadRequest: true,
}

type apiChecks struct {
	env *Env
	set Settings
}

// APIChecks returns the Redfish checks, sharing env's session
func APIChecks(env *Env, set Settings) []Check {
	a := &apiChecks{env: env, set: set}
	return []Check{
		a.check("test_api_authentication", "service root answers 200 with a session token", a.authentication),
		a.check("test_api_system_info", "system resource has the required fields and a valid power state", a.systemInfo),
		a.check("test_api_power_management", "reset action accepts the configured reset types", a.powerManagement),
		a.check("test_api_thermal_sensors", "at least one thermal sensor reads within -20..120 C", a.thermalSensors),
	}
}

func (a *apiChecks) check(name, desc string, fn func(context.Context, RedfishAPI) error) Check {
	return &Func{
		CaseName:  name,
		SuiteName: domain.SuiteAPI,
		Desc:      desc,
		Fn: func(ctx context.Context) error {
			if a.env.Redfish == nil {
				if a.env.RedfishErr != nil {
					return fmt.Errorf("redfish session: %w", a.env.RedfishErr)
				}
				return errors.New("redfish session not available")
			}
			return fn(ctx, a.env.Redfish)
		},
	}
}

func (a *apiChecks) authentication(ctx context.Context, api RedfishAPI) error {
	code, err := api.ServiceRoot(ctx)
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return Failf("HTTP %d", code)
	}
	return nil
}

func (a *apiChecks) systemInfo(ctx context.Context, api RedfishAPI) error {
	sys, err := api.System(ctx)
	var se *redfish.StatusError
	if errors.As(err, &se) {
		return Failf("HTTP %d", se.Code)
	}
	if err != nil {
		return err
	}

	if missing := sys.MissingFields(); len(missing) > 0 {
		return Failf("missing fields: %s", strings.Join(missing, ", "))
	}
	// An unknown PowerState is a malformed resource, not a failed assertion
	if err := redfish.ValidatePowerState(sys.PowerState); err != nil {
		return err
	}
	return nil
}

func (a *apiChecks) powerManagement(ctx context.Context, api RedfishAPI) error {
	sys, err := api.System(ctx)
	var se *redfish.StatusError
	if errors.As(err, &se) {
		return Skipf("system unavailable: HTTP %d", se.Code)
	}
	if err != nil {
		return err
	}

	action, ok := sys.ResetAction()
	if !ok {
		return Skipf("reset action not available")
	}
	if len(a.set.ResetTypes) == 0 {
		return Skipf("no reset types configured")
	}
	for _, t := range a.set.ResetTypes {
		if err := redfish.ValidateResetType(t); err != nil {
			return err
		}
	}
	if a.set.DryReset {
		return Passed("dry run: %d reset types valid", len(a.set.ResetTypes))
	}

	accepted := 0
	for _, t := range a.set.ResetTypes {
		code, err := api.Reset(ctx, action.Target, t)
		if err != nil {
			return fmt.Errorf("reset %s: %w", t, err)
		}
		if resetAccepted[code] {
			accepted++
		}
	}
	if accepted == 0 {
		return Failf("no reset type accepted")
	}
	return Passed("accepted: %d/%d", accepted, len(a.set.ResetTypes))
}

func (a *apiChecks) thermalSensors(ctx context.Context, api RedfishAPI) error {
	th, _, err := api.Thermal(ctx)
	if errors.Is(err, redfish.ErrNoThermalEndpoint) {
		return Skipf("thermal endpoint not available")
	}
	if err != nil {
		return err
	}

	if len(th.Temperatures) == 0 {
		return Failf("no temperature sensors found")
	}
	valid := th.ValidReadings()
	if valid == 0 {
		return Failf("no valid temperature readings")
	}
	return Passed("found %d sensors", valid)
}
