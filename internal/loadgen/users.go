package loadgen

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"bmctest/internal/redfish"
	"bmctest/internal/weather"
)

// Built-in user classes and their tasks
const (
	ClassOpenBMC = "openbmc"
	ClassWeather = "weather"

	TaskSystemInfo  = "get_system_info"
	TaskThermalData = "get_thermal_data"
	TaskSessionInfo = "get_session_info"
	TaskWeather     = "get_weather"
)

// Weights maps a task or class name to its weight
type Weights map[string]int

// DefaultClassWeights spreads users evenly between the built-in classes
func DefaultClassWeights() Weights {
	return Weights{ClassOpenBMC: 1, ClassWeather: 1}
}

// DefaultTaskWeights returns the task weights of every built-in class
func DefaultTaskWeights() map[string]Weights {
	return map[string]Weights{
		ClassOpenBMC: {TaskSystemInfo: 3, TaskThermalData: 2, TaskSessionInfo: 1},
		ClassWeather: {TaskWeather: 1},
	}
}

// OpenBMCClass builds the management API user class. Every user owns its own session.
func OpenBMCClass(opts redfish.Options, weight int, tasks Weights, logger *zap.Logger) (UserClass, error) {
	if _, err := redfish.NewClient(opts, logger); err != nil {
		return UserClass{}, err
	}
	return UserClass{
		Name:   ClassOpenBMC,
		Weight: weight,
		New: func() User {
			// opts were validated above
			c, _ := redfish.NewClient(opts, logger)
			return &openBMCUser{client: c, weights: tasks}
		},
	}, nil
}

type openBMCUser struct {
	client  *redfish.Client
	weights Weights
}

// OnStart creates the user's session. Without it every task answers 401.
func (u *openBMCUser) OnStart(ctx context.Context) error {
	return u.client.Login(ctx)
}

func (u *openBMCUser) OnStop(ctx context.Context) error {
	return u.client.Close(ctx)
}

func (u *openBMCUser) Tasks() []Task {
	return []Task{
		{Name: TaskSystemInfo, Weight: u.weights[TaskSystemInfo], Run: u.systemInfo},
		{Name: TaskThermalData, Weight: u.weights[TaskThermalData], Run: u.thermalData},
		{Name: TaskSessionInfo, Weight: u.weights[TaskSessionInfo], Run: u.sessionInfo},
	}
}

func (u *openBMCUser) systemInfo(ctx context.Context) error {
	sys, err := u.client.System(ctx)
	if err != nil {
		return err
	}
	return redfish.ValidatePowerState(sys.PowerState)
}

func (u *openBMCUser) thermalData(ctx context.Context) error {
	var th redfish.Thermal
	return u.client.GetJSON(ctx, redfish.ThermalPaths[0], &th)
}

func (u *openBMCUser) sessionInfo(ctx context.Context) error {
	code, err := u.client.SessionService(ctx)
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("HTTP %d", code)
	}
	return nil
}

// WeatherClass builds the public weather API user class
func WeatherClass(client *weather.Client, city string, weight int, tasks Weights) UserClass {
	return UserClass{
		Name:   ClassWeather,
		Weight: weight,
		New: func() User {
			return &weatherUser{client: client, city: city, weights: tasks}
		},
	}
}

type weatherUser struct {
	client  *weather.Client
	city    string
	weights Weights
}

func (u *weatherUser) Tasks() []Task {
	return []Task{
		{Name: TaskWeather, Weight: u.weights[TaskWeather], Run: u.currentWeather},
	}
}

func (u *weatherUser) currentWeather(ctx context.Context) error {
	_, err := u.client.Current(ctx, u.city)
	return err
}
