package loadgen

import (
	"time"

	"go.uber.org/zap"

	"bmctest/internal/config"
	"bmctest/internal/redfish"
	"bmctest/internal/weather"
)

// DefaultProfileName names the built-in profile
const DefaultProfileName = "openbmc"

// BuildProfile assembles the built-in profile from configuration. A profile file
// overrides configured values; explicit load flags override the file.
func BuildProfile(cfg *config.Config, logger *zap.Logger) (Profile, error) {
	p, classWeights, taskWeights, err := resolveProfile(cfg)
	if err != nil {
		return Profile{}, err
	}

	bmc, err := OpenBMCClass(redfish.OptionsFromConfig(cfg),
		classWeights[ClassOpenBMC], taskWeights[ClassOpenBMC], logger)
	if err != nil {
		return Profile{}, err
	}
	wx := WeatherClass(weather.NewClient(cfg.WeatherURL, cfg.Timeout), cfg.City,
		classWeights[ClassWeather], taskWeights[ClassWeather])

	p.Classes = []UserClass{bmc, wx}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// RunTime returns the run time BuildProfile would use, without creating users
func RunTime(cfg *config.Config) (time.Duration, error) {
	p, _, _, err := resolveProfile(cfg)
	if err != nil {
		return 0, err
	}
	return p.RunTime, nil
}

// resolveProfile applies config, then the profile file, then explicit load flags
func resolveProfile(cfg *config.Config) (Profile, Weights, map[string]Weights, error) {
	p := Profile{
		Name:           DefaultProfileName,
		Users:          cfg.LoadUsers,
		SpawnRate:      cfg.SpawnRate,
		RunTime:        cfg.RunTime,
		WaitMin:        cfg.WaitMin,
		WaitMax:        cfg.WaitMax,
		RequestTimeout: cfg.Timeout,
	}
	classWeights := DefaultClassWeights()
	taskWeights := DefaultTaskWeights()

	if cfg.Flags.ProfileFile != "" {
		pf, err := LoadProfileFile(cfg.Flags.ProfileFile)
		if err != nil {
			return Profile{}, nil, nil, err
		}
		if err := pf.apply(&p, classWeights, taskWeights); err != nil {
			return Profile{}, nil, nil, err
		}
		if cfg.Flags.LoadUsers > 0 {
			p.Users = cfg.Flags.LoadUsers
		}
		if cfg.Flags.SpawnRate > 0 {
			p.SpawnRate = cfg.Flags.SpawnRate
		}
		if cfg.Flags.RunTime > 0 {
			p.RunTime = cfg.Flags.RunTime
		}
	}

	return p, classWeights, taskWeights, nil
}
