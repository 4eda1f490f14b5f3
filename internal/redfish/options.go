package redfish

import "bmctest/internal/config"

// OptionsFromConfig returns client options for the configured target
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		RootURL:   cfg.GetRedfishURL(),
		Username:  cfg.Username,
		Password:  cfg.Password,
		Timeout:   cfg.Timeout,
		VerifyTLS: cfg.VerifyTLS,
	}
}
