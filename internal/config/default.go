package config

import "github.com/signalforge/signalforge/internal/types"

// GetDefaultConfig returns a minimal configuration suitable for scripts and
// tests. It does not pass Validate; production code must go through
// NewConfig.
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{
			Mode:        "api",
			Environment: "development",
		},
		Server: ServerConfig{
			Address: ":8080",
		},
		Logging: LoggingConfig{
			Level: types.LogLevelInfo,
		},
	}
}
