package config

import "time"

// Default locations of the configuration document and its seed template.
const (
	DefaultConfigPath   = "/app/config/config.yaml"
	DefaultTemplatePath = "/app/templates/config.template.yaml"
)

// SupervisorConfig holds configuration for the depstart supervisor.
type SupervisorConfig struct {
	ConfigPath       string        // Container config document (default /app/config/config.yaml)
	TemplatePath     string        // Seed template copied when ConfigPath is missing
	PollInterval     time.Duration // Time between sweeps (default 5s)
	RuntimeTimeout   time.Duration // Limit on each docker call (default 10s, 0 = none)
	DockerHost       string        // DOCKER_HOST for the docker CLI, empty inherits
	DockerAPIVersion string        // DOCKER_API_VERSION for the docker CLI, empty inherits
	LogLevel         string        // Log level: debug, info, warn, error
	LogFormat        string        // Log format: text, json
	StatusAddr       string        // Status/metrics listen address, empty disables
}

// DefaultSupervisorConfig returns sensible defaults.
func DefaultSupervisorConfig() SupervisorConfig {
	return SupervisorConfig{
		ConfigPath:       DefaultConfigPath,
		TemplatePath:     DefaultTemplatePath,
		PollInterval:     5 * time.Second,
		RuntimeTimeout:   10 * time.Second,
		DockerHost:       "tcp://localhost:2375",
		DockerAPIVersion: "1.41",
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// ApplyEnv overrides the file locations from DEPSTART_CONFIG and
// DEPSTART_TEMPLATE when they are set.
func (c *SupervisorConfig) ApplyEnv(getenv func(string) string) {
	if v := getenv("DEPSTART_CONFIG"); v != "" {
		c.ConfigPath = v
	}
	if v := getenv("DEPSTART_TEMPLATE"); v != "" {
		c.TemplatePath = v
	}
}

// ApplyFile overrides supervisor settings with the optional sections of the
// config document.
func (c *SupervisorConfig) ApplyFile(f *File) {
	if f.PollInterval != nil {
		c.PollInterval = time.Duration(*f.PollInterval) * time.Second
	}
	if f.Runtime.Host != nil {
		c.DockerHost = *f.Runtime.Host
	}
	if f.Runtime.APIVersion != nil {
		c.DockerAPIVersion = *f.Runtime.APIVersion
	}
	if f.Runtime.Timeout != nil {
		c.RuntimeTimeout = time.Duration(*f.Runtime.Timeout) * time.Second
	}
}
