package config

import (
	"testing"
	"time"
)

func TestDefaultSupervisorConfig(t *testing.T) {
	cfg := DefaultSupervisorConfig()
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v, want 5s", cfg.PollInterval)
	}
	if cfg.ConfigPath != DefaultConfigPath || cfg.TemplatePath != DefaultTemplatePath {
		t.Errorf("paths = %q, %q", cfg.ConfigPath, cfg.TemplatePath)
	}
	if cfg.StatusAddr != "" {
		t.Errorf("StatusAddr = %q, want disabled", cfg.StatusAddr)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{"DEPSTART_CONFIG": "/etc/depstart.yaml"}
	cfg := DefaultSupervisorConfig()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	if cfg.ConfigPath != "/etc/depstart.yaml" {
		t.Errorf("ConfigPath = %q", cfg.ConfigPath)
	}
	if cfg.TemplatePath != DefaultTemplatePath {
		t.Errorf("TemplatePath = %q, want default", cfg.TemplatePath)
	}
}

func TestApplyFile(t *testing.T) {
	f, err := Parse([]byte(`
poll_interval: 30
runtime:
  host: unix:///var/run/docker.sock
  timeout: 0
dependencies: {}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cfg := DefaultSupervisorConfig()
	cfg.ApplyFile(f)

	if cfg.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %v, want 30s", cfg.PollInterval)
	}
	if cfg.DockerHost != "unix:///var/run/docker.sock" {
		t.Errorf("DockerHost = %q", cfg.DockerHost)
	}
	if cfg.DockerAPIVersion != "1.41" {
		t.Errorf("DockerAPIVersion = %q, want default kept", cfg.DockerAPIVersion)
	}
	if cfg.RuntimeTimeout != 0 {
		t.Errorf("RuntimeTimeout = %v, want 0", cfg.RuntimeTimeout)
	}
}
