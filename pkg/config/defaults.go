package config

import (
	"strings"
)

// ApplyDefaults fills any zero-valued field with a sensible default.
// Called after unmarshaling file/env values; explicit values are
// always preserved.
func ApplyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applySessionDefaults(&cfg.Session)
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.Port == 0 {
		cfg.Port = 443
	}
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	applyProfilingDefaults(&cfg.Profiling)
}

func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{"cpu", "alloc_objects", "alloc_space", "inuse_objects", "inuse_space", "goroutines"}
	}
}

func applySessionDefaults(cfg *SessionConfig) {
	if cfg.URLFile == "" {
		cfg.URLFile = defaultSessionURLFile()
	}
}

func defaultSessionURLFile() string {
	return getConfigDir() + "/session_url"
}

// DefaultConfig returns a Config with all defaults applied, validated
// to be usable as-is when no config file is found.
func DefaultConfig() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host: "demo.acvts.nist.gov",
		},
	}
	ApplyDefaults(cfg)
	return cfg
}
