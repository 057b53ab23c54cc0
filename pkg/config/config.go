// Package config loads the client's static configuration: server
// address, TLS material, logging/telemetry knobs, the session-URL
// persistence path, and User-Agent field overrides. Precedence, highest
// to lowest: CLI flags (applied by the caller to the Config that Load
// returns), environment variables (ACVP_*), a YAML config file,
// built-in defaults. An environment variable overrides only a key that
// the config file sets; when no config file is found, Load returns the
// built-in defaults and does not consult the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the client's full configuration tree.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	TLS       TLSConfig       `mapstructure:"tls" yaml:"tls"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
	Session   SessionConfig   `mapstructure:"session" yaml:"session"`
	UserAgent UserAgentConfig `mapstructure:"user_agent" yaml:"user_agent"`
}

// ServerConfig addresses the ACVP server under test.
type ServerConfig struct {
	Host string `mapstructure:"host" validate:"required,hostname|ip" yaml:"host"`
	Port int    `mapstructure:"port" validate:"required,min=1,max=65535" yaml:"port"`
}

// TLSConfig supplies the optional CA bundle and mTLS client identity
// the transport layers onto its TLS 1.2-floor config.
type TLSConfig struct {
	CAFile     string `mapstructure:"ca_file" validate:"omitempty,file" yaml:"ca_file,omitempty"`
	ClientCert string `mapstructure:"client_cert" validate:"omitempty,file" yaml:"client_cert,omitempty"`
	ClientKey  string `mapstructure:"client_key" validate:"omitempty,file" yaml:"client_key,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry tracing and Pyroscope profiling.
type TelemetryConfig struct {
	Enabled    bool    `mapstructure:"enabled" yaml:"enabled"`
	Endpoint   string  `mapstructure:"endpoint" yaml:"endpoint"`
	Insecure   bool    `mapstructure:"insecure" yaml:"insecure"`
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	Enabled      bool     `mapstructure:"enabled" yaml:"enabled"`
	Endpoint     string   `mapstructure:"endpoint" yaml:"endpoint"`
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// SessionConfig locates the on-disk record of the in-progress session
// URL, replacing the teacher's credential-context store: this client
// persists "where am I in the ACVP protocol", not a password.
type SessionConfig struct {
	URLFile string `mapstructure:"url_file" validate:"required" yaml:"url_file"`
}

// UserAgentConfig overrides fields the internal/useragent harvester
// would otherwise detect from the platform. Empty fields are left to
// the harvester's own env-var/platform fallback.
type UserAgentConfig struct {
	OSNameOverride   string `mapstructure:"osname_override" yaml:"osname_override,omitempty"`
	OSVerOverride    string `mapstructure:"osver_override" yaml:"osver_override,omitempty"`
	ArchOverride     string `mapstructure:"arch_override" yaml:"arch_override,omitempty"`
	CPUModelOverride string `mapstructure:"cpu_model_override" yaml:"cpu_model_override,omitempty"`
}

// ApplyEnvOverrides exports any non-empty override as the environment
// variable internal/useragent.Build reads, so the harvester picks it
// up without this package importing it directly.
func (c *Config) ApplyEnvOverrides() {
	setIfNotEmpty("ACV_USER_AGENT_OSNAME", c.UserAgent.OSNameOverride)
	setIfNotEmpty("ACV_USER_AGENT_OSVER", c.UserAgent.OSVerOverride)
	setIfNotEmpty("ACV_USER_AGENT_ARCH", c.UserAgent.ArchOverride)
	setIfNotEmpty("ACV_USER_AGENT_PROC", c.UserAgent.CPUModelOverride)
}

func setIfNotEmpty(key, value string) {
	if value != "" {
		os.Setenv(key, value)
	}
}

// Load reads the config file, lets environment variables override the
// keys it sets, fills fields left empty with defaults, then validates
// the result. Without a config file it validates and returns the
// defaults alone.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	if !found {
		cfg := DefaultConfig()
		if err := Validate(cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// SaveConfig writes cfg to path in YAML, creating parent directories
// as needed.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setupViper wires environment variable support (ACVP_* prefix, dots
// become underscores) and config file discovery.
func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("ACVP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}

	configDir := getConfigDir()
	v.AddConfigPath(configDir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

// readConfigFile reads the config file if present. Returns
// (fileFound, error); a missing file is not an error.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

// configDecodeHooks composes the custom mapstructure decode hooks this
// package needs: time.Duration parsing for human-readable durations
// such as "30s" (no current Config field is a time.Duration).
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(durationDecodeHook())
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns $XDG_CONFIG_HOME/acvp-client, falling back to
// ~/.config/acvp-client, or "." if the home directory can't be found.
func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "acvp-client")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "acvp-client")
}

// GetDefaultConfigPath returns the default config file location.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists reports whether a config file exists at the
// default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}
