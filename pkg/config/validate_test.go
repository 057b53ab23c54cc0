package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Server.Host = "demo.acvts.nist.gov"
	cfg.Server.Port = 443
	return cfg
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	assert.NoError(t, Validate(validConfig()))
}

func TestValidateRejectsMissingHost(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Host = ""
	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Server.Host")
}

func TestValidateRejectsPortOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 70000
	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Server.Port")
}

func TestValidateRejectsBadSampleRate(t *testing.T) {
	cfg := validConfig()
	cfg.Telemetry.SampleRate = 2.5
	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "SampleRate")
}

func TestValidateRejectsNonexistentTLSFile(t *testing.T) {
	cfg := validConfig()
	cfg.TLS.CAFile = "/no/such/ca-bundle.pem"
	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "CAFile")
}

func TestValidateAcceptsEmptyOptionalTLSFields(t *testing.T) {
	cfg := validConfig()
	cfg.TLS = TLSConfig{}
	assert.NoError(t, Validate(cfg))
}
