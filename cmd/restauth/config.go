package main

import (
	"fmt"
	"time"

	"github.com/kbukum/restauth/config"
	"github.com/kbukum/restauth/httpclient"
)

const serviceName = "restauth"

// AppConfig is the configuration file of the command.
//
//	name: restauth
//	logging:
//	  level: info
//	jira:
//	  site: https://jira.example.com
//	  username: bot
//	  password: secret
//	  use_cookies: true
//	observability:
//	  otlp_endpoint: localhost:4318
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Jira          httpclient.Config   `yaml:"jira" mapstructure:"jira"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// ObservabilityConfig enables OTLP export of traces and metrics.
type ObservabilityConfig struct {
	// OTLPEndpoint is the collector host:port. Empty disables export.
	OTLPEndpoint   string        `yaml:"otlp_endpoint" mapstructure:"otlp_endpoint"`
	Insecure       bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate     float64       `yaml:"sample_rate" mapstructure:"sample_rate"`
	MetricInterval time.Duration `yaml:"metric_interval" mapstructure:"metric_interval"`
}

// Enabled reports whether an OTLP endpoint is configured.
func (c *ObservabilityConfig) Enabled() bool {
	return c.OTLPEndpoint != ""
}

func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Jira.ApplyDefaults()
	if c.Observability.SampleRate == 0 {
		c.Observability.SampleRate = 1.0
	}
	if c.Observability.MetricInterval == 0 {
		c.Observability.MetricInterval = 15 * time.Second
	}
}

func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Jira.Validate(); err != nil {
		return fmt.Errorf("jira: %w", err)
	}
	return nil
}
