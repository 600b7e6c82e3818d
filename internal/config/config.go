// Package config loads a ClientConfig from TOML or YAML, covering host,
// port, timeout preset, retry policy, and circuit breaker thresholds. Both
// BurntSushi/toml and gopkg.in/yaml.v2 were already present as indirect
// dependencies; this package promotes them to direct use.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"

	"github.com/shinydb/shinydb-go/resilience"
)

// TimeoutPreset names one of the resilience.TimeoutConfig presets.
type TimeoutPreset string

const (
	TimeoutDefault TimeoutPreset = "default"
	TimeoutFast    TimeoutPreset = "fast"
	TimeoutNone    TimeoutPreset = "no_timeout"
)

// ClientConfig is the on-disk shape of a shinydb.Client's construction
// parameters.
type ClientConfig struct {
	Host string `toml:"host" yaml:"host"`
	Port int    `toml:"port" yaml:"port"`

	TimeoutPreset TimeoutPreset `toml:"timeout_preset" yaml:"timeout_preset"`

	Retry struct {
		MaxAttempts       int     `toml:"max_attempts" yaml:"max_attempts"`
		InitialBackoffMs  int64   `toml:"initial_backoff_ms" yaml:"initial_backoff_ms"`
		MaxBackoffMs      int64   `toml:"max_backoff_ms" yaml:"max_backoff_ms"`
		BackoffMultiplier float64 `toml:"backoff_multiplier" yaml:"backoff_multiplier"`
	} `toml:"retry" yaml:"retry"`

	Breaker struct {
		FailureThreshold int `toml:"failure_threshold" yaml:"failure_threshold"`
		SuccessThreshold int `toml:"success_threshold" yaml:"success_threshold"`
		TimeoutMs        int `toml:"timeout_ms" yaml:"timeout_ms"`
	} `toml:"breaker" yaml:"breaker"`

	LogFile  string `toml:"log_file" yaml:"log_file"`
	LogLevel string `toml:"log_level" yaml:"log_level"`
}

// Default returns the default-preset configuration for host:port.
func Default(host string, port int) ClientConfig {
	c := ClientConfig{Host: host, Port: port, TimeoutPreset: TimeoutDefault}
	c.Retry.MaxAttempts = resilience.DefaultRetryPolicy().MaxAttempts
	c.Retry.InitialBackoffMs = resilience.DefaultRetryPolicy().InitialBackoffMs
	c.Retry.MaxBackoffMs = resilience.DefaultRetryPolicy().MaxBackoffMs
	c.Retry.BackoffMultiplier = resilience.DefaultRetryPolicy().BackoffMultiplier
	c.Breaker.FailureThreshold = 5
	c.Breaker.SuccessThreshold = 2
	c.Breaker.TimeoutMs = 30000
	return c
}

// Fast returns the fast-preset configuration for host:port.
func Fast(host string, port int) ClientConfig {
	c := Default(host, port)
	c.TimeoutPreset = TimeoutFast
	return c
}

// NoTimeout returns a configuration with every deadline disabled.
func NoTimeout(host string, port int) ClientConfig {
	c := Default(host, port)
	c.TimeoutPreset = TimeoutNone
	return c
}

// Timeouts resolves the configured preset to a resilience.TimeoutConfig.
func (c ClientConfig) Timeouts() resilience.TimeoutConfig {
	switch c.TimeoutPreset {
	case TimeoutFast:
		return resilience.FastTimeouts()
	case TimeoutNone:
		return resilience.NoTimeouts()
	default:
		return resilience.DefaultTimeouts()
	}
}

// RetryPolicy resolves the configured retry fields to a resilience.RetryPolicy.
func (c ClientConfig) RetryPolicy() resilience.RetryPolicy {
	return resilience.RetryPolicy{
		MaxAttempts:       c.Retry.MaxAttempts,
		InitialBackoffMs:  c.Retry.InitialBackoffMs,
		MaxBackoffMs:      c.Retry.MaxBackoffMs,
		BackoffMultiplier: c.Retry.BackoffMultiplier,
	}
}

// CircuitBreaker resolves the configured breaker fields to a fresh
// resilience.CircuitBreaker.
func (c ClientConfig) CircuitBreaker() *resilience.CircuitBreaker {
	return resilience.NewCircuitBreaker(
		c.Breaker.FailureThreshold,
		c.Breaker.SuccessThreshold,
		time.Duration(c.Breaker.TimeoutMs)*time.Millisecond,
	)
}

// Load reads path, choosing a decoder by file extension (.toml, or .yaml/.yml).
func Load(path string) (ClientConfig, error) {
	var cfg ClientConfig

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("config: decode toml: %w", err)
		}
	case ".yaml", ".yml":
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("config: decode yaml: %w", err)
		}
	default:
		return cfg, fmt.Errorf("config: unrecognized config extension %q", filepath.Ext(path))
	}

	return cfg, nil
}
