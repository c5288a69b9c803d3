// Package config loads the process-wide TOML configuration, in the
// same shape and with the same library (github.com/BurntSushi/toml)
// as profile, generalized to cover the backend/resolver/trail/
// load-monitor knobs this module adds on top.
package config

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/hello-pionex/sentinel-httpclient/code"
	"github.com/hello-pionex/sentinel-httpclient/profile"
)

// Backend configures one logical backend fleet the executor talks to.
type Backend struct {
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	Scheme     string `toml:"scheme"`
	AssertUser bool   `toml:"assert_user"`
}

// Resolver configures the DNS-aware resolver adapter.
type Resolver struct {
	LookupTimeoutMs     int64 `toml:"lookup_timeout_ms"`
	BlacklistCooldownMs int64 `toml:"blacklist_cooldown_ms"`
	RefreshIntervalMs   int64 `toml:"refresh_interval_ms"`
}

// Trail configures the observability sinks.
type Trail struct {
	Verbosity  string `toml:"verbosity"` // "none" | "protocol" | "detail"
	Topic      string `toml:"topic"`
	Partitions int    `toml:"partitions"`
}

// LoadMonitor configures the optional target-latency attachment.
type LoadMonitor struct {
	TargetLatencyUs int `toml:"target_latency_us"`
}

// Config is the root document, following profile.go's convention of a
// struct-per-concern embedded by TOML table name.
type Config struct {
	Base    profile.Base    `toml:"base"`
	Service profile.Service `toml:"service"`
	Logger  profile.Logger  `toml:"logger"`
	Kafka   profile.Kafka   `toml:"kafka"`

	Backend     Backend     `toml:"backend"`
	Resolver    Resolver    `toml:"resolver"`
	Trail       Trail       `toml:"trail"`
	LoadMonitor LoadMonitor `toml:"load_monitor"`
}

// Load decodes a TOML document at path into a Config using
// toml.DecodeFile. A malformed or unreadable document is a
// startup-time failure outside the executor's no-throw boundary, so
// it is reported as a code.Error rather than a bare error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, code.NewMcodef("CONFIG_LOAD_FAILED", "decode %s: %v", path, err)
	}

	return cfg, nil
}

// LookupTimeout returns Resolver.LookupTimeoutMs as a time.Duration,
// falling back to 2s when unset.
func (r Resolver) LookupTimeout() time.Duration {
	if r.LookupTimeoutMs <= 0 {
		return 2 * time.Second
	}

	return time.Duration(r.LookupTimeoutMs) * time.Millisecond
}

// BlacklistCooldown returns Resolver.BlacklistCooldownMs as a
// time.Duration, falling back to the resolver package's own default
// when unset (signalled by returning 0).
func (r Resolver) BlacklistCooldown() time.Duration {
	if r.BlacklistCooldownMs <= 0 {
		return 0
	}

	return time.Duration(r.BlacklistCooldownMs) * time.Millisecond
}

// RefreshInterval returns Resolver.RefreshIntervalMs as a
// time.Duration, falling back to 30s when unset.
func (r Resolver) RefreshInterval() time.Duration {
	if r.RefreshIntervalMs <= 0 {
		return 30 * time.Second
	}

	return time.Duration(r.RefreshIntervalMs) * time.Millisecond
}
